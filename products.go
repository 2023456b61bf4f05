package main

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/davemwangi/stocktrack/models"
)

const lowStockThreshold = 10

func handleDashboard(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := currentUserID(c)

		var totalProducts, lowStock, totalOrders, pendingOrders int64
		db.Model(&models.Product{}).Where("user_id = ?", uid).Count(&totalProducts)
		db.Model(&models.Product{}).Where("user_id = ? AND quantity < ?", uid, lowStockThreshold).Count(&lowStock)
		db.Model(&models.Order{}).Where("user_id = ?", uid).Count(&totalOrders)
		db.Model(&models.Order{}).Where("user_id = ? AND status = ?", uid, models.OrderStatusPending).Count(&pendingOrders)

		c.JSON(http.StatusOK, gin.H{
			"total_products": totalProducts,
			"low_stock":      lowStock,
			"total_orders":   totalOrders,
			"pending_orders": pendingOrders,
		})
	}
}

func handleInventory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.Where("user_id = ?", currentUserID(c)).Order("created_at DESC").Find(&products).Error; err != nil {
			slog.Error("Failed to list products", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

// productForm parses and validates the shared add/edit product form.
// Returns a user-facing message when validation fails.
func productForm(c *gin.Context) (name, category, supplier, description string, quantity int, price float64, errMsg string) {
	name = strings.TrimSpace(c.PostForm("name"))
	category = strings.TrimSpace(c.PostForm("category"))
	supplier = strings.TrimSpace(c.PostForm("supplier"))
	description = c.PostForm("description")

	if name == "" {
		errMsg = "Name is required"
		return
	}
	var err error
	quantity, err = strconv.Atoi(c.PostForm("quantity"))
	if err != nil {
		errMsg = "Quantity must be a whole number"
		return
	}
	if quantity < 0 {
		errMsg = "Quantity cannot be negative"
		return
	}
	price, err = strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		errMsg = "Price must be a number"
		return
	}
	if price < 0 {
		errMsg = "Price cannot be negative"
	}
	return
}

func handleAddProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, category, supplier, description, quantity, price, errMsg := productForm(c)
		if errMsg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
			return
		}

		product := models.Product{
			Name:        name,
			Category:    category,
			Quantity:    quantity,
			Price:       price,
			Supplier:    supplier,
			Description: description,
			UserID:      currentUserID(c),
		}
		if err := db.Create(&product).Error; err != nil {
			slog.Error("Failed to create product", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		c.Redirect(http.StatusSeeOther, "/inventory")
	}
}

// findOwnedProduct loads the product scoped to the requesting user. A
// foreign or missing product is reported identically.
func findOwnedProduct(db *gorm.DB, c *gin.Context) (*models.Product, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return nil, false
	}
	var product models.Product
	if err := db.Where("id = ? AND user_id = ?", id, currentUserID(c)).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return nil, false
	}
	return &product, true
}

func handleEditProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, ok := findOwnedProduct(db, c)
		if !ok {
			return
		}
		name, category, supplier, description, quantity, price, errMsg := productForm(c)
		if errMsg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
			return
		}

		product.Name = name
		product.Category = category
		product.Quantity = quantity
		product.Price = price
		product.Supplier = supplier
		product.Description = description
		if err := db.Save(product).Error; err != nil {
			slog.Error("Failed to update product", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		c.Redirect(http.StatusSeeOther, "/inventory")
	}
}

func handleDeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, ok := findOwnedProduct(db, c)
		if !ok {
			return
		}
		if err := db.Delete(product).Error; err != nil {
			slog.Error("Failed to delete product", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		c.Redirect(http.StatusSeeOther, "/inventory")
	}
}

func handleAPIProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.Where("user_id = ?", currentUserID(c)).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func handleAPIAvailableProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.Where("user_id = ? AND quantity > 0", currentUserID(c)).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		c.JSON(http.StatusOK, products)
	}
}
