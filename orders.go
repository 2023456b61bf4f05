package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/davemwangi/stocktrack/models"
	"github.com/davemwangi/stocktrack/service"
)

func handleOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		err := db.Preload("Items").
			Where("user_id = ?", currentUserID(c)).
			Order("created_at DESC").
			Find(&orders).Error
		if err != nil {
			slog.Error("Failed to list orders", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func customerForm(c *gin.Context) service.CustomerInfo {
	return service.CustomerInfo{
		Name:            strings.TrimSpace(c.PostForm("customer_name")),
		Email:           strings.TrimSpace(c.PostForm("customer_email")),
		Phone:           strings.TrimSpace(c.PostForm("customer_phone")),
		ShippingAddress: strings.TrimSpace(c.PostForm("shipping_address")),
		Notes:           c.PostForm("notes"),
	}
}

// handleAddOrder accepts the order form with repeated product_id/quantity
// fields, one pair per requested line.
func handleAddOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer := customerForm(c)
		if customer.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Customer name is required"})
			return
		}

		productIDs := c.PostFormArray("product_id")
		quantities := c.PostFormArray("quantity")
		if len(productIDs) != len(quantities) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Mismatched order lines"})
			return
		}

		lines := make([]service.OrderLine, 0, len(productIDs))
		for i := range productIDs {
			pid, err := strconv.ParseUint(productIDs[i], 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Product id must be a whole number"})
				return
			}
			qty, err := strconv.Atoi(quantities[i])
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be a whole number"})
				return
			}
			lines = append(lines, service.OrderLine{ProductID: uint(pid), Quantity: qty})
		}

		if _, _, err := service.CreateOrder(db, currentUserID(c), customer, lines); err != nil {
			slog.Error("Failed to create order", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		c.Redirect(http.StatusSeeOther, "/orders")
	}
}

func handleEditOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		status := c.PostForm("status")
		switch status {
		case "", models.OrderStatusPending, models.OrderStatusCompleted, models.OrderStatusCancelled:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}

		update := service.OrderUpdate{Customer: customerForm(c), Status: status}
		if update.Customer.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Customer name is required"})
			return
		}

		_, err = service.UpdateOrder(db, currentUserID(c), uint(id), update)
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		case errors.Is(err, service.ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case err != nil:
			slog.Error("Failed to update order", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		default:
			c.Redirect(http.StatusSeeOther, "/orders")
		}
	}
}

func handleDeleteOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		err = service.DeleteOrder(db, currentUserID(c), uint(id))
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		case err != nil:
			slog.Error("Failed to delete order", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		default:
			c.Redirect(http.StatusSeeOther, "/orders")
		}
	}
}

func handleAPIOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		err := db.Preload("Items").
			Where("user_id = ?", currentUserID(c)).
			Order("created_at DESC").
			Find(&orders).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// handleAPICreateOrder is the JSON mirror of /add_order. It returns the
// per-line results so API clients can see which lines were rejected and why.
func handleAPICreateOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			service.CustomerInfo
			Items []service.OrderLine `json:"items"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Customer name is required"})
			return
		}

		order, results, err := service.CreateOrder(db, currentUserID(c), req.CustomerInfo, req.Items)
		if err != nil {
			slog.Error("Failed to create order", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order": order, "line_results": results})
	}
}
