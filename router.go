package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	if sessionStore == nil {
		initSessions(nil)
	}
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/", func(c *gin.Context) {
		session, _ := sessionStore.Get(c.Request, sessionName)
		if _, ok := session.Values["user_id"].(uint); ok {
			c.Redirect(http.StatusSeeOther, "/dashboard")
			return
		}
		c.Redirect(http.StatusSeeOther, "/login")
	})

	r.GET("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Please log in"})
	})
	r.POST("/login", handleLogin(db))
	r.GET("/register", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Please register"})
	})
	r.POST("/register", handleRegister(db))
	r.GET("/logout", handleLogout)
	r.POST("/logout", handleLogout)

	authed := r.Group("/", requireAuth(db))

	authed.GET("/dashboard", handleDashboard(db))
	authed.GET("/inventory", handleInventory(db))
	authed.POST("/add_product", handleAddProduct(db))
	authed.POST("/edit_product/:id", handleEditProduct(db))
	authed.POST("/delete_product/:id", handleDeleteProduct(db))

	authed.GET("/orders", handleOrders(db))
	authed.POST("/add_order", handleAddOrder(db))
	authed.POST("/edit_order/:id", handleEditOrder(db))
	authed.POST("/delete_order/:id", handleDeleteOrder(db))

	authed.GET("/report", handleReport(db))

	authed.GET("/api/products", handleAPIProducts(db))
	authed.GET("/api/products/available", handleAPIAvailableProducts(db))
	authed.GET("/api/orders", handleAPIOrders(db))
	authed.POST("/api/orders", handleAPICreateOrder(db))
	authed.GET("/api/report", handleReport(db))

	return r
}
