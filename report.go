package main

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/davemwangi/stocktrack/service"
)

// handleReport serves both /report and /api/report: overall totals,
// per-category rollups and the product list they were computed from.
func handleReport(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := service.BuildReport(db, currentUserID(c))
		if err != nil {
			slog.Error("Failed to build report", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
