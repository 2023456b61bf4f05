package service

import (
	"math"
	"sort"

	"gorm.io/gorm"

	"github.com/davemwangi/stocktrack/models"
)

type CategoryRollup struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Quantity int     `json:"quantity"`
	Value    float64 `json:"value"`
}

type Report struct {
	TotalProducts int              `json:"total_products"`
	TotalQuantity int              `json:"total_quantity"`
	TotalValue    float64          `json:"total_value"`
	Categories    []CategoryRollup `json:"categories"`
	Products      []models.Product `json:"products"`
}

// BuildReport aggregates the user's products into overall totals and
// per-category rollups, and carries the product rows it aggregated so
// callers do not re-query them. Read-only; deterministic for a given
// product state.
func BuildReport(db *gorm.DB, userID uint) (*Report, error) {
	var products []models.Product
	if err := db.Where("user_id = ?", userID).Find(&products).Error; err != nil {
		return nil, err
	}

	report := &Report{TotalProducts: len(products), Products: products}
	byCategory := make(map[string]*CategoryRollup)
	for _, p := range products {
		value := float64(p.Quantity) * p.Price
		report.TotalQuantity += p.Quantity
		report.TotalValue += value

		rollup, ok := byCategory[p.Category]
		if !ok {
			rollup = &CategoryRollup{Category: p.Category}
			byCategory[p.Category] = rollup
		}
		rollup.Count++
		rollup.Quantity += p.Quantity
		rollup.Value += value
	}

	report.TotalValue = round2(report.TotalValue)
	for _, rollup := range byCategory {
		rollup.Value = round2(rollup.Value)
		report.Categories = append(report.Categories, *rollup)
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		return report.Categories[i].Category < report.Categories[j].Category
	})
	return report, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
