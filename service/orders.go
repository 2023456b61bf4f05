package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/davemwangi/stocktrack/models"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Rejection reasons reported in LineResult.
const (
	ReasonInvalidQuantity   = "quantity must be positive"
	ReasonProductNotFound   = "product not found"
	ReasonInsufficientStock = "insufficient stock"
)

type OrderLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// LineResult reports what happened to a single requested line. Rejected
// lines never touch stock.
type LineResult struct {
	ProductID uint    `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Accepted  bool    `json:"accepted"`
	Reason    string  `json:"reason,omitempty"`
}

type CustomerInfo struct {
	Name            string `json:"customer_name"`
	Email           string `json:"customer_email"`
	Phone           string `json:"customer_phone"`
	ShippingAddress string `json:"shipping_address"`
	Notes           string `json:"notes"`
}

// OrderUpdate carries the editable fields of an order. Line items are fixed
// at creation and cannot be edited.
type OrderUpdate struct {
	Customer CustomerInfo
	Status   string
}

// lockForUpdate takes a row lock on the selected products so concurrent
// submissions cannot both pass the stock check against a stale read.
// SQLite has no FOR UPDATE; its single-writer model serializes the
// transactions instead.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// CreateOrder processes the requested lines for userID inside one
// transaction. Each line is accepted only if the product belongs to the
// user and has enough stock; accepted lines decrement Product.Quantity and
// snapshot the product's name and price onto the item. The order is
// persisted even if every line was rejected. Any storage error rolls back
// the whole transaction, stock decrements included.
func CreateOrder(db *gorm.DB, userID uint, customer CustomerInfo, lines []OrderLine) (*models.Order, []LineResult, error) {
	order := &models.Order{
		OrderNumber:     NewOrderNumber(),
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		CustomerPhone:   customer.Phone,
		ShippingAddress: customer.ShippingAddress,
		Notes:           customer.Notes,
		Status:          models.OrderStatusPending,
		UserID:          userID,
	}

	results := make([]LineResult, 0, len(lines))
	err := db.Transaction(func(tx *gorm.DB) error {
		var total float64
		var items []models.OrderItem
		for _, line := range lines {
			res := LineResult{ProductID: line.ProductID, Quantity: line.Quantity}
			if line.Quantity <= 0 {
				res.Reason = ReasonInvalidQuantity
				results = append(results, res)
				continue
			}

			var product models.Product
			err := lockForUpdate(tx).
				Where("id = ? AND user_id = ?", line.ProductID, userID).
				First(&product).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				res.Reason = ReasonProductNotFound
				results = append(results, res)
				continue
			}
			if err != nil {
				return err
			}

			if line.Quantity > product.Quantity {
				res.Reason = ReasonInsufficientStock
				results = append(results, res)
				continue
			}

			if err := tx.Model(&models.Product{}).
				Where("id = ?", product.ID).
				Update("quantity", gorm.Expr("quantity - ?", line.Quantity)).Error; err != nil {
				return err
			}

			items = append(items, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   product.Price,
			})
			total += float64(line.Quantity) * product.Price
			res.UnitPrice = product.Price
			res.Accepted = true
			results = append(results, res)
		}

		order.TotalAmount = total
		order.Items = items
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return order, results, nil
}

// Permitted status transitions. Cancelled is terminal; cancelled→cancelled
// is tolerated as a no-op so a repeated cancel cannot double-restore stock.
func canTransition(from, to string) bool {
	switch from {
	case models.OrderStatusPending:
		return to == models.OrderStatusPending ||
			to == models.OrderStatusCompleted ||
			to == models.OrderStatusCancelled
	case models.OrderStatusCompleted:
		return to == models.OrderStatusCompleted ||
			to == models.OrderStatusCancelled
	case models.OrderStatusCancelled:
		return to == models.OrderStatusCancelled
	}
	return false
}

// UpdateOrder edits customer fields, notes and status. It never re-derives
// line items. Stock restoration fires exactly once, on the transition into
// cancelled.
func UpdateOrder(db *gorm.DB, userID, orderID uint, update OrderUpdate) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Items").
			Where("id = ? AND user_id = ?", orderID, userID).
			First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		newStatus := update.Status
		if newStatus == "" {
			newStatus = order.Status
		}
		if !canTransition(order.Status, newStatus) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, newStatus)
		}

		if newStatus == models.OrderStatusCancelled && order.Status != models.OrderStatusCancelled {
			if err := restoreStock(tx, userID, order.Items); err != nil {
				return err
			}
		}

		order.CustomerName = update.Customer.Name
		order.CustomerEmail = update.Customer.Email
		order.CustomerPhone = update.Customer.Phone
		order.ShippingAddress = update.Customer.ShippingAddress
		order.Notes = update.Customer.Notes
		order.Status = newStatus
		// Items are fixed at creation; never write them back on edit.
		return tx.Omit(clause.Associations).Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder cancels the order, restoring stock if it was not already
// cancelled. Customer fields are left as they are.
func CancelOrder(db *gorm.DB, userID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return UpdateOrder(db, userID, orderID, OrderUpdate{
		Customer: CustomerInfo{
			Name:            order.CustomerName,
			Email:           order.CustomerEmail,
			Phone:           order.CustomerPhone,
			ShippingAddress: order.ShippingAddress,
			Notes:           order.Notes,
		},
		Status: models.OrderStatusCancelled,
	})
}

// DeleteOrder restores stock for orders that were not already cancelled,
// then removes the order and its items in the same transaction.
func DeleteOrder(db *gorm.DB, userID, orderID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Preload("Items").
			Where("id = ? AND user_id = ?", orderID, userID).
			First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		if order.Status != models.OrderStatusCancelled {
			if err := restoreStock(tx, userID, order.Items); err != nil {
				return err
			}
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
}

// restoreStock puts each item's quantity back onto its product. The user_id
// guard skips products that no longer belong to the order's owner, matching
// the ownership check done at decrement time.
func restoreStock(tx *gorm.DB, userID uint, items []models.OrderItem) error {
	for _, item := range items {
		result := tx.Model(&models.Product{}).
			Where("id = ? AND user_id = ?", item.ProductID, userID).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
		if result.Error != nil {
			return result.Error
		}
	}
	return nil
}

// NewOrderNumber returns "ORD-<14-digit timestamp>-<6 alnum chars>". The
// unique index on orders.order_number backs global uniqueness.
func NewOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102150405"), suffix)
}
