package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus is derived from the stock level and never stored.
type StockStatus string

const (
	StockLow StockStatus = "low_stock"
	StockIn  StockStatus = "in_stock"
)

func (s StockStatus) Label() string {
	if s == StockLow {
		return "Low Stock"
	}
	return "In Stock"
}

// Ingredient is a raw material tracked by the inventory ledger.
type Ingredient struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Name             string          `gorm:"uniqueIndex;not null" json:"name"`
	CurrentStock     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"current_stock"`
	ReorderThreshold decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"reorder_threshold"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Status reports low_stock once the stock has fallen to or below the reorder threshold.
func (i Ingredient) Status() StockStatus {
	if i.CurrentStock.LessThanOrEqual(i.ReorderThreshold) {
		return StockLow
	}
	return StockIn
}
