package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComplianceRule caps the quantity of one ingredient in any single formulation.
type ComplianceRule struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	IngredientID uint            `gorm:"uniqueIndex;not null" json:"ingredient_id"`
	Ingredient   *Ingredient     `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	MaxQuantity  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"max_quantity"`
	Description  string          `gorm:"type:text" json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
