package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind names the ledger operation behind a stock movement.
type MovementKind string

const (
	MovementReserve MovementKind = "reserve"
	MovementRelease MovementKind = "release"
	MovementAdjust  MovementKind = "adjust"
	MovementImport  MovementKind = "import"
)

// StockMovement is an append-only audit row written for every stock change.
type StockMovement struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	IngredientID  uint            `gorm:"not null;index" json:"ingredient_id"`
	Ingredient    *Ingredient     `gorm:"foreignKey:IngredientID" json:"-"`
	FormulationID *uint           `gorm:"index" json:"formulation_id,omitempty"`
	Kind          MovementKind    `gorm:"type:varchar(16);not null" json:"kind"`
	Delta         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"delta"`
	StockBefore   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"stock_before"`
	StockAfter    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"stock_after"`
	ActorID       *uint           `gorm:"index" json:"actor_id,omitempty"`
	Note          string          `gorm:"type:text" json:"note"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}
