package models

import "github.com/shopspring/decimal"

// FormulationIngredient is one line item of a formulation. Position keeps
// the order in which the line items were submitted.
type FormulationIngredient struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	FormulationID uint            `gorm:"not null;index" json:"formulation_id"`
	IngredientID  uint            `gorm:"not null;index" json:"ingredient_id"`
	Ingredient    *Ingredient     `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	Quantity      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"quantity"`
	Position      int             `gorm:"not null;default:0" json:"position"`
}

// IngredientName returns the loaded ingredient name, if any.
func (fi FormulationIngredient) IngredientName() string {
	if fi.Ingredient == nil {
		return ""
	}
	return fi.Ingredient.Name
}
