// Package inventory keeps ingredient stock levels consistent with the
// formulations that consume them.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"perfumery/internal/apperr"
	applog "perfumery/internal/log"
	"perfumery/internal/metrics"
	"perfumery/models"
)

// Ledger reserves and releases ingredient stock. Every method accepts the
// database handle to run on, so callers can compose ledger operations into
// their own transaction.
type Ledger struct{}

// NewLedger returns a ready Ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

type demand struct {
	ingredientID  uint
	formulationID uint
	quantity      decimal.Decimal
}

// aggregate sums quantities per ingredient, preserving first-seen order.
func aggregate(items []models.FormulationIngredient) ([]demand, error) {
	index := make(map[uint]int, len(items))
	out := make([]demand, 0, len(items))
	for _, item := range items {
		if item.IngredientID == 0 {
			return nil, apperr.Validation("ingredient", "Select an ingredient for every line")
		}
		if !item.Quantity.IsPositive() {
			return nil, apperr.Validation("quantity", "Quantity must be greater than zero")
		}
		if i, ok := index[item.IngredientID]; ok {
			out[i].quantity = out[i].quantity.Add(item.Quantity)
			continue
		}
		index[item.IngredientID] = len(out)
		out = append(out, demand{
			ingredientID:  item.IngredientID,
			formulationID: item.FormulationID,
			quantity:      item.Quantity,
		})
	}
	return out, nil
}

// lockIngredients loads the ingredients for update, ordered by id so
// concurrent reservations always lock in the same order.
func lockIngredients(tx *gorm.DB, demands []demand) (map[uint]models.Ingredient, error) {
	ids := make([]uint, 0, len(demands))
	for _, d := range demands {
		ids = append(ids, d.ingredientID)
	}

	var rows []models.Ingredient
	if err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id IN ?", ids).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("lock ingredients: %w", err)
	}

	byID := make(map[uint]models.Ingredient, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, apperr.NotFound("ingredient", id)
		}
	}
	return byID, nil
}

// Reserve deducts the line item quantities from stock. Either every
// ingredient has enough stock and all are decremented, or nothing changes
// and the first shortfall is returned as *apperr.InsufficientStockError.
func (l *Ledger) Reserve(ctx context.Context, db *gorm.DB, items []models.FormulationIngredient, actorID uint) error {
	demands, err := aggregate(items)
	if err != nil {
		return err
	}
	if len(demands) == 0 {
		return nil
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stock, err := lockIngredients(tx, demands)
		if err != nil {
			return err
		}

		for _, d := range demands {
			ingredient := stock[d.ingredientID]
			if ingredient.CurrentStock.LessThan(d.quantity) {
				return &apperr.InsufficientStockError{
					IngredientID: ingredient.ID,
					Ingredient:   ingredient.Name,
					Required:     d.quantity,
					Available:    ingredient.CurrentStock,
				}
			}
		}

		for _, d := range demands {
			if err := decrement(tx, stock[d.ingredientID], d, actorID); err != nil {
				return err
			}
		}
		return nil
	})

	var insufficient *apperr.InsufficientStockError
	switch {
	case err == nil:
		metrics.Reservation(metrics.OutcomeOK)
	case errors.As(err, &insufficient):
		metrics.Reservation(metrics.OutcomeInsufficient)
		applog.Debug(ctx, "reservation refused", "ingredient", insufficient.Ingredient,
			"required", insufficient.Required.String(), "available", insufficient.Available.String())
	case apperr.Expected(err):
		metrics.Reservation(metrics.OutcomeInvalid)
	default:
		metrics.Reservation(metrics.OutcomeError)
	}
	return err
}

func decrement(tx *gorm.DB, ingredient models.Ingredient, d demand, actorID uint) error {
	result := tx.Model(&models.Ingredient{}).
		Where("id = ? AND current_stock >= ?", ingredient.ID, d.quantity).
		Update("current_stock", gorm.Expr("current_stock - ?", d.quantity))
	if result.Error != nil {
		return fmt.Errorf("decrement stock for ingredient %d: %w", ingredient.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		var current models.Ingredient
		if err := tx.First(&current, ingredient.ID).Error; err != nil {
			return fmt.Errorf("reload ingredient %d: %w", ingredient.ID, err)
		}
		return &apperr.InsufficientStockError{
			IngredientID: ingredient.ID,
			Ingredient:   ingredient.Name,
			Required:     d.quantity,
			Available:    current.CurrentStock,
		}
	}

	return recordMovement(tx, models.StockMovement{
		IngredientID:  ingredient.ID,
		FormulationID: optionalID(d.formulationID),
		Kind:          models.MovementReserve,
		Delta:         d.quantity.Neg(),
		StockBefore:   ingredient.CurrentStock,
		StockAfter:    ingredient.CurrentStock.Sub(d.quantity),
		ActorID:       optionalID(actorID),
	})
}

// Release returns the line item quantities to stock. It only fails on
// storage errors or when an ingredient row has disappeared.
func (l *Ledger) Release(ctx context.Context, db *gorm.DB, items []models.FormulationIngredient, actorID uint) error {
	demands, err := aggregate(items)
	if err != nil {
		return err
	}
	if len(demands) == 0 {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stock, err := lockIngredients(tx, demands)
		if err != nil {
			return err
		}
		for _, d := range demands {
			ingredient := stock[d.ingredientID]
			if err := tx.Model(&models.Ingredient{}).
				Where("id = ?", ingredient.ID).
				Update("current_stock", gorm.Expr("current_stock + ?", d.quantity)).Error; err != nil {
				return fmt.Errorf("increment stock for ingredient %d: %w", ingredient.ID, err)
			}
			if err := recordMovement(tx, models.StockMovement{
				IngredientID:  ingredient.ID,
				FormulationID: optionalID(d.formulationID),
				Kind:          models.MovementRelease,
				Delta:         d.quantity,
				StockBefore:   ingredient.CurrentStock,
				StockAfter:    ingredient.CurrentStock.Add(d.quantity),
				ActorID:       optionalID(actorID),
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Replace releases the previous line items and reserves the new ones in a
// single transaction. A failed reservation restores the previous stock.
func (l *Ledger) Replace(ctx context.Context, db *gorm.DB, previous, next []models.FormulationIngredient, actorID uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := l.Release(ctx, tx, previous, actorID); err != nil {
			return err
		}
		return l.Reserve(ctx, tx, next, actorID)
	})
}

// Adjust sets the stock of one ingredient directly, as after a stock take.
func (l *Ledger) Adjust(ctx context.Context, db *gorm.DB, ingredientID uint, newStock decimal.Decimal, actorID uint, note string) (*models.Ingredient, error) {
	newStock = newStock.Round(2)
	if newStock.IsNegative() {
		return nil, apperr.Validation("current_stock", "Stock cannot be negative")
	}

	var ingredient models.Ingredient
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			First(&ingredient, ingredientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("ingredient", ingredientID)
			}
			return fmt.Errorf("load ingredient %d: %w", ingredientID, err)
		}
		return setStock(tx, &ingredient, newStock, models.MovementAdjust, actorID, note)
	})
	if err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// setStock writes newStock onto ingredient and records the difference.
func setStock(tx *gorm.DB, ingredient *models.Ingredient, newStock decimal.Decimal, kind models.MovementKind, actorID uint, note string) error {
	before := ingredient.CurrentStock
	if before.Equal(newStock) {
		return nil
	}
	if err := tx.Model(ingredient).Update("current_stock", newStock).Error; err != nil {
		return fmt.Errorf("set stock for ingredient %d: %w", ingredient.ID, err)
	}
	ingredient.CurrentStock = newStock
	return recordMovement(tx, models.StockMovement{
		IngredientID: ingredient.ID,
		Kind:         kind,
		Delta:        newStock.Sub(before),
		StockBefore:  before,
		StockAfter:   newStock,
		ActorID:      optionalID(actorID),
		Note:         note,
	})
}

// Movements returns the most recent stock movements for an ingredient.
func (l *Ledger) Movements(ctx context.Context, db *gorm.DB, ingredientID uint, limit int) ([]models.StockMovement, error) {
	if limit <= 0 {
		limit = 20
	}
	var movements []models.StockMovement
	if err := db.WithContext(ctx).
		Where("ingredient_id = ?", ingredientID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}

func recordMovement(tx *gorm.DB, movement models.StockMovement) error {
	if err := tx.Create(&movement).Error; err != nil {
		return fmt.Errorf("record %s movement: %w", movement.Kind, err)
	}
	metrics.Movement(string(movement.Kind))
	return nil
}

func optionalID(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
