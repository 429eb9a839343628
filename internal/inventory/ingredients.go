package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"perfumery/internal/apperr"
	applog "perfumery/internal/log"
	"perfumery/models"
)

// IngredientInput carries the editable fields of an ingredient.
type IngredientInput struct {
	Name             string
	CurrentStock     decimal.Decimal
	ReorderThreshold decimal.Decimal
}

func (in IngredientInput) normalize() (IngredientInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.CurrentStock = in.CurrentStock.Round(2)
	in.ReorderThreshold = in.ReorderThreshold.Round(2)
	switch {
	case in.Name == "":
		return in, apperr.Validation("name", "Name is required")
	case len(in.Name) > 100:
		return in, apperr.Validation("name", "Name must be at most 100 characters")
	case in.CurrentStock.IsNegative():
		return in, apperr.Validation("current_stock", "Stock cannot be negative")
	case in.ReorderThreshold.IsNegative():
		return in, apperr.Validation("reorder_threshold", "Reorder threshold cannot be negative")
	}
	return in, nil
}

func ensureUniqueName(tx *gorm.DB, name string, exceptID uint) error {
	var count int64
	query := tx.Model(&models.Ingredient{}).Where("name = ?", name)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("check ingredient name: %w", err)
	}
	if count > 0 {
		return apperr.Validation("name", "An ingredient named %q already exists", name)
	}
	return nil
}

// CreateIngredient adds an ingredient and records its opening stock.
func (l *Ledger) CreateIngredient(ctx context.Context, db *gorm.DB, in IngredientInput, actorID uint) (*models.Ingredient, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	ingredient := models.Ingredient{
		Name:             in.Name,
		CurrentStock:     decimal.Zero,
		ReorderThreshold: in.ReorderThreshold,
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueName(tx, in.Name, 0); err != nil {
			return err
		}
		if err := tx.Create(&ingredient).Error; err != nil {
			return fmt.Errorf("create ingredient: %w", err)
		}
		return setStock(tx, &ingredient, in.CurrentStock, models.MovementAdjust, actorID, "opening stock")
	})
	if err != nil {
		return nil, err
	}

	applog.Info(ctx, "ingredient created", "ingredientID", ingredient.ID, "name", ingredient.Name)
	return &ingredient, nil
}

// UpdateIngredient edits an ingredient. A changed stock level is recorded as an adjustment.
func (l *Ledger) UpdateIngredient(ctx context.Context, db *gorm.DB, id uint, in IngredientInput, actorID uint) (*models.Ingredient, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	var ingredient models.Ingredient
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			First(&ingredient, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("ingredient", id)
			}
			return fmt.Errorf("load ingredient %d: %w", id, err)
		}
		if err := ensureUniqueName(tx, in.Name, id); err != nil {
			return err
		}
		if err := tx.Model(&ingredient).Updates(map[string]any{
			"name":              in.Name,
			"reorder_threshold": in.ReorderThreshold,
		}).Error; err != nil {
			return fmt.Errorf("update ingredient %d: %w", id, err)
		}
		ingredient.Name = in.Name
		ingredient.ReorderThreshold = in.ReorderThreshold
		return setStock(tx, &ingredient, in.CurrentStock, models.MovementAdjust, actorID, "edited")
	})
	if err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// DeleteIngredient removes an ingredient that no formulation uses, together
// with its compliance rule and stock history.
func (l *Ledger) DeleteIngredient(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ingredient models.Ingredient
		if err := tx.First(&ingredient, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("ingredient", id)
			}
			return fmt.Errorf("load ingredient %d: %w", id, err)
		}

		var uses int64
		if err := tx.Model(&models.FormulationIngredient{}).Where("ingredient_id = ?", id).Count(&uses).Error; err != nil {
			return fmt.Errorf("count ingredient uses: %w", err)
		}
		if uses > 0 {
			return apperr.Validation("ingredient", "%s is used by %d formulation line(s) and cannot be deleted", ingredient.Name, uses)
		}

		for _, model := range []any{&models.ComplianceRule{}, &models.ComplianceIssue{}, &models.StockMovement{}} {
			if err := tx.Where("ingredient_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("delete ingredient dependents: %w", err)
			}
		}
		if err := tx.Delete(&ingredient).Error; err != nil {
			return fmt.Errorf("delete ingredient %d: %w", id, err)
		}
		applog.Info(ctx, "ingredient deleted", "ingredientID", id, "name", ingredient.Name)
		return nil
	})
}

// GetIngredient loads one ingredient.
func (l *Ledger) GetIngredient(ctx context.Context, db *gorm.DB, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("ingredient", id)
		}
		return nil, fmt.Errorf("load ingredient %d: %w", id, err)
	}
	return &ingredient, nil
}

// ListIngredients returns every ingredient ordered by name.
func (l *Ledger) ListIngredients(ctx context.Context, db *gorm.DB) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if err := db.WithContext(ctx).Order("name asc").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return ingredients, nil
}

// ImportSummary reports what an import changed.
type ImportSummary struct {
	Created   int
	Updated   int
	Unchanged int
}

// ImportStock upserts ingredients by name. Rows are applied in one
// transaction, so a bad row leaves the inventory untouched.
func (l *Ledger) ImportStock(ctx context.Context, db *gorm.DB, rows []StockRow, actorID uint) (ImportSummary, error) {
	var summary ImportSummary
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, row := range rows {
			name := strings.TrimSpace(row.Name)
			if name == "" {
				return apperr.Validation("name", "row %d: ingredient name is required", i+1)
			}
			stock := row.Stock.Round(2)
			if stock.IsNegative() {
				return apperr.Validation("current_stock", "row %d: stock cannot be negative", i+1)
			}

			var ingredient models.Ingredient
			result := tx.Where("name = ?", name).Limit(1).Find(&ingredient)
			if result.Error != nil {
				return fmt.Errorf("row %d: lookup %s: %w", i+1, name, result.Error)
			}

			if result.RowsAffected == 0 {
				ingredient = models.Ingredient{Name: name, CurrentStock: decimal.Zero}
				if row.Threshold != nil {
					ingredient.ReorderThreshold = row.Threshold.Round(2)
				}
				if err := tx.Create(&ingredient).Error; err != nil {
					return fmt.Errorf("row %d: create %s: %w", i+1, name, err)
				}
				if err := setStock(tx, &ingredient, stock, models.MovementImport, actorID, "import"); err != nil {
					return err
				}
				summary.Created++
				continue
			}

			changed := !ingredient.CurrentStock.Equal(stock)
			if row.Threshold != nil && !ingredient.ReorderThreshold.Equal(row.Threshold.Round(2)) {
				if err := tx.Model(&ingredient).Update("reorder_threshold", row.Threshold.Round(2)).Error; err != nil {
					return fmt.Errorf("row %d: update threshold for %s: %w", i+1, name, err)
				}
				changed = true
			}
			if err := setStock(tx, &ingredient, stock, models.MovementImport, actorID, "import"); err != nil {
				return err
			}
			if changed {
				summary.Updated++
			} else {
				summary.Unchanged++
			}
		}
		return nil
	})
	if err != nil {
		return ImportSummary{}, err
	}

	applog.Info(ctx, "stock import applied", "created", summary.Created, "updated", summary.Updated, "unchanged", summary.Unchanged)
	return summary, nil
}
