package compliance

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

// RuleInput defines the limit for one ingredient.
type RuleInput struct {
	IngredientID uint
	MaxQuantity  decimal.Decimal
	Description  string
}

// UpsertRule creates the rule for an ingredient or replaces its limit.
// Formulations are not re-evaluated; the new limit applies from their next edit.
func (c *Checker) UpsertRule(ctx context.Context, db *gorm.DB, in RuleInput) (*models.ComplianceRule, error) {
	max := in.MaxQuantity.Round(2)
	if in.IngredientID == 0 {
		return nil, apperr.Validation("ingredient", "Select an ingredient")
	}
	if max.IsNegative() {
		return nil, apperr.Validation("max_quantity", "Maximum quantity cannot be negative")
	}

	rule := models.ComplianceRule{
		IngredientID: in.IngredientID,
		MaxQuantity:  max,
		Description:  strings.TrimSpace(in.Description),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Ingredient{}).Where("id = ?", in.IngredientID).Count(&count).Error; err != nil {
			return fmt.Errorf("check ingredient: %w", err)
		}
		if count == 0 {
			return apperr.NotFound("ingredient", in.IngredientID)
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ingredient_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"max_quantity", "description", "updated_at"}),
		}).Create(&rule).Error; err != nil {
			return fmt.Errorf("upsert rule: %w", err)
		}
		var saved models.ComplianceRule
		if err := tx.Preload("Ingredient").Where("ingredient_id = ?", in.IngredientID).First(&saved).Error; err != nil {
			return fmt.Errorf("reload rule: %w", err)
		}
		rule = saved
		return nil
	})
	if err != nil {
		return nil, err
	}

	applog.Info(ctx, "compliance rule saved", "ingredientID", rule.IngredientID, "maxQuantity", rule.MaxQuantity.String())
	return &rule, nil
}

// DeleteRule removes a rule. Existing issues stay on record.
func (c *Checker) DeleteRule(ctx context.Context, db *gorm.DB, ruleID uint) error {
	result := db.WithContext(ctx).Delete(&models.ComplianceRule{}, ruleID)
	if result.Error != nil {
		return fmt.Errorf("delete rule %d: %w", ruleID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("compliance rule", ruleID)
	}
	return nil
}

// ListRules returns every rule with its ingredient.
func (c *Checker) ListRules(ctx context.Context, db *gorm.DB) ([]models.ComplianceRule, error) {
	var rules []models.ComplianceRule
	if err := db.WithContext(ctx).Preload("Ingredient").Order("id asc").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return rules, nil
}

// RuleFor returns the rule for an ingredient, or nil when none exists.
func (c *Checker) RuleFor(ctx context.Context, db *gorm.DB, ingredientID uint) (*models.ComplianceRule, error) {
	var rule models.ComplianceRule
	err := db.WithContext(ctx).Where("ingredient_id = ?", ingredientID).First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load rule: %w", err)
	}
	return &rule, nil
}
