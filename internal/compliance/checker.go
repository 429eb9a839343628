// Package compliance evaluates formulations against per-ingredient quantity
// limits and tracks the resulting issues.
package compliance

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

// Finding is the verdict for one line item.
type Finding struct {
	IngredientID   uint
	IngredientName string
	Quantity       decimal.Decimal
	MaxQuantity    *decimal.Decimal
	Compliant      bool
	Message        string
}

// Result summarises an evaluation.
type Result struct {
	Compliant     bool
	Findings      []Finding
	IssuesCreated int
}

// Checker applies compliance rules.
type Checker struct{}

func NewChecker() *Checker {
	return &Checker{}
}

// IssueDescription is the text stored on an issue for a breached limit.
func IssueDescription(max decimal.Decimal) string {
	return fmt.Sprintf("Quantity exceeds maximum allowed (%s)", max.StringFixed(2))
}

// Evaluate checks the stored line items of formulation against the rules,
// opens one issue per violating ingredient and persists the compliance
// status. Existing issues are reused; their status is left alone.
func (c *Checker) Evaluate(ctx context.Context, db *gorm.DB, formulation *models.Formulation) (Result, error) {
	if formulation == nil || formulation.ID == 0 {
		return Result{}, apperr.Validation("formulation", "Formulation must be saved before it is checked")
	}

	var result Result
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []models.FormulationIngredient
		if err := tx.Preload("Ingredient").
			Where("formulation_id = ?", formulation.ID).
			Order("position asc, id asc").
			Find(&items).Error; err != nil {
			return fmt.Errorf("load line items: %w", err)
		}

		ids := make([]uint, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.IngredientID)
		}
		rules := make(map[uint]models.ComplianceRule, len(ids))
		if len(ids) > 0 {
			var rows []models.ComplianceRule
			if err := tx.Where("ingredient_id IN ?", ids).Find(&rows).Error; err != nil {
				return fmt.Errorf("load rules: %w", err)
			}
			for _, rule := range rows {
				rules[rule.IngredientID] = rule
			}
		}

		result = Result{Compliant: true, Findings: make([]Finding, 0, len(items))}
		for _, item := range items {
			finding := Finding{
				IngredientID:   item.IngredientID,
				IngredientName: item.IngredientName(),
				Quantity:       item.Quantity,
				Compliant:      true,
			}
			rule, ok := rules[item.IngredientID]
			if ok {
				max := rule.MaxQuantity
				finding.MaxQuantity = &max
				finding.Compliant = item.Quantity.LessThanOrEqual(max)
			}
			if !finding.Compliant {
				finding.Message = IssueDescription(rule.MaxQuantity)
				result.Compliant = false
				created, err := openIssue(tx, formulation.ID, item.IngredientID, finding.Message)
				if err != nil {
					return err
				}
				if created {
					result.IssuesCreated++
				}
			}
			result.Findings = append(result.Findings, finding)
		}

		status := models.ComplianceCompliant
		if !result.Compliant {
			status = models.ComplianceNonCompliant
		}
		if err := tx.Model(&models.Formulation{}).
			Where("id = ?", formulation.ID).
			Update("compliance_status", status).Error; err != nil {
			return fmt.Errorf("store compliance status: %w", err)
		}
		formulation.ComplianceStatus = status
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	metrics.ComplianceEvaluated(string(formulation.ComplianceStatus))
	applog.Debug(ctx, "compliance evaluated", "formulationID", formulation.ID,
		"status", formulation.ComplianceStatus, "issuesCreated", result.IssuesCreated)
	return result, nil
}

// openIssue gets or creates the issue for a formulation and ingredient pair.
// The insert yields to an existing row, so concurrent evaluations of the same
// formulation converge on one issue.
func openIssue(tx *gorm.DB, formulationID, ingredientID uint, description string) (bool, error) {
	issue := models.ComplianceIssue{
		FormulationID: formulationID,
		IngredientID:  ingredientID,
		Description:   description,
		Status:        models.IssueOpen,
	}
	created := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "formulation_id"}, {Name: "ingredient_id"}},
		DoNothing: true,
	}).Create(&issue)
	if created.Error != nil {
		return false, fmt.Errorf("create issue: %w", created.Error)
	}
	if created.RowsAffected > 0 {
		return true, nil
	}

	var existing models.ComplianceIssue
	if err := tx.Where("formulation_id = ? AND ingredient_id = ?", formulationID, ingredientID).
		First(&existing).Error; err != nil {
		return false, fmt.Errorf("reload issue: %w", err)
	}
	if existing.Description != description {
		if err := tx.Model(&existing).Update("description", description).Error; err != nil {
			return false, fmt.Errorf("refresh issue %d: %w", existing.ID, err)
		}
	}
	return false, nil
}

// Issue workflow actions.
const (
	ActionMarkInProgress = "mark_in_progress"
	ActionMarkResolved   = "mark_resolved"
)

// AdvanceIssue moves an issue along its remediation workflow.
func (c *Checker) AdvanceIssue(ctx context.Context, db *gorm.DB, issueID uint, action string) (*models.ComplianceIssue, error) {
	var next models.IssueStatus
	switch action {
	case ActionMarkInProgress:
		next = models.IssueInProgress
	case ActionMarkResolved:
		next = models.IssueResolved
	default:
		return nil, apperr.Validation("action", "Unknown action %q", action)
	}

	var issue models.ComplianceIssue
	if err := db.WithContext(ctx).Preload("Formulation").Preload("Ingredient").First(&issue, issueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("compliance issue", issueID)
		}
		return nil, fmt.Errorf("load issue %d: %w", issueID, err)
	}
	if err := db.WithContext(ctx).Model(&models.ComplianceIssue{}).Where("id = ?", issueID).Update("status", next).Error; err != nil {
		return nil, fmt.Errorf("update issue %d: %w", issueID, err)
	}
	issue.Status = next

	applog.Info(ctx, "compliance issue updated", "issueID", issueID, "status", next)
	return &issue, nil
}

// IssueFilter narrows ListIssues. Zero values match everything.
type IssueFilter struct {
	Status        models.IssueStatus
	FormulationID uint
}

// ListIssues returns issues newest first with their formulation and ingredient.
func (c *Checker) ListIssues(ctx context.Context, db *gorm.DB, filter IssueFilter) ([]models.ComplianceIssue, error) {
	query := db.WithContext(ctx).Preload("Formulation").Preload("Ingredient").Order("created_at desc, id desc")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.FormulationID != 0 {
		query = query.Where("formulation_id = ?", filter.FormulationID)
	}
	var issues []models.ComplianceIssue
	if err := query.Find(&issues).Error; err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return issues, nil
}

// IssuesFor returns the issues raised against one formulation.
func (c *Checker) IssuesFor(ctx context.Context, db *gorm.DB, formulationID uint) ([]models.ComplianceIssue, error) {
	return c.ListIssues(ctx, db, IssueFilter{FormulationID: formulationID})
}

// GetIssue loads one issue with its formulation and ingredient.
func (c *Checker) GetIssue(ctx context.Context, db *gorm.DB, issueID uint) (*models.ComplianceIssue, error) {
	var issue models.ComplianceIssue
	if err := db.WithContext(ctx).Preload("Formulation").Preload("Ingredient").First(&issue, issueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("compliance issue", issueID)
		}
		return nil, fmt.Errorf("load issue %d: %w", issueID, err)
	}
	return &issue, nil
}
