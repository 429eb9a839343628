// Package formulation implements the formulation lifecycle:
// draft -> pending_qa -> approved | rejected.
package formulation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"perfumery/internal/access"
	"perfumery/internal/apperr"
	"perfumery/internal/compliance"
	"perfumery/internal/inventory"
	applog "perfumery/internal/log"
	"perfumery/internal/metrics"
	"perfumery/internal/review"
	"perfumery/models"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID   uint
	Role models.Role
}

// LineItem is a requested ingredient quantity.
type LineItem struct {
	IngredientID uint
	Quantity     decimal.Decimal
}

// Input holds the editable content of a formulation.
type Input struct {
	Name    string
	Version string
	Items   []LineItem
}

// Decision is a QA verdict with its test notes. A pending decision only
// records the notes.
type Decision struct {
	Status models.QAStatus
	Notes  review.Notes
}

// Filter narrows List.
type Filter struct {
	Status models.FormulationStatus
	Limit  int
}

// Service coordinates the ledger, the checker and the QA record around
// formulation state changes.
type Service struct {
	db      *gorm.DB
	ledger  *inventory.Ledger
	checker *compliance.Checker
}

func NewService(db *gorm.DB, ledger *inventory.Ledger, checker *compliance.Checker) *Service {
	return &Service{db: db, ledger: ledger, checker: checker}
}

func authorize(actor Actor, op access.Operation) error {
	if !access.Authorize(actor.Role, op) {
		return fmt.Errorf("%s as %q: %w", op, actor.Role, apperr.ErrForbidden)
	}
	return nil
}

func (in Input) normalize() (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Version = strings.TrimSpace(in.Version)
	switch {
	case in.Name == "":
		return in, apperr.Validation("name", "Name is required")
	case len(in.Name) > 100:
		return in, apperr.Validation("name", "Name must be at most 100 characters")
	case in.Version == "":
		return in, apperr.Validation("version", "Version is required")
	case len(in.Version) > 20:
		return in, apperr.Validation("version", "Version must be at most 20 characters")
	case len(in.Items) == 0:
		return in, apperr.Validation("ingredients", "Add at least one ingredient")
	}

	seen := make(map[uint]struct{}, len(in.Items))
	items := make([]LineItem, 0, len(in.Items))
	for i, item := range in.Items {
		if item.IngredientID == 0 {
			return in, apperr.Validation("ingredients", "Line %d: select an ingredient", i+1)
		}
		if _, dup := seen[item.IngredientID]; dup {
			return in, apperr.Validation("ingredients", "Line %d: each ingredient may appear only once", i+1)
		}
		seen[item.IngredientID] = struct{}{}
		quantity := item.Quantity.Round(2)
		if !quantity.IsPositive() {
			return in, apperr.Validation("ingredients", "Line %d: quantity must be greater than zero", i+1)
		}
		items = append(items, LineItem{IngredientID: item.IngredientID, Quantity: quantity})
	}
	in.Items = items
	return in, nil
}

func lineItems(formulationID uint, items []LineItem) []models.FormulationIngredient {
	out := make([]models.FormulationIngredient, 0, len(items))
	for i, item := range items {
		out = append(out, models.FormulationIngredient{
			FormulationID: formulationID,
			IngredientID:  item.IngredientID,
			Quantity:      item.Quantity,
			Position:      i,
		})
	}
	return out
}

// Create stores a draft formulation, reserves its stock and runs the
// compliance check. Nothing is persisted when any step fails.
func (s *Service) Create(ctx context.Context, in Input, actor Actor) (*models.Formulation, error) {
	if err := authorize(actor, access.CreateFormulation); err != nil {
		return nil, err
	}
	in, err := in.normalize()
	if err != nil {
		metrics.FormulationCreated(metrics.OutcomeInvalid)
		return nil, err
	}

	var created models.Formulation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		formulation := models.Formulation{
			Name:             in.Name,
			Version:          in.Version,
			Status:           models.StatusDraft,
			ComplianceStatus: models.CompliancePending,
			CreatedByID:      actor.ID,
		}
		if err := tx.Create(&formulation).Error; err != nil {
			return fmt.Errorf("create formulation: %w", err)
		}
		items := lineItems(formulation.ID, in.Items)
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("create line items: %w", err)
		}
		if err := s.ledger.Reserve(ctx, tx, items, actor.ID); err != nil {
			return err
		}
		if _, err := s.checker.Evaluate(ctx, tx, &formulation); err != nil {
			return err
		}
		formulation.Ingredients = items
		created = formulation
		return nil
	})
	if err != nil {
		var insufficient *apperr.InsufficientStockError
		switch {
		case errors.As(err, &insufficient):
			metrics.FormulationCreated(metrics.OutcomeInsufficient)
		case apperr.Expected(err):
			metrics.FormulationCreated(metrics.OutcomeInvalid)
		default:
			metrics.FormulationCreated(metrics.OutcomeError)
		}
		return nil, err
	}

	metrics.FormulationCreated(metrics.OutcomeOK)
	applog.Info(ctx, "formulation created", "formulationID", created.ID, "name", created.Name,
		"version", created.Version, "compliance", created.ComplianceStatus, "actorID", actor.ID)
	return &created, nil
}

// lockFormulation loads a formulation and its line items for update.
func lockFormulation(tx *gorm.DB, id uint) (*models.Formulation, error) {
	var formulation models.Formulation
	err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position asc, id asc") }).
		First(&formulation, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("formulation", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load formulation %d: %w", id, err)
	}
	return &formulation, nil
}

// Edit replaces the name, version and line items of a non-terminal
// formulation. Stock is rebalanced and compliance re-evaluated; the status
// does not change.
func (s *Service) Edit(ctx context.Context, id uint, in Input, actor Actor) (*models.Formulation, error) {
	if err := authorize(actor, access.EditFormulation); err != nil {
		return nil, err
	}
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	var edited *models.Formulation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		formulation, err := lockFormulation(tx, id)
		if err != nil {
			return err
		}
		if formulation.Status.Terminal() {
			return &apperr.InvalidTransitionError{Action: "edit", From: formulation.Status}
		}

		previous := formulation.Ingredients
		if err := tx.Model(&models.Formulation{}).Where("id = ?", id).Updates(map[string]any{
			"name":    in.Name,
			"version": in.Version,
		}).Error; err != nil {
			return fmt.Errorf("update formulation %d: %w", id, err)
		}
		if err := tx.Where("formulation_id = ?", id).Delete(&models.FormulationIngredient{}).Error; err != nil {
			return fmt.Errorf("clear line items: %w", err)
		}
		next := lineItems(id, in.Items)
		if err := tx.Create(&next).Error; err != nil {
			return fmt.Errorf("create line items: %w", err)
		}
		if err := s.ledger.Replace(ctx, tx, previous, next, actor.ID); err != nil {
			return err
		}

		formulation.Name = in.Name
		formulation.Version = in.Version
		formulation.Ingredients = next
		if _, err := s.checker.Evaluate(ctx, tx, formulation); err != nil {
			return err
		}
		edited = formulation
		return nil
	})
	if err != nil {
		return nil, err
	}

	applog.Info(ctx, "formulation edited", "formulationID", id, "compliance", edited.ComplianceStatus, "actorID", actor.ID)
	return edited, nil
}

// transition moves a formulation from one status to another with a guarded update.
func transition(tx *gorm.DB, formulation *models.Formulation, to models.FormulationStatus) error {
	result := tx.Model(&models.Formulation{}).
		Where("id = ? AND status = ?", formulation.ID, formulation.Status).
		Update("status", to)
	if result.Error != nil {
		return fmt.Errorf("update status of formulation %d: %w", formulation.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return &apperr.InvalidTransitionError{Action: "change the status of", From: formulation.Status}
	}
	metrics.Transition(string(formulation.Status), string(to))
	formulation.Status = to
	return nil
}

// SubmitForQA hands a draft over to QA.
func (s *Service) SubmitForQA(ctx context.Context, id uint, actor Actor) (*models.Formulation, error) {
	if err := authorize(actor, access.SubmitFormulation); err != nil {
		return nil, err
	}

	var submitted *models.Formulation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		formulation, err := lockFormulation(tx, id)
		if err != nil {
			return err
		}
		if formulation.Status != models.StatusDraft {
			return &apperr.InvalidTransitionError{Action: "submit for QA", From: formulation.Status}
		}
		if err := transition(tx, formulation, models.StatusPendingQA); err != nil {
			return err
		}
		submitted = formulation
		return nil
	})
	if err != nil {
		return nil, err
	}

	applog.Info(ctx, "formulation submitted for qa", "formulationID", id, "actorID", actor.ID)
	return submitted, nil
}

// QADecide records a QA result for a formulation awaiting QA and, for an
// approved or rejected verdict, moves it to that terminal status.
func (s *Service) QADecide(ctx context.Context, id uint, decision Decision, actor Actor) (*models.Formulation, *models.QATestResult, error) {
	if err := authorize(actor, access.DecideQA); err != nil {
		return nil, nil, err
	}
	if !decision.Status.Valid() {
		return nil, nil, apperr.Validation("status", "Unknown QA status %q", decision.Status)
	}

	var (
		decided *models.Formulation
		result  *models.QATestResult
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		formulation, err := lockFormulation(tx, id)
		if err != nil {
			return err
		}
		if formulation.Status != models.StatusPendingQA {
			return &apperr.InvalidTransitionError{Action: "record a QA decision for", From: formulation.Status}
		}

		result, err = review.Record(ctx, tx, id, decision.Notes, actor.ID, decision.Status)
		if err != nil {
			return err
		}

		switch decision.Status {
		case models.QAApproved:
			err = transition(tx, formulation, models.StatusApproved)
		case models.QARejected:
			err = transition(tx, formulation, models.StatusRejected)
		}
		if err != nil {
			return err
		}
		decided = formulation
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	applog.Info(ctx, "qa decision recorded", "formulationID", id, "decision", decision.Status,
		"status", decided.Status, "actorID", actor.ID)
	return decided, result, nil
}

// Delete removes a draft or rejected formulation and returns its stock.
func (s *Service) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := authorize(actor, access.DeleteFormulation); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		formulation, err := lockFormulation(tx, id)
		if err != nil {
			return err
		}
		if formulation.Status != models.StatusDraft && formulation.Status != models.StatusRejected {
			return &apperr.InvalidTransitionError{Action: "delete", From: formulation.Status}
		}
		if err := s.ledger.Release(ctx, tx, formulation.Ingredients, actor.ID); err != nil {
			return err
		}
		for _, model := range []any{&models.FormulationIngredient{}, &models.ComplianceIssue{}, &models.QATestResult{}} {
			if err := tx.Where("formulation_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("delete formulation dependents: %w", err)
			}
		}
		if err := tx.Delete(&models.Formulation{}, id).Error; err != nil {
			return fmt.Errorf("delete formulation %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	applog.Info(ctx, "formulation deleted", "formulationID", id, "actorID", actor.ID)
	return nil
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("CreatedBy").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position asc, id asc") }).
		Preload("Ingredients.Ingredient")
}

// Get loads a formulation with its author and line items.
func (s *Service) Get(ctx context.Context, id uint) (*models.Formulation, error) {
	var formulation models.Formulation
	err := withDetails(s.db.WithContext(ctx)).First(&formulation, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("formulation", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load formulation %d: %w", id, err)
	}
	return &formulation, nil
}

// List returns formulations newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]models.Formulation, error) {
	query := s.db.WithContext(ctx).Preload("CreatedBy").Order("created_at desc, id desc")
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, apperr.Validation("status", "Unknown status %q", filter.Status)
		}
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var formulations []models.Formulation
	if err := query.Find(&formulations).Error; err != nil {
		return nil, fmt.Errorf("list formulations: %w", err)
	}
	return formulations, nil
}

// PendingQA returns the formulations waiting for a QA decision.
func (s *Service) PendingQA(ctx context.Context) ([]models.Formulation, error) {
	return s.List(ctx, Filter{Status: models.StatusPendingQA})
}

// LatestResult returns the newest QA result for a formulation, if any.
func (s *Service) LatestResult(ctx context.Context, id uint) (*models.QATestResult, error) {
	return review.Latest(ctx, s.db, id)
}

// Results returns the QA history of a formulation.
func (s *Service) Results(ctx context.Context, id uint) ([]models.QATestResult, error) {
	return review.History(ctx, s.db, id)
}
