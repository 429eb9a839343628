package formulation

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"perfumery/internal/apperr"
	"perfumery/internal/compliance"
	"perfumery/internal/db/dbtest"
	"perfumery/internal/inventory"
	"perfumery/internal/review"
	"perfumery/models"
)

var (
	chemist = Actor{ID: 1, Role: models.RoleRnD}
	tester  = Actor{ID: 2, Role: models.RoleQA}
	boss    = Actor{ID: 3, Role: models.RoleManager}
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

type env struct {
	db       *gorm.DB
	svc      *Service
	bergamot models.Ingredient
	vanilla  models.Ingredient
}

// newEnv seeds Bergamot (stock 10, limit 5) and Vanilla (stock 20, no limit).
func newEnv(t *testing.T) env {
	t.Helper()
	database := dbtest.New(t)

	e := env{db: database, svc: NewService(database, inventory.NewLedger(), compliance.NewChecker())}
	e.bergamot = models.Ingredient{Name: "Bergamot", CurrentStock: dec("10"), ReorderThreshold: dec("2")}
	e.vanilla = models.Ingredient{Name: "Vanilla", CurrentStock: dec("20"), ReorderThreshold: dec("5")}
	require.NoError(t, database.Create(&e.bergamot).Error)
	require.NoError(t, database.Create(&e.vanilla).Error)
	require.NoError(t, database.Create(&models.ComplianceRule{IngredientID: e.bergamot.ID, MaxQuantity: dec("5")}).Error)
	return e
}

func (e env) stock(t *testing.T, id uint) decimal.Decimal {
	t.Helper()
	var ingredient models.Ingredient
	require.NoError(t, e.db.First(&ingredient, id).Error)
	return ingredient.CurrentStock
}

func (e env) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func TestCreateReservesStockAndFlagsCompliance(t *testing.T) {
	e := newEnv(t)

	created, err := e.svc.Create(context.Background(), Input{
		Name:    "Citrus Noir",
		Version: "1.0",
		Items:   []LineItem{{IngredientID: e.bergamot.ID, Quantity: dec("7")}},
	}, chemist)
	require.NoError(t, err)

	assert.Equal(t, models.StatusDraft, created.Status)
	assert.Equal(t, models.ComplianceNonCompliant, created.ComplianceStatus)
	assert.True(t, e.stock(t, e.bergamot.ID).Equal(dec("3")))

	var issues []models.ComplianceIssue
	require.NoError(t, e.db.Find(&issues).Error)
	require.Len(t, issues, 1)
	assert.Equal(t, models.IssueOpen, issues[0].Status)
	assert.Equal(t, created.ID, issues[0].FormulationID)

	stored, err := e.svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, stored.Status)
	require.Len(t, stored.Ingredients, 1)
	assert.Equal(t, "Bergamot", stored.Ingredients[0].IngredientName())
}

func TestCreateWithInsufficientStockPersistsNothing(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Create(context.Background(), Input{
		Name:    "Citrus Noir",
		Version: "1.0",
		Items:   []LineItem{{IngredientID: e.bergamot.ID, Quantity: dec("12")}},
	}, chemist)

	var insufficient *apperr.InsufficientStockError
	require.True(t, errors.As(err, &insufficient), "got %v", err)
	assert.Equal(t, "Bergamot", insufficient.Ingredient)
	assert.True(t, insufficient.Required.Equal(dec("12")))
	assert.True(t, insufficient.Available.Equal(dec("10")))

	assert.True(t, e.stock(t, e.bergamot.ID).Equal(dec("10")))
	assert.Zero(t, e.count(t, &models.Formulation{}))
	assert.Zero(t, e.count(t, &models.FormulationIngredient{}))
	assert.Zero(t, e.count(t, &models.ComplianceIssue{}))
}

func TestCreateCompliantFormulation(t *testing.T) {
	e := newEnv(t)

	created, err := e.svc.Create(context.Background(), Input{
		Name:    "Vanilla Haze",
		Version: "2",
		Items: []LineItem{
			{IngredientID: e.vanilla.ID, Quantity: dec("4.5")},
			{IngredientID: e.bergamot.ID, Quantity: dec("5")},
		},
	}, chemist)
	require.NoError(t, err)
	assert.Equal(t, models.ComplianceCompliant, created.ComplianceStatus)
	assert.True(t, e.stock(t, e.vanilla.ID).Equal(dec("15.5")))
	assert.True(t, e.stock(t, e.bergamot.ID).Equal(dec("5")))
}

func TestCreateValidation(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name string
		in   Input
	}{
		{"missing name", Input{Version: "1", Items: []LineItem{{IngredientID: e.vanilla.ID, Quantity: dec("1")}}}},
		{"missing version", Input{Name: "A", Items: []LineItem{{IngredientID: e.vanilla.ID, Quantity: dec("1")}}}},
		{"no items", Input{Name: "A", Version: "1"}},
		{"zero quantity", Input{Name: "A", Version: "1", Items: []LineItem{{IngredientID: e.vanilla.ID, Quantity: dec("0.001")}}}},
		{"duplicate ingredient", Input{Name: "A", Version: "1", Items: []LineItem{
			{IngredientID: e.vanilla.ID, Quantity: dec("1")},
			{IngredientID: e.vanilla.ID, Quantity: dec("2")},
		}}},
		{"no ingredient selected", Input{Name: "A", Version: "1", Items: []LineItem{{Quantity: dec("1")}}}},
	}

	for _, tt := range tests {
		_, err := e.svc.Create(context.Background(), tt.in, chemist)
		var validation *apperr.ValidationError
		assert.True(t, errors.As(err, &validation), "%s: got %v", tt.name, err)
	}

	_, err := e.svc.Create(context.Background(), Input{Name: "A", Version: "1", Items: []LineItem{{IngredientID: 999, Quantity: dec("1")}}}, chemist)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Zero(t, e.count(t, &models.Formulation{}))
}

func TestOperationsRequireRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	in := Input{Name: "A", Version: "1", Items: []LineItem{{IngredientID: e.vanilla.ID, Quantity: dec("1")}}}

	_, err := e.svc.Create(ctx, in, tester)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
	_, err = e.svc.Create(ctx, in, boss)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	created, err := e.svc.Create(ctx, in, chemist)
	require.NoError(t, err)

	_, err = e.svc.SubmitForQA(ctx, created.ID, tester)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
	_, err = e.svc.SubmitForQA(ctx, created.ID, chemist)
	require.NoError(t, err)

	_, _, err = e.svc.QADecide(ctx, created.ID, Decision{Status: models.QAApproved}, chemist)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
	assert.True(t, errors.Is(e.svc.Delete(ctx, created.ID, boss), apperr.ErrForbidden))
}

func TestLifecycleHappyPath(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.svc.Create(ctx, Input{Name: "Amber Veil", Version: "1.0", Items: []LineItem{{IngredientID: e.vanilla.ID, Quantity: dec("2")}}}, chemist)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, created.Status)

	submitted, err := e.svc.SubmitForQA(ctx, created.ID, chemist)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingQA, submitted.Status)

	pending, err := e.svc.PendingQA(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	decided, result, err := e.svc.QADecide(ctx, created.ID, Decision{
		Status: models.QAApproved,
		Notes:  review.Notes{Stability: "stable", Performance: "long lasting"},
	}, tester)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, decided.Status)
	assert.Equal(t, models.QAApproved, result.Status)
	assert.Equal(t, tester.ID, result.TestedByID)

	_, err = e.svc.SubmitForQA(ctx, created.ID, chemist)
	var transition *apperr.InvalidTransitionError
	require.True(t, errors.As(err, &transition))
	assert.Equal(t, models.StatusApproved, transition.From)

	_, err = e.svc.Edit(ctx, created.ID, Input{Name: "Amber Veil", Version: "1.1", Items: []LineItem{{IngredientID: e.vanilla.ID, Quantity: dec("1")}}}, chemist)
	assert.True(t, errors.As(err, &transition), "approved formulations are read-only")

	_, _, err = e.svc.QADecide(ctx, created.ID, Decision{Status: models.QARejected}, tester)
	assert.True(t, errors.As(err, &transition))

	assert.True(t, errors.As(e.svc.Delete(ctx, created.ID, chemist), &transition))
}

func TestQAPendingDecisionRecordsNotesOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.svc.Create(ctx, Input{Name: "Iris", Version: "1", Items: []LineItem{{IngredientID: e.vanilla.ID, Quantity: dec("1")}}}, chemist)
	require.NoError(t, err)

	_, _, err = e.svc.QADecide(ctx, created.ID, Decision{Status: models.QAPending}, tester)
	var transition *apperr.InvalidTransitionError
	require.True(t, errors.As(err, &transition), "draft formulations cannot be decided")

	_, err = e.svc.SubmitForQA(ctx, created.ID, chemist)
	require.NoError(t, err)

	decided, _, err := e.svc.QADecide(ctx, created.ID, Decision{Status: models.QAPending, Notes: review.Notes{Comments: "needs another week"}}, tester)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingQA, decided.Status)

	decided, _, err = e.svc.QADecide(ctx, created.ID, Decision{Status: models.QARejected, Notes: review.Notes{Comments: "separates"}}, tester)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, decided.Status)

	history, err := e.svc.Results(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	latest, err := e.svc.LatestResult(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, models.QARejected, latest.Status)

	_, _, err = e.svc.QADecide(ctx, created.ID, Decision{Status: models.QAStatus("maybe")}, tester)
	var validation *apperr.ValidationError
	assert.True(t, errors.As(err, &validation))
}

func TestEditRebalancesStockAndRechecks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.svc.Create(ctx, Input{Name: "Citrus", Version: "1", Items: []LineItem{{IngredientID: e.bergamot.ID, Quantity: dec("7")}}}, chemist)
	require.NoError(t, err)
	require.Equal(t, models.ComplianceNonCompliant, created.ComplianceStatus)

	edited, err := e.svc.Edit(ctx, created.ID, Input{Name: "Citrus", Version: "2", Items: []LineItem{
		{IngredientID: e.vanilla.ID, Quantity: dec("3")},
		{IngredientID: e.bergamot.ID, Quantity: dec("4")},
	}}, chemist)
	require.NoError(t, err)
	assert.Equal(t, "2", edited.Version)
	assert.Equal(t, models.StatusDraft, edited.Status)
	assert.Equal(t, models.ComplianceCompliant, edited.ComplianceStatus)
	assert.True(t, e.stock(t, e.bergamot.ID).Equal(dec("6")))
	assert.True(t, e.stock(t, e.vanilla.ID).Equal(dec("17")))

	stored, err := e.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, stored.Ingredients, 2)
	assert.Equal(t, "Vanilla", stored.Ingredients[0].IngredientName(), "submitted order is preserved")
}

func TestEditFailureRestoresPreviousState(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.svc.Create(ctx, Input{Name: "Citrus", Version: "1", Items: []LineItem{{IngredientID: e.bergamot.ID, Quantity: dec("4")}}}, chemist)
	require.NoError(t, err)

	_, err = e.svc.Edit(ctx, created.ID, Input{Name: "Citrus", Version: "2", Items: []LineItem{{IngredientID: e.bergamot.ID, Quantity: dec("11")}}}, chemist)
	var insufficient *apperr.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, insufficient.Available.Equal(dec("10")))

	assert.True(t, e.stock(t, e.bergamot.ID).Equal(dec("6")))
	stored, err := e.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", stored.Version)
	require.Len(t, stored.Ingredients, 1)
	assert.True(t, stored.Ingredients[0].Quantity.Equal(dec("4")))
}

func TestDeleteReleasesStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.svc.Create(ctx, Input{Name: "Citrus", Version: "1", Items: []LineItem{{IngredientID: e.bergamot.ID, Quantity: dec("7")}}}, chemist)
	require.NoError(t, err)
	require.True(t, e.stock(t, e.bergamot.ID).Equal(dec("3")))

	require.NoError(t, e.svc.Delete(ctx, created.ID, chemist))
	assert.True(t, e.stock(t, e.bergamot.ID).Equal(dec("10")))
	assert.Zero(t, e.count(t, &models.Formulation{}))
	assert.Zero(t, e.count(t, &models.FormulationIngredient{}))
	assert.Zero(t, e.count(t, &models.ComplianceIssue{}))

	_, err = e.svc.Get(ctx, created.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.True(t, errors.Is(e.svc.Delete(ctx, created.ID, chemist), apperr.ErrNotFound))
}

func TestListFiltersByStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for _, name := range []string{"One", "Two", "Three"} {
		_, err := e.svc.Create(ctx, Input{Name: name, Version: "1", Items: []LineItem{{IngredientID: e.vanilla.ID, Quantity: dec("1")}}}, chemist)
		require.NoError(t, err)
	}
	all, err := e.svc.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Three", all[0].Name, "newest first")

	_, err = e.svc.SubmitForQA(ctx, all[0].ID, chemist)
	require.NoError(t, err)

	drafts, err := e.svc.List(ctx, Filter{Status: models.StatusDraft})
	require.NoError(t, err)
	assert.Len(t, drafts, 2)

	limited, err := e.svc.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = e.svc.List(ctx, Filter{Status: "archived"})
	var validation *apperr.ValidationError
	assert.True(t, errors.As(err, &validation))
}
