package mock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"perfumery/internal/compliance"
	appdb "perfumery/internal/db"
	"perfumery/internal/formulation"
	"perfumery/internal/inventory"
	applog "perfumery/internal/log"
	"perfumery/internal/review"
	"perfumery/models"
)

// Password is shared by every seeded account.
const Password = "atelier"

// Seeded account emails, one per role.
const (
	ResearchEmail = "rd@perfumery.local"
	QAEmail       = "qa@perfumery.local"
	ManagerEmail  = "manager@perfumery.local"
)

// New returns an in-memory sqlite database seeded with representative
// atelier data. Each call gets its own database.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	dsn := fmt.Sprintf("file:perfumery-mock-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), appdb.GormConfig(logger.Silent))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := appdb.AutoMigrate(db); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

type stockSeed struct {
	name      string
	stock     string
	threshold string
}

var stockSeeds = []stockSeed{
	{"Bergamot", "10", "2"},
	{"Iris Pallida Butter", "6", "1.5"},
	{"Ambroxan", "25", "5"},
	{"Vanilla Absolute", "4", "4"},
	{"Rose Otto", "12.5", "3"},
	{"Hedione", "40", "10"},
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []*models.User{
		{Name: "Avery Research", Email: ResearchEmail, PasswordHash: string(password), Role: models.RoleRnD},
		{Name: "Quinn Assurance", Email: QAEmail, PasswordHash: string(password), Role: models.RoleQA},
		{Name: "Morgan Lead", Email: ManagerEmail, PasswordHash: string(password), Role: models.RoleManager},
	}
	for _, user := range users {
		if err := db.WithContext(ctx).Create(user).Error; err != nil {
			return err
		}
	}
	chemist := formulation.Actor{ID: users[0].ID, Role: users[0].Role}
	tester := formulation.Actor{ID: users[1].ID, Role: users[1].Role}

	ledger := inventory.NewLedger()
	checker := compliance.NewChecker()

	ingredients := make(map[string]*models.Ingredient, len(stockSeeds))
	for _, s := range stockSeeds {
		ingredient, err := ledger.CreateIngredient(ctx, db, inventory.IngredientInput{
			Name:             s.name,
			CurrentStock:     decimal.RequireFromString(s.stock),
			ReorderThreshold: decimal.RequireFromString(s.threshold),
		}, chemist.ID)
		if err != nil {
			return fmt.Errorf("seed ingredient %s: %w", s.name, err)
		}
		ingredients[s.name] = ingredient
	}

	rules := []compliance.RuleInput{
		{IngredientID: ingredients["Bergamot"].ID, MaxQuantity: decimal.NewFromInt(5), Description: "IFRA limit for bergapten content"},
		{IngredientID: ingredients["Rose Otto"].ID, MaxQuantity: decimal.NewFromInt(3), Description: "Methyl eugenol restriction"},
	}
	for _, rule := range rules {
		if _, err := checker.UpsertRule(ctx, db, rule); err != nil {
			return fmt.Errorf("seed rule: %w", err)
		}
	}

	service := formulation.NewService(db, ledger, checker)
	item := func(name, quantity string) formulation.LineItem {
		return formulation.LineItem{IngredientID: ingredients[name].ID, Quantity: decimal.RequireFromString(quantity)}
	}

	citrus, err := service.Create(ctx, formulation.Input{
		Name:    "Citrus Nocturne",
		Version: "1.0",
		Items:   []formulation.LineItem{item("Bergamot", "7"), item("Hedione", "5")},
	}, chemist)
	if err != nil {
		return fmt.Errorf("seed formulation: %w", err)
	}

	aurum, err := service.Create(ctx, formulation.Input{
		Name:    "Aurum Veil",
		Version: "2.1",
		Items:   []formulation.LineItem{item("Ambroxan", "4"), item("Iris Pallida Butter", "1.5"), item("Rose Otto", "2")},
	}, chemist)
	if err != nil {
		return fmt.Errorf("seed formulation: %w", err)
	}
	if _, err := service.SubmitForQA(ctx, aurum.ID, chemist); err != nil {
		return fmt.Errorf("seed submission: %w", err)
	}

	lumen, err := service.Create(ctx, formulation.Input{
		Name:    "Lumen Celeste",
		Version: "1.0",
		Items:   []formulation.LineItem{item("Hedione", "8"), item("Ambroxan", "2.5")},
	}, chemist)
	if err != nil {
		return fmt.Errorf("seed formulation: %w", err)
	}
	if _, err := service.SubmitForQA(ctx, lumen.ID, chemist); err != nil {
		return fmt.Errorf("seed submission: %w", err)
	}
	if _, _, err := service.QADecide(ctx, lumen.ID, formulation.Decision{
		Status: models.QAApproved,
		Notes: review.Notes{
			Stability:   "Stable after 4 weeks at 40C.",
			Performance: "Eight hours on skin.",
		},
	}, tester); err != nil {
		return fmt.Errorf("seed qa decision: %w", err)
	}

	applog.Debug(ctx, "mock database seeded", "formulations", []uint{citrus.ID, aurum.ID, lumen.ID})
	return nil
}
