package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"perfumery/internal/compliance"
	"perfumery/internal/db/dbtest"
	"perfumery/internal/inventory"
	"perfumery/models"
)

func withTestSessionManager(t *testing.T) (*scs.SessionManager, func()) {
	t.Helper()
	original := sessionManager
	sm := scs.New()
	sessionManager = sm
	return sm, func() {
		sessionManager = original
	}
}

// withTestDatabase installs a fresh database and the services built on it.
func withTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	originalSM, originalDB, originalService := sessionManager, database, formulations
	db := dbtest.New(t)
	Configure(sessionManager, db)
	t.Cleanup(func() {
		sessionManager, database, formulations = originalSM, originalDB, originalService
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	user := models.User{Email: email, Name: strings.Split(email, "@")[0], PasswordHash: "x", Role: role}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedIngredient(t *testing.T, db *gorm.DB, name, stock, threshold string) models.Ingredient {
	t.Helper()
	ingredient, err := ledger.CreateIngredient(context.Background(), db, inventory.IngredientInput{
		Name:             name,
		CurrentStock:     decimal.RequireFromString(stock),
		ReorderThreshold: decimal.RequireFromString(threshold),
	}, 0)
	if err != nil {
		t.Fatalf("seed ingredient: %v", err)
	}
	return *ingredient
}

func seedRule(t *testing.T, db *gorm.DB, ingredientID uint, max string) {
	t.Helper()
	if _, err := checker.UpsertRule(context.Background(), db, compliance.RuleInput{
		IngredientID: ingredientID,
		MaxQuantity:  decimal.RequireFromString(max),
	}); err != nil {
		t.Fatalf("seed rule: %v", err)
	}
}

// newRequest builds a request carrying a loaded session. A non-nil user is signed in.
func newRequest(t *testing.T, sm *scs.SessionManager, method, target string, form url.Values, user *models.User) *http.Request {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	req = req.WithContext(ctx)
	if user != nil {
		sm.Put(ctx, sessionAuthenticatedKey, true)
		sm.Put(ctx, sessionUserIDKey, int(user.ID))
		sm.Put(ctx, sessionUserNameKey, user.DisplayName())
		sm.Put(ctx, sessionUserRoleKey, string(user.Role))
	}
	return req
}

// withID sets the chi {id} route parameter.
func withID(req *http.Request, id uint) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", strconv.FormatUint(uint64(id), 10))
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func flash(sm *scs.SessionManager, req *http.Request) (string, string) {
	return sm.PopString(req.Context(), sessionFlashKindKey), sm.PopString(req.Context(), sessionFlashMessageKey)
}

func expectRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}
