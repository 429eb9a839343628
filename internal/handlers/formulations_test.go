package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"perfumery/models"
)

func TestNewFormulationFlagsComplianceIssues(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)
	db := withTestDatabase(t)

	rd := seedUser(t, db, "rd@example.com", models.RoleRnD)
	bergamot := seedIngredient(t, db, "Bergamot", "10", "2")
	seedRule(t, db, bergamot.ID, "5")

	form := url.Values{
		"name":          {"Citrus Nocturne"},
		"version":       {"1.0"},
		"ingredient_id": {"1"},
		"quantity":      {"7"},
	}
	req := newRequest(t, sm, http.MethodPost, "/formulations/new", form, &rd)
	w := httptest.NewRecorder()
	NewFormulation(w, req)

	expectRedirect(t, w, "/formulations/1")
	kind, message := flash(sm, req)
	if kind != flashKindSuccess || !strings.Contains(message, "compliance issues") {
		t.Fatalf("unexpected flash %q %q", kind, message)
	}

	var stored models.Formulation
	if err := db.First(&stored, 1).Error; err != nil {
		t.Fatalf("load formulation: %v", err)
	}
	if stored.Status != models.StatusDraft || stored.ComplianceStatus != models.ComplianceNonCompliant {
		t.Fatalf("unexpected statuses %q %q", stored.Status, stored.ComplianceStatus)
	}
	var ingredient models.Ingredient
	if err := db.First(&ingredient, bergamot.ID).Error; err != nil {
		t.Fatalf("load ingredient: %v", err)
	}
	if ingredient.CurrentStock.String() != "3" {
		t.Fatalf("expected stock 3 after reservation, got %s", ingredient.CurrentStock)
	}
}

func TestNewFormulationInsufficientStockPersistsNothing(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)
	db := withTestDatabase(t)

	rd := seedUser(t, db, "rd@example.com", models.RoleRnD)
	seedIngredient(t, db, "Bergamot", "10", "2")

	form := url.Values{
		"name":          {"Too Much"},
		"version":       {"1.0"},
		"ingredient_id": {"1"},
		"quantity":      {"12"},
	}
	req := newRequest(t, sm, http.MethodPost, "/formulations/new", form, &rd)
	w := httptest.NewRecorder()
	NewFormulation(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected the form to be re-rendered, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Not enough stock for Bergamot. Required: 12, Available: 10") {
		t.Fatalf("expected insufficient stock message: %s", body)
	}
	if !strings.Contains(body, "Too Much") {
		t.Fatal("expected submitted name to be echoed")
	}

	var count int64
	db.Model(&models.Formulation{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no formulation to be stored, found %d", count)
	}
	var ingredient models.Ingredient
	db.First(&ingredient, 1)
	if ingredient.CurrentStock.String() != "10" {
		t.Fatalf("expected stock untouched, got %s", ingredient.CurrentStock)
	}
}

func TestNewFormulationValidation(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)
	db := withTestDatabase(t)

	rd := seedUser(t, db, "rd@example.com", models.RoleRnD)
	seedIngredient(t, db, "Bergamot", "10", "2")

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{
			name: "missing name",
			form: url.Values{"version": {"1"}, "ingredient_id": {"1"}, "quantity": {"1"}},
			want: "Name is required.",
		},
		{
			name: "no ingredients",
			form: url.Values{"name": {"Empty"}, "version": {"1"}},
			want: "Add at least one ingredient",
		},
		{
			name: "bad quantity",
			form: url.Values{"name": {"Bad"}, "version": {"1"}, "ingredient_id": {"1"}, "quantity": {"lots"}},
			want: "Quantity must be a number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(t, sm, http.MethodPost, "/formulations/new", tt.form, &rd)
			w := httptest.NewRecorder()
			NewFormulation(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Fatalf("expected %q in body: %s", tt.want, w.Body.String())
			}
		})
	}
}

func TestFormulationLifecycle(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)
	db := withTestDatabase(t)

	rd := seedUser(t, db, "rd@example.com", models.RoleRnD)
	seedIngredient(t, db, "Hedione", "40", "10")

	create := url.Values{"name": {"Lumen"}, "version": {"2.1"}, "ingredient_id": {"1"}, "quantity": {"5"}}
	req := newRequest(t, sm, http.MethodPost, "/formulations/new", create, &rd)
	w := httptest.NewRecorder()
	NewFormulation(w, req)
	expectRedirect(t, w, "/formulations/1")
	if _, message := flash(sm, req); message != "Formulation created successfully!" {
		t.Fatalf("unexpected flash %q", message)
	}

	edit := url.Values{"name": {"Lumen"}, "version": {"2.2"}, "ingredient_id": {"1"}, "quantity": {"8"}}
	req = withID(newRequest(t, sm, http.MethodPost, "/formulations/1/edit", edit, &rd), 1)
	w = httptest.NewRecorder()
	EditFormulation(w, req)
	expectRedirect(t, w, "/formulations/1")
	if _, message := flash(sm, req); message != "Formulation updated and is compliant." {
		t.Fatalf("unexpected flash %q", message)
	}

	req = withID(newRequest(t, sm, http.MethodGet, "/formulations/1", nil, &rd), 1)
	w = httptest.NewRecorder()
	ShowFormulation(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Hedione") {
		t.Fatalf("expected line items on the detail page: %s", w.Body.String())
	}

	req = withID(newRequest(t, sm, http.MethodPost, "/formulations/1/submit", url.Values{}, &rd), 1)
	w = httptest.NewRecorder()
	SubmitFormulation(w, req)
	expectRedirect(t, w, "/formulations/1")

	var stored models.Formulation
	db.First(&stored, 1)
	if stored.Status != models.StatusPendingQA || stored.Version != "2.2" {
		t.Fatalf("unexpected formulation %+v", stored)
	}

	// Submitted formulations can no longer be deleted.
	req = withID(newRequest(t, sm, http.MethodPost, "/formulations/1/delete", url.Values{}, &rd), 1)
	w = httptest.NewRecorder()
	DeleteFormulation(w, req)
	expectRedirect(t, w, "/formulations/1")
	if kind, _ := flash(sm, req); kind != flashKindError {
		t.Fatalf("expected error flash, got %q", kind)
	}
}

func TestDeleteFormulationReturnsStock(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)
	db := withTestDatabase(t)

	rd := seedUser(t, db, "rd@example.com", models.RoleRnD)
	seedIngredient(t, db, "Ambroxan", "25", "5")

	create := url.Values{"name": {"Short Lived"}, "version": {"1"}, "ingredient_id": {"1"}, "quantity": {"5"}}
	req := newRequest(t, sm, http.MethodPost, "/formulations/new", create, &rd)
	NewFormulation(httptest.NewRecorder(), req)

	req = withID(newRequest(t, sm, http.MethodPost, "/formulations/1/delete", url.Values{}, &rd), 1)
	w := httptest.NewRecorder()
	DeleteFormulation(w, req)
	expectRedirect(t, w, "/formulations")

	var ingredient models.Ingredient
	db.First(&ingredient, 1)
	if ingredient.CurrentStock.String() != "25" {
		t.Fatalf("expected stock restored to 25, got %s", ingredient.CurrentStock)
	}

	req = withID(newRequest(t, sm, http.MethodPost, "/formulations/1/submit", url.Values{}, &rd), 1)
	w = httptest.NewRecorder()
	SubmitFormulation(w, req)
	expectRedirect(t, w, "/formulations")
}

func TestFormulationsListFiltersByStatus(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)
	db := withTestDatabase(t)

	rd := seedUser(t, db, "rd@example.com", models.RoleRnD)
	seedIngredient(t, db, "Hedione", "40", "10")
	for _, name := range []string{"Alpha Accord", "Beta Accord"} {
		form := url.Values{"name": {name}, "version": {"1"}, "ingredient_id": {"1"}, "quantity": {"1"}}
		NewFormulation(httptest.NewRecorder(), newRequest(t, sm, http.MethodPost, "/formulations/new", form, &rd))
	}
	SubmitFormulation(httptest.NewRecorder(), withID(newRequest(t, sm, http.MethodPost, "/formulations/2/submit", url.Values{}, &rd), 2))

	req := newRequest(t, sm, http.MethodGet, "/formulations?status=pending_qa", nil, &rd)
	w := httptest.NewRecorder()
	Formulations(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Beta Accord") || strings.Contains(body, "Alpha Accord") {
		t.Fatalf("expected only the pending formulation: %s", body)
	}
}

func TestFormulationHandlersWithoutDatabase(t *testing.T) {
	original, originalService := database, formulations
	Configure(sessionManager, nil)
	t.Cleanup(func() { database, formulations = original, originalService })

	w := httptest.NewRecorder()
	Formulations(w, httptest.NewRequest(http.MethodGet, "/formulations", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
