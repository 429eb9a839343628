package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"gorm.io/gorm"

	"perfumery/internal/access"
	"perfumery/internal/accounts"
	"perfumery/models"
)

func TestIsHTMX(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if isHTMX(req) {
		t.Fatal("expected false when no HTMX headers present")
	}
	req.Header.Set("HX-Request", "true")
	if !isHTMX(req) {
		t.Fatal("expected true when HX-Request header present")
	}
}

func TestActiveSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if ActiveSession(req) {
		t.Fatal("expected inactive session when manager is nil")
	}

	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	req = newRequest(t, sm, http.MethodGet, "/", nil, nil)
	if ActiveSession(req) {
		t.Fatal("expected inactive session before sign in")
	}
	sm.Put(req.Context(), sessionAuthenticatedKey, true)
	sm.Put(req.Context(), sessionUserIDKey, 42)

	if !ActiveSession(req) {
		t.Fatal("expected active session when flags are set")
	}
}

func TestCurrentActor(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	req := newRequest(t, sm, http.MethodGet, "/", nil, nil)
	if _, ok := currentUserID(req); ok {
		t.Fatal("expected false when user id not set")
	}
	if role := currentRole(req); role != models.RoleNone {
		t.Fatalf("expected no role, got %q", role)
	}

	sm.Put(req.Context(), sessionUserIDKey, 7)
	sm.Put(req.Context(), sessionUserRoleKey, "qa")
	actor := currentActor(req)
	if actor.ID != 7 || actor.Role != models.RoleQA {
		t.Fatalf("unexpected actor %+v", actor)
	}

	sm.Put(req.Context(), sessionUserRoleKey, "superuser")
	if role := currentRole(req); role != models.RoleNone {
		t.Fatalf("expected unknown role to collapse to none, got %q", role)
	}
}

func TestEstablishSession(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	req := newRequest(t, sm, http.MethodGet, "/login", nil, nil)
	user := &models.User{Model: gorm.Model{ID: 3}, Email: "user@example.com", Name: "User", Role: models.RoleManager}
	if err := establishSession(req, user); err != nil {
		t.Fatalf("establishSession returned error: %v", err)
	}

	if !sm.GetBool(req.Context(), sessionAuthenticatedKey) {
		t.Fatal("expected session authenticated flag to be true")
	}
	if got := sm.GetInt(req.Context(), sessionUserIDKey); got != 3 {
		t.Fatalf("expected session user id 3, got %d", got)
	}
	if got := sm.GetString(req.Context(), sessionUserEmailKey); got != "user@example.com" {
		t.Fatalf("unexpected email %q", got)
	}
	if got := sm.GetString(req.Context(), sessionUserRoleKey); got != "manager" {
		t.Fatalf("unexpected role %q", got)
	}
}

func TestEstablishSessionWithoutManager(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	if err := establishSession(req, &models.User{}); err == nil {
		t.Fatal("expected error when session manager is nil")
	}
}

func TestAuthenticate(t *testing.T) {
	sm, smCleanup := withTestSessionManager(t)
	t.Cleanup(smCleanup)
	db := withTestDatabase(t)

	if _, _, err := accounts.Assign(context.Background(), db, accounts.Spec{Email: "user@example.com", Password: "password123", Role: "qa"}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	req := newRequest(t, sm, http.MethodPost, "/login", nil, nil)
	if user, ok := authenticate(httptest.NewRecorder(), req, "user@example.com", "password123"); !ok || user.Role != models.RoleQA {
		t.Fatalf("expected authentication to succeed, got ok=%t", ok)
	}
	if !ActiveSession(req) {
		t.Fatal("expected session to be active")
	}

	if _, ok := authenticate(httptest.NewRecorder(), req, "user@example.com", "wrong"); ok {
		t.Fatal("expected authentication failure with bad password")
	}
	if message := sm.PopString(req.Context(), sessionLoginMessageKey); message == "" {
		t.Fatal("expected login failure message to be set")
	}
}

func TestLoginRedirectsToLandingPage(t *testing.T) {
	sm, smCleanup := withTestSessionManager(t)
	t.Cleanup(smCleanup)
	db := withTestDatabase(t)

	for _, spec := range []accounts.Spec{
		{Email: "rd@example.com", Password: "pw", Role: "rd"},
		{Email: "boss@example.com", Password: "pw", Role: "manager"},
	} {
		if _, _, err := accounts.Assign(context.Background(), db, spec); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}

	tests := []struct {
		email string
		want  string
	}{
		{"rd@example.com", access.PathFormulations},
		{"boss@example.com", access.PathDashboard},
	}
	for _, tt := range tests {
		form := url.Values{"email": {tt.email}, "password": {"pw"}}
		req := newRequest(t, sm, http.MethodPost, "/login", form, nil)
		w := httptest.NewRecorder()
		Login(w, req)
		expectRedirect(t, w, tt.want)
	}
}

func TestLoginRendersErrors(t *testing.T) {
	sm, smCleanup := withTestSessionManager(t)
	t.Cleanup(smCleanup)
	withTestDatabase(t)

	req := newRequest(t, sm, http.MethodPost, "/login", url.Values{"email": {"a@b.c"}}, nil)
	w := httptest.NewRecorder()
	Login(w, req)
	if !strings.Contains(w.Body.String(), "Email and password are required.") {
		t.Fatalf("expected missing credentials message: %s", w.Body.String())
	}

	req = newRequest(t, sm, http.MethodPost, "/login", url.Values{"email": {"a@b.c"}, "password": {"nope"}}, nil)
	w = httptest.NewRecorder()
	Login(w, req)
	if !strings.Contains(w.Body.String(), "Invalid email or password.") {
		t.Fatalf("expected invalid credentials message: %s", w.Body.String())
	}
}

func TestRedirectTo(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("HX-Request", "true")
	w := httptest.NewRecorder()
	redirectTo(w, req, "/formulations")
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 for HTMX redirect, got %d", w.Code)
	}
	if w.Header().Get("HX-Redirect") != "/formulations" {
		t.Fatal("expected HX-Redirect header to be set")
	}

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	w = httptest.NewRecorder()
	redirectToLogin(w, req)
	expectRedirect(t, w, "/login")
}

func TestRequireOperation(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	rd := &models.User{Model: gorm.Model{ID: 1}, Role: models.RoleRnD}
	qa := &models.User{Model: gorm.Model{ID: 2}, Role: models.RoleQA}
	nobody := &models.User{Model: gorm.Model{ID: 3}}

	t.Run("anonymous goes to login", func(t *testing.T) {
		req := newRequest(t, sm, http.MethodGet, "/inventory", nil, nil)
		w := httptest.NewRecorder()
		RequireOperation(access.ViewInventory)(ok).ServeHTTP(w, req)
		expectRedirect(t, w, "/login")
	})

	t.Run("allowed role passes", func(t *testing.T) {
		req := newRequest(t, sm, http.MethodGet, "/inventory", nil, rd)
		w := httptest.NewRecorder()
		RequireOperation(access.ViewInventory)(ok).ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected handler to run, got %d", w.Code)
		}
	})

	t.Run("refused role goes to landing page", func(t *testing.T) {
		req := newRequest(t, sm, http.MethodGet, "/inventory", nil, qa)
		w := httptest.NewRecorder()
		RequireOperation(access.ViewInventory)(ok).ServeHTTP(w, req)
		expectRedirect(t, w, access.PathFormulations)
		if kind, _ := flash(sm, req); kind != flashKindError {
			t.Fatalf("expected error flash, got %q", kind)
		}
	})

	t.Run("refused landing page renders 403", func(t *testing.T) {
		req := newRequest(t, sm, http.MethodGet, access.PathDashboard, nil, nobody)
		w := httptest.NewRecorder()
		RequireOperation(access.ViewDashboard)(ok).ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "Access denied") {
			t.Fatalf("expected forbidden page: %s", w.Body.String())
		}
	})
}

func TestHomeRedirects(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	w := httptest.NewRecorder()
	Home(w, newRequest(t, sm, http.MethodGet, "/", nil, nil))
	expectRedirect(t, w, "/login")

	w = httptest.NewRecorder()
	Home(w, newRequest(t, sm, http.MethodGet, "/", nil, &models.User{Model: gorm.Model{ID: 9}, Role: models.RoleQA}))
	expectRedirect(t, w, access.PathFormulations)

	w = httptest.NewRecorder()
	Home(w, newRequest(t, sm, http.MethodGet, "/missing", nil, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", w.Code)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	req := newRequest(t, sm, http.MethodPost, "/logout", nil, &models.User{Model: gorm.Model{ID: 1}, Role: models.RoleRnD})
	w := httptest.NewRecorder()
	Logout(w, req)
	expectRedirect(t, w, "/login")
	if ActiveSession(req) {
		t.Fatal("expected session to be cleared")
	}
}
