package handlers

import (
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"perfumery/internal/access"
	"perfumery/internal/accounts"
	"perfumery/internal/compliance"
	"perfumery/internal/formulation"
	"perfumery/internal/inventory"
	applog "perfumery/internal/log"
	"perfumery/internal/views/pages"
	"perfumery/models"
)

const (
	sessionAuthenticatedKey = "auth:authenticated"
	sessionLoginMessageKey  = "auth:message"
	sessionUserIDKey        = "auth:user:id"
	sessionUserEmailKey     = "auth:user:email"
	sessionUserNameKey      = "auth:user:name"
	sessionUserRoleKey      = "auth:user:role"
)

var (
	sessionManager *scs.SessionManager
	database       *gorm.DB
	ledger         = inventory.NewLedger()
	checker        = compliance.NewChecker()
	formulations   *formulation.Service
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, db *gorm.DB) {
	sessionManager = sm
	database = db
	formulations = nil
	if db != nil {
		formulations = formulation.NewService(db, ledger, checker)
	}
}

// authenticate verifies the provided credentials and populates the session if successful.
func authenticate(w http.ResponseWriter, r *http.Request, email, password string) (*models.User, bool) {
	if sessionManager == nil {
		http.Error(w, "authentication not available", http.StatusServiceUnavailable)
		return nil, false
	}

	user, err := accounts.Authenticate(r.Context(), database, email, password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			sessionManager.Put(r.Context(), sessionLoginMessageKey, "Invalid email or password. Please try again.")
		} else {
			applog.Error(r.Context(), "failed to load user during login", "error", err)
			sessionManager.Put(r.Context(), sessionLoginMessageKey, "We were unable to sign you in. Please try again.")
		}
		return nil, false
	}

	if err := establishSession(r, user); err != nil {
		applog.Error(r.Context(), "failed to establish session", "error", err)
		sessionManager.Put(r.Context(), sessionLoginMessageKey, "We were unable to sign you in. Please try again.")
		return nil, false
	}

	return user, true
}

func establishSession(r *http.Request, user *models.User) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}
	if err := sessionManager.RenewToken(r.Context()); err != nil {
		return err
	}
	sessionManager.Put(r.Context(), sessionAuthenticatedKey, true)
	sessionManager.Put(r.Context(), sessionUserIDKey, int(user.ID))
	sessionManager.Put(r.Context(), sessionUserEmailKey, user.Email)
	sessionManager.Put(r.Context(), sessionUserNameKey, user.DisplayName())
	sessionManager.Put(r.Context(), sessionUserRoleKey, string(user.Role))
	return nil
}

// RequireAuthentication ensures the user has an active session before accessing the resource.
func RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ActiveSession(r) {
			redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireOperation lets the request through only when the session's role may
// perform op. Refused users are sent to their landing page, or shown a 403
// page when the refused page is the landing page itself.
func RequireOperation(op access.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ActiveSession(r) {
				redirectToLogin(w, r)
				return
			}
			role := currentRole(r)
			if access.Authorize(role, op) {
				next.ServeHTTP(w, r)
				return
			}

			applog.Info(r.Context(), "operation refused", "operation", op, "role", role, "path", r.URL.Path)
			landing := access.LandingPage(role)
			if r.URL.Path == landing {
				render(w, r, http.StatusForbidden, pages.Forbidden(chrome(r, "")))
				return
			}
			flashError(r, "You are not authorized to access that page.")
			redirectTo(w, r, landing)
		})
	}
}

// Logout destroys the current session and redirects the user to the login screen.
func Logout(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodPost:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sessionManager != nil {
		if err := sessionManager.Destroy(r.Context()); err != nil {
			applog.Error(r.Context(), "failed to destroy session", "error", err)
		}
	}

	redirectToLogin(w, r)
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	redirectTo(w, r, "/login")
}

// redirectTo issues a 303, or an HX-Redirect header for HTMX requests.
func redirectTo(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// ActiveSession returns true when the current request has an authenticated session.
func ActiveSession(r *http.Request) bool {
	if sessionManager == nil {
		return false
	}
	return sessionManager.GetBool(r.Context(), sessionAuthenticatedKey) && sessionManager.GetInt(r.Context(), sessionUserIDKey) > 0
}

func currentUserID(r *http.Request) (uint, bool) {
	if sessionManager == nil {
		return 0, false
	}
	id := sessionManager.GetInt(r.Context(), sessionUserIDKey)
	if id <= 0 {
		return 0, false
	}
	return uint(id), true
}

func currentRole(r *http.Request) models.Role {
	if sessionManager == nil {
		return models.RoleNone
	}
	role, ok := models.ParseRole(sessionManager.GetString(r.Context(), sessionUserRoleKey))
	if !ok {
		return models.RoleNone
	}
	return role
}

func currentActor(r *http.Request) formulation.Actor {
	id, _ := currentUserID(r)
	return formulation.Actor{ID: id, Role: currentRole(r)}
}

func currentUserName(r *http.Request) string {
	if sessionManager == nil {
		return ""
	}
	return sessionManager.GetString(r.Context(), sessionUserNameKey)
}
