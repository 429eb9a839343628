package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"perfumery/internal/apperr"
	applog "perfumery/internal/log"
	"perfumery/internal/views/pages"
)

func render(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render component", "error", err, "path", r.URL.Path)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.Error(r.Context(), "failed to encode json response", "error", err)
	}
}

// ready reports whether the database backed handlers can serve the request.
func ready(w http.ResponseWriter) bool {
	if database == nil || formulations == nil {
		http.Error(w, "This page is unavailable because no database connection is configured.", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// idParam reads the {id} route parameter.
func idParam(r *http.Request) uint {
	return pages.ParseUint(chi.URLParam(r, "id"))
}

// failureMessage logs unexpected errors and turns err into flash text.
func failureMessage(r *http.Request, err error, msg string, args ...any) string {
	if !apperr.Expected(err) {
		applog.Error(r.Context(), msg, append([]any{"error", err}, args...)...)
	}
	return apperr.Message(err)
}

// failAndRedirect flashes err and sends the user to path.
func failAndRedirect(w http.ResponseWriter, r *http.Request, err error, path, msg string, args ...any) {
	flashError(r, failureMessage(r, err, msg, args...))
	redirectTo(w, r, path)
}

// notFound reports whether err is a missing record of any kind.
func notFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// serverError logs err and answers with a generic 500.
func serverError(w http.ResponseWriter, r *http.Request, err error, msg string, args ...any) {
	applog.Error(r.Context(), msg, append([]any{"error", err}, args...)...)
	http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
}
