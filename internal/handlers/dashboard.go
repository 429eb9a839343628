package handlers

import (
	"net/http"

	"perfumery/internal/reports"
	"perfumery/internal/views/pages"
)

// Dashboard renders the manager overview.
func Dashboard(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	d, err := reports.BuildDashboard(r.Context(), database)
	if err != nil {
		serverError(w, r, err, "failed to build dashboard")
		return
	}
	render(w, r, http.StatusOK, pages.Dashboard(chrome(r, "dashboard"), d))
}
