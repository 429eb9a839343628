package handlers

import (
	"net/http"

	"perfumery/internal/access"
)

// Home sends signed-in users to their role's landing page and everyone else to the login screen.
func Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !ActiveSession(r) {
		redirectToLogin(w, r)
		return
	}
	redirectTo(w, r, access.LandingPage(currentRole(r)))
}
