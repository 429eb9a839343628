package handlers

import (
	"net/http"

	"perfumery/internal/views/layout"
	"perfumery/internal/views/pages"
)

const (
	sessionFlashKindKey    = "flash:kind"
	sessionFlashMessageKey = "flash:message"

	flashKindSuccess = "success"
	flashKindError   = "error"
)

func setFlash(r *http.Request, kind, message string) {
	if sessionManager == nil {
		return
	}
	sessionManager.Put(r.Context(), sessionFlashKindKey, kind)
	sessionManager.Put(r.Context(), sessionFlashMessageKey, message)
}

func flashSuccess(r *http.Request, message string) {
	setFlash(r, flashKindSuccess, message)
}

func flashError(r *http.Request, message string) {
	setFlash(r, flashKindError, message)
}

func popFlash(r *http.Request) (kind, message string) {
	if sessionManager == nil {
		return "", ""
	}
	return sessionManager.PopString(r.Context(), sessionFlashKindKey), sessionManager.PopString(r.Context(), sessionFlashMessageKey)
}

// chrome builds the navigation for the signed-in role and consumes the pending flash.
func chrome(r *http.Request, active string) pages.Chrome {
	kind, message := popFlash(r)
	return pages.Chrome{
		Nav:       layout.Navigation(currentRole(r), currentUserName(r), active),
		FlashKind: kind,
		Flash:     message,
	}
}
