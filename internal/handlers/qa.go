package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"perfumery/internal/formulation"
	"perfumery/internal/review"
	"perfumery/internal/views/pages"
	"perfumery/models"
)

const qaSection = "qa"

// QADashboard lists the formulations waiting for a QA decision.
func QADashboard(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	pending, err := formulations.PendingQA(r.Context())
	if err != nil {
		serverError(w, r, err, "failed to list pending formulations")
		return
	}
	latest := make(map[uint]*models.QATestResult, len(pending))
	for _, f := range pending {
		result, err := formulations.LatestResult(r.Context(), f.ID)
		if err != nil {
			serverError(w, r, err, "failed to load latest qa result", "formulationID", f.ID)
			return
		}
		latest[f.ID] = result
	}
	render(w, r, http.StatusOK, pages.QADashboard(chrome(r, qaSection), pages.QADashboardData{Pending: pending, Latest: latest}))
}

func readNotes(r *http.Request) (review.Notes, error) {
	if err := r.ParseForm(); err != nil {
		return review.Notes{}, err
	}
	form := qaForm{
		Stability:   r.PostFormValue("stability_test"),
		Performance: r.PostFormValue("performance_test"),
		Comments:    r.PostFormValue("comments"),
	}
	if err := validate.Struct(form); err != nil {
		return review.Notes{}, err
	}
	return review.Notes{Stability: form.Stability, Performance: form.Performance, Comments: form.Comments}, nil
}

func decide(w http.ResponseWriter, r *http.Request, status models.QAStatus, notes review.Notes, failPath string) {
	id := idParam(r)
	decided, _, err := formulations.QADecide(r.Context(), id, formulation.Decision{Status: status, Notes: notes}, currentActor(r))
	if err != nil {
		failAndRedirect(w, r, err, failPath, "failed to record qa decision", "formulationID", id, "status", status)
		return
	}
	switch status {
	case models.QAApproved:
		flashSuccess(r, "Formulation approved successfully.")
	case models.QARejected:
		flashSuccess(r, "Formulation rejected successfully.")
	default:
		flashSuccess(r, fmt.Sprintf("QA notes saved for %s.", decided.Name))
		redirectTo(w, r, fmt.Sprintf("/qa/test-result/%d", id))
		return
	}
	redirectTo(w, r, "/qa-dashboard")
}

// ApproveFormulation approves a formulation awaiting QA.
func ApproveFormulation(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	notes, err := readNotes(r)
	if err != nil {
		flashError(r, validationMessage(err))
		redirectTo(w, r, "/qa-dashboard")
		return
	}
	decide(w, r, models.QAApproved, notes, "/qa-dashboard")
}

// RejectFormulation rejects a formulation awaiting QA.
func RejectFormulation(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	notes, err := readNotes(r)
	if err != nil {
		flashError(r, validationMessage(err))
		redirectTo(w, r, "/qa-dashboard")
		return
	}
	decide(w, r, models.QARejected, notes, "/qa-dashboard")
}

func actionStatus(action string) (models.QAStatus, bool) {
	switch strings.TrimSpace(action) {
	case "approve":
		return models.QAApproved, true
	case "reject":
		return models.QARejected, true
	case "save", "":
		return models.QAPending, true
	}
	return "", false
}

// QATestResult renders the QA notes form and records notes with an optional decision.
func QATestResult(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	id := idParam(r)
	f, err := formulations.Get(r.Context(), id)
	if err != nil {
		failAndRedirect(w, r, err, "/qa-dashboard", "failed to load formulation", "formulationID", id)
		return
	}
	results, err := formulations.Results(r.Context(), id)
	if err != nil {
		serverError(w, r, err, "failed to load qa results", "formulationID", id)
		return
	}
	data := pages.QAResultData{Formulation: f, Results: results}

	if r.Method != http.MethodPost {
		if len(results) > 0 {
			latest := results[0]
			data.Stability, data.Performance, data.Comments = latest.StabilityTest, latest.PerformanceTest, latest.Comments
		}
		render(w, r, http.StatusOK, pages.QATestResult(chrome(r, qaSection), data))
		return
	}

	notes, err := readNotes(r)
	data.Stability, data.Performance, data.Comments = r.PostFormValue("stability_test"), r.PostFormValue("performance_test"), r.PostFormValue("comments")
	if err != nil {
		data.Error = validationMessage(err)
		render(w, r, http.StatusOK, pages.QATestResult(chrome(r, qaSection), data))
		return
	}
	status, ok := actionStatus(r.PostFormValue("action"))
	if !ok {
		data.Error = "Choose approve, reject or save."
		render(w, r, http.StatusOK, pages.QATestResult(chrome(r, qaSection), data))
		return
	}
	decide(w, r, status, notes, fmt.Sprintf("/qa/test-result/%d", id))
}
