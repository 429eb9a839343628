package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"perfumery/internal/access"
	"perfumery/internal/compliance"
	"perfumery/internal/views/pages"
)

// Compliance lists compliance issues, optionally filtered by status.
func Compliance(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	status := pages.IssueStatusFromRequest(r)
	issues, err := checker.ListIssues(r.Context(), database, compliance.IssueFilter{Status: status})
	if err != nil {
		serverError(w, r, err, "failed to list compliance issues")
		return
	}
	render(w, r, http.StatusOK, pages.Compliance(chrome(r, "compliance"), pages.ComplianceData{
		Issues:     issues,
		Status:     status,
		CanResolve: access.Authorize(currentRole(r), access.ResolveComplianceIssue),
	}))
}

// ShowIssue renders one compliance issue with the actions still open to it.
func ShowIssue(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	id := idParam(r)
	issue, err := checker.GetIssue(r.Context(), database, id)
	if err != nil {
		failAndRedirect(w, r, err, "/compliance", "failed to load compliance issue", "issueID", id)
		return
	}
	render(w, r, http.StatusOK, pages.ComplianceIssue(chrome(r, "compliance"), pages.IssueData{
		Issue:      *issue,
		CanResolve: access.Authorize(currentRole(r), access.ResolveComplianceIssue),
	}))
}

// FixIssue advances a compliance issue to in progress or resolved.
func FixIssue(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	id := idParam(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	form := issueForm{Action: strings.TrimSpace(r.PostFormValue("action"))}
	if err := validate.Struct(form); err != nil {
		flashError(r, validationMessage(err))
		redirectTo(w, r, "/compliance")
		return
	}
	issue, err := checker.AdvanceIssue(r.Context(), database, id, form.Action)
	if err != nil {
		failAndRedirect(w, r, err, "/compliance", "failed to update compliance issue", "issueID", id)
		return
	}
	flashSuccess(r, fmt.Sprintf("Compliance issue status updated to %s", issue.Status.Label()))
	redirectTo(w, r, "/compliance")
}

func renderRules(w http.ResponseWriter, r *http.Request, data pages.RulesData) {
	rules, err := checker.ListRules(r.Context(), database)
	if err != nil {
		serverError(w, r, err, "failed to list compliance rules")
		return
	}
	ingredients, err := ledger.ListIngredients(r.Context(), database)
	if err != nil {
		serverError(w, r, err, "failed to list ingredients")
		return
	}
	data.Rules, data.Ingredients = rules, ingredients
	render(w, r, http.StatusOK, pages.ComplianceRules(chrome(r, "compliance-rules"), data))
}

// ComplianceRules lists the per-ingredient limits and upserts submitted rules.
// Existing formulations are re-checked on their next edit.
func ComplianceRules(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	if r.Method != http.MethodPost {
		renderRules(w, r, pages.RulesData{})
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	form := ruleForm{
		IngredientID: pages.ParseUint(r.PostFormValue("ingredient_id")),
		MaxQuantity:  strings.TrimSpace(r.PostFormValue("max_quantity")),
		Description:  strings.TrimSpace(r.PostFormValue("description")),
	}
	data := pages.RulesData{Form: pages.RuleFormData{IngredientID: form.IngredientID, MaxQuantity: form.MaxQuantity, Description: form.Description}}
	if err := validate.Struct(form); err != nil {
		data.Error = validationMessage(err)
		renderRules(w, r, data)
		return
	}
	rule, err := checker.UpsertRule(r.Context(), database, compliance.RuleInput{
		IngredientID: form.IngredientID,
		MaxQuantity:  parseDecimal(form.MaxQuantity),
		Description:  form.Description,
	})
	if err != nil {
		data.Error = failureMessage(r, err, "failed to save compliance rule")
		renderRules(w, r, data)
		return
	}
	flashSuccess(r, fmt.Sprintf("Rule saved: at most %s per formulation.", pages.FormatQuantity(rule.MaxQuantity)))
	redirectTo(w, r, "/compliance/rules")
}

// DeleteRule removes a compliance rule.
func DeleteRule(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	id := idParam(r)
	if err := checker.DeleteRule(r.Context(), database, id); err != nil {
		failAndRedirect(w, r, err, "/compliance/rules", "failed to delete compliance rule", "ruleID", id)
		return
	}
	flashSuccess(r, "Rule deleted.")
	redirectTo(w, r, "/compliance/rules")
}
