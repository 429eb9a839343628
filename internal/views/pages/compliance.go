package pages

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"perfumery/internal/views/components"
	"perfumery/models"
)

// ComplianceData drives the compliance issue list.
type ComplianceData struct {
	Issues     []models.ComplianceIssue
	Status     models.IssueStatus
	CanResolve bool
}

// IssueData drives the single issue page.
type IssueData struct {
	Issue      models.ComplianceIssue
	CanResolve bool
}

// RuleFormData is the rule form as submitted.
type RuleFormData struct {
	IngredientID uint
	MaxQuantity  string
	Description  string
}

// RulesData drives the compliance rules page.
type RulesData struct {
	Rules       []models.ComplianceRule
	Ingredients []models.Ingredient
	Form        RuleFormData
	Error       string
}

var issueStatuses = []models.IssueStatus{models.IssueOpen, models.IssueInProgress, models.IssueResolved}

// Compliance renders the compliance issues with their remediation actions.
func Compliance(chrome Chrome, data ComplianceData) templ.Component {
	return page("Compliance", chrome, func(ctx context.Context, b *components.Builder) {
		b.Raw(`<form method="get" action="/compliance" class="filters"><select name="status"><option value="">All issues</option>`)
		for _, status := range issueStatuses {
			b.Raw(`<option`)
			b.Attr("value", string(status))
			if status == data.Status {
				b.Raw(` selected`)
			}
			b.Raw(`>`)
			b.Text(status.Label())
			b.Raw(`</option>`)
		}
		b.Raw(`</select><button type="submit">Filter</button></form>`)

		table(b, "Formulation", "Ingredient", "Description", "Status", "Raised", "")
		for _, issue := range data.Issues {
			b.Raw(`<tr><td>`)
			if issue.Formulation != nil {
				link(b, formulationPath(issue.FormulationID, ""), issue.Formulation.Name)
			} else {
				b.Text("—")
			}
			b.Raw(`</td>`)
			cell(b, issueIngredient(issue.Ingredient))
			b.Raw(`<td>`)
			link(b, issuePath(issue.ID), issue.Description)
			b.Raw(`</td><td>`)
			b.Render(ctx, components.Badge(string(issue.Status), issue.Status.Label()))
			b.Raw(`</td>`)
			cell(b, FormatDate(issue.CreatedAt))
			b.Raw(`<td>`)
			if data.CanResolve {
				issueActions(b, issue)
			}
			b.Raw(`</td></tr>`)
		}
		if len(data.Issues) == 0 {
			emptyRow(b, 6, "No compliance issues.")
		}
		b.Raw(`</tbody></table>`)
	})
}

func issuePath(id uint) string {
	return fmt.Sprintf("/compliance/%d/fix", id)
}

// issueActions renders the remediation buttons still open to issue.
func issueActions(b *components.Builder, issue models.ComplianceIssue) {
	if issue.Status == models.IssueResolved {
		return
	}
	b.Raw(`<form method="post" class="inline"`)
	b.Attr("action", issuePath(issue.ID))
	b.Raw(`>`)
	if issue.Status == models.IssueOpen {
		b.Raw(`<button type="submit" name="action" value="mark_in_progress">Mark in progress</button>`)
	}
	b.Raw(`<button type="submit" name="action" value="mark_resolved">Mark resolved</button></form>`)
}

// ComplianceIssue renders one issue with its remediation actions.
func ComplianceIssue(chrome Chrome, data IssueData) templ.Component {
	issue := data.Issue
	return page(fmt.Sprintf("Compliance Issue #%d", issue.ID), chrome, func(ctx context.Context, b *components.Builder) {
		b.Raw(`<dl class="summary"><dt>Formulation</dt><dd>`)
		if issue.Formulation != nil {
			link(b, formulationPath(issue.FormulationID, ""), issue.Formulation.Name)
		} else {
			b.Text("—")
		}
		b.Raw(`</dd><dt>Ingredient</dt><dd>`)
		b.Text(issueIngredient(issue.Ingredient))
		b.Raw(`</dd><dt>Description</dt><dd>`)
		b.Text(issue.Description)
		b.Raw(`</dd><dt>Status</dt><dd>`)
		b.Render(ctx, components.Badge(string(issue.Status), issue.Status.Label()))
		b.Raw(`</dd><dt>Raised</dt><dd>`)
		b.Text(FormatDateTime(issue.CreatedAt))
		b.Raw(`</dd></dl>`)

		b.Raw(`<div class="actions">`)
		if data.CanResolve {
			issueActions(b, issue)
		}
		link(b, "/compliance", "Back to issues")
		b.Raw(`</div>`)
	})
}

// ComplianceRules renders the rule list with the upsert form.
func ComplianceRules(chrome Chrome, data RulesData) templ.Component {
	return page("Compliance Rules", chrome, func(ctx context.Context, b *components.Builder) {
		table(b, "Ingredient", "Max Quantity", "Description", "")
		for _, rule := range data.Rules {
			b.Raw(`<tr>`)
			cell(b, issueIngredient(rule.Ingredient))
			cell(b, FormatQuantity(rule.MaxQuantity))
			cell(b, DefaultDash(rule.Description))
			b.Raw(`<td>`)
			b.Render(ctx, components.PostButton(fmt.Sprintf("/compliance/rules/%d/delete", rule.ID), "Delete"))
			b.Raw(`</td></tr>`)
		}
		if len(data.Rules) == 0 {
			emptyRow(b, 4, "No rules defined.")
		}
		b.Raw(`</tbody></table>`)

		b.Raw(`<section><h2>Set a limit</h2>`)
		errorBox(b, data.Error)
		b.Raw(`<form method="post" action="/compliance/rules">`)
		ingredientSelect(b, data.Ingredients, data.Form.IngredientID)
		input(b, "number", "max_quantity", "Max quantity", data.Form.MaxQuantity)
		input(b, "text", "description", "Description", data.Form.Description)
		b.Raw(`<button type="submit">Save rule</button></form></section>`)
	})
}
