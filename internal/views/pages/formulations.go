package pages

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"perfumery/internal/views/components"
	"perfumery/models"
)

// FormulationListData drives the formulation index.
type FormulationListData struct {
	Formulations []models.Formulation
	Status       models.FormulationStatus
	CanCreate    bool
}

// LineRow is one ingredient line of the formulation form, as submitted.
type LineRow struct {
	IngredientID uint
	Quantity     string
}

// FormulationFormData drives the create and edit forms. ID is zero when creating.
type FormulationFormData struct {
	ID          uint
	Name        string
	Version     string
	Lines       []LineRow
	Ingredients []models.Ingredient
	Error       string
}

// FormulationDetailData drives the formulation detail page.
type FormulationDetailData struct {
	Formulation *models.Formulation
	Issues      []models.ComplianceIssue
	Results     []models.QATestResult
	CanEdit     bool
	CanSubmit   bool
	CanDelete   bool
	CanDecide   bool
}

func formulationPath(id uint, suffix string) string {
	return fmt.Sprintf("/formulations/%d%s", id, suffix)
}

func statusBadges(ctx context.Context, b *components.Builder, f models.Formulation) {
	b.Raw(`<td>`)
	b.Render(ctx, components.Badge(string(f.Status), f.Status.Label()))
	b.Raw(`</td><td>`)
	b.Render(ctx, components.Badge(string(f.ComplianceStatus), f.ComplianceStatus.Label()))
	b.Raw(`</td>`)
}

func recentTable(ctx context.Context, b *components.Builder, formulations []models.Formulation) {
	table(b, "Name", "Version", "Status", "Compliance", "Created By", "Created")
	for _, f := range formulations {
		b.Raw(`<tr><td>`)
		link(b, formulationPath(f.ID, ""), f.Name)
		b.Raw(`</td>`)
		cell(b, f.Version)
		statusBadges(ctx, b, f)
		cell(b, DefaultDash(f.CreatorName()))
		cell(b, FormatDate(f.CreatedAt))
		b.Raw(`</tr>`)
	}
	if len(formulations) == 0 {
		emptyRow(b, 6, "No formulations yet.")
	}
	b.Raw(`</tbody></table>`)
}

func issueFormulation(f *models.Formulation) string {
	if f == nil {
		return "—"
	}
	return f.Name
}

func issueIngredient(i *models.Ingredient) string {
	if i == nil {
		return "—"
	}
	return i.Name
}

// FormulationList renders the formulation index.
func FormulationList(chrome Chrome, data FormulationListData) templ.Component {
	return page("Formulations", chrome, func(ctx context.Context, b *components.Builder) {
		b.Raw(`<form method="get" action="/formulations" class="filters"><select name="status"><option value="">All statuses</option>`)
		for _, status := range models.FormulationStatuses {
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
		if data.CanCreate {
			b.Raw(`<p>`)
			link(b, "/formulations/new", "New formulation")
			b.Raw(`</p>`)
		}
		recentTable(ctx, b, data.Formulations)
	})
}

func ingredientSelect(b *components.Builder, ingredients []models.Ingredient, selected uint) {
	b.Raw(`<select name="ingredient_id"><option value="">Select ingredient</option>`)
	for _, ingredient := range ingredients {
		b.Raw(`<option`)
		b.Attr("value", fmt.Sprint(ingredient.ID))
		if ingredient.ID == selected {
			b.Raw(` selected`)
		}
		b.Raw(`>`)
		b.Textf("%s (%s available)", ingredient.Name, FormatQuantity(ingredient.CurrentStock))
		b.Raw(`</option>`)
	}
	b.Raw(`</select>`)
}

// FormulationForm renders the create or edit form.
func FormulationForm(chrome Chrome, data FormulationFormData) templ.Component {
	title, action := "New formulation", "/formulations/new"
	if data.ID != 0 {
		title, action = "Edit formulation", formulationPath(data.ID, "/edit")
	}
	return page(title, chrome, func(ctx context.Context, b *components.Builder) {
		errorBox(b, data.Error)
		b.Raw(`<form method="post"`)
		b.Attr("action", action)
		b.Raw(`>`)
		input(b, "text", "name", "Name", data.Name)
		input(b, "text", "version", "Version", data.Version)
		b.Raw(`<fieldset id="lines"><legend>Ingredients</legend>`)
		lines := data.Lines
		if len(lines) == 0 {
			lines = []LineRow{{}}
		}
		for _, line := range lines {
			b.Raw(`<div class="line">`)
			ingredientSelect(b, data.Ingredients, line.IngredientID)
			b.Raw(`<input type="number" name="quantity" step="0.01" min="0.01"`)
			b.Attr("value", line.Quantity)
			b.Raw(`></div>`)
		}
		b.Raw(`</fieldset><button type="submit">Save</button></form>`)
	})
}

// FormulationDetail renders one formulation with its issues and QA history.
func FormulationDetail(chrome Chrome, data FormulationDetailData) templ.Component {
	f := data.Formulation
	return page(f.Name, chrome, func(ctx context.Context, b *components.Builder) {
		b.Raw(`<dl class="summary"><dt>Version</dt><dd>`)
		b.Text(f.Version)
		b.Raw(`</dd><dt>Status</dt><dd>`)
		b.Render(ctx, components.Badge(string(f.Status), f.Status.Label()))
		b.Raw(`</dd><dt>Compliance</dt><dd>`)
		b.Render(ctx, components.Badge(string(f.ComplianceStatus), f.ComplianceStatus.Label()))
		b.Raw(`</dd><dt>Created by</dt><dd>`)
		b.Text(DefaultDash(f.CreatorName()))
		b.Raw(`</dd><dt>Created</dt><dd>`)
		b.Text(FormatDateTime(f.CreatedAt))
		b.Raw(`</dd></dl>`)

		b.Raw(`<div class="actions">`)
		if data.CanEdit {
			link(b, formulationPath(f.ID, "/edit"), "Edit")
		}
		if data.CanSubmit {
			b.Render(ctx, components.PostButton(formulationPath(f.ID, "/submit-qa"), "Submit for QA"))
		}
		if data.CanDecide {
			link(b, fmt.Sprintf("/qa/test-result/%d", f.ID), "Record QA result")
		}
		if data.CanDelete {
			b.Render(ctx, components.PostButton(formulationPath(f.ID, "/delete"), "Delete"))
		}
		b.Raw(`</div>`)

		b.Raw(`<section><h2>Ingredients</h2>`)
		table(b, "Ingredient", "Quantity")
		for _, item := range f.Ingredients {
			b.Raw(`<tr>`)
			cell(b, item.IngredientName())
			cell(b, FormatQuantity(item.Quantity))
			b.Raw(`</tr>`)
		}
		if len(f.Ingredients) == 0 {
			emptyRow(b, 2, "No ingredients.")
		}
		b.Raw(`</tbody></table></section>`)

		b.Raw(`<section><h2>Compliance issues</h2>`)
		table(b, "Ingredient", "Description", "Status")
		for _, issue := range data.Issues {
			b.Raw(`<tr>`)
			cell(b, issueIngredient(issue.Ingredient))
			cell(b, issue.Description)
			b.Raw(`<td>`)
			b.Render(ctx, components.Badge(string(issue.Status), issue.Status.Label()))
			b.Raw(`</td></tr>`)
		}
		if len(data.Issues) == 0 {
			emptyRow(b, 3, "No compliance issues.")
		}
		b.Raw(`</tbody></table></section>`)

		b.Raw(`<section><h2>QA results</h2>`)
		resultsTable(ctx, b, data.Results)
		b.Raw(`</section>`)
	})
}

func resultsTable(ctx context.Context, b *components.Builder, results []models.QATestResult) {
	table(b, "Tested", "Tester", "Stability", "Performance", "Comments", "Status")
	for _, result := range results {
		tester := ""
		if result.TestedBy != nil {
			tester = result.TestedBy.DisplayName()
		}
		b.Raw(`<tr>`)
		cell(b, FormatDateTime(result.TestedAt))
		cell(b, DefaultDash(tester))
		cell(b, DefaultDash(result.StabilityTest))
		cell(b, DefaultDash(result.PerformanceTest))
		cell(b, DefaultDash(result.Comments))
		b.Raw(`<td>`)
		b.Render(ctx, components.Badge(string(result.Status), result.Status.Label()))
		b.Raw(`</td></tr>`)
	}
	if len(results) == 0 {
		emptyRow(b, 6, "No QA results recorded.")
	}
	b.Raw(`</tbody></table>`)
}
