package pages

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"perfumery/internal/reports"
	"perfumery/internal/views/components"
	"perfumery/models"
)

// IngredientListData drives the inventory page.
type IngredientListData struct {
	Ingredients []models.Ingredient
	Filters     IngredientFilters
	CanManage   bool
}

// IngredientFormData drives the ingredient create and edit forms.
type IngredientFormData struct {
	ID               uint
	Name             string
	CurrentStock     string
	ReorderThreshold string
	Movements        []models.StockMovement
	Error            string
}

func ingredientPath(id uint, suffix string) string {
	return fmt.Sprintf("/inventory/%d%s", id, suffix)
}

func stockBadge(ctx context.Context, b *components.Builder, ingredient models.Ingredient) {
	status := ingredient.Status()
	b.Raw(`<td>`)
	b.Render(ctx, components.Badge(string(status), status.Label()))
	b.Raw(`</td>`)
}

// IngredientList renders the inventory with inline stock updates.
func IngredientList(chrome Chrome, data IngredientListData) templ.Component {
	return page("Inventory", chrome, func(ctx context.Context, b *components.Builder) {
		b.Raw(`<form method="get" action="/inventory" class="filters">`)
		input(b, "search", "q", "Search", data.Filters.Query)
		b.Raw(`<button type="submit">Search</button></form>`)
		if data.CanManage {
			b.Raw(`<p>`)
			link(b, "/inventory/new", "New ingredient")
			b.Raw(`</p>`)
		}
		table(b, "Ingredient", "Current Stock", "Reorder Threshold", "Status", "")
		for _, ingredient := range data.Ingredients {
			b.Raw(`<tr>`)
			cell(b, ingredient.Name)
			cell(b, FormatQuantity(ingredient.CurrentStock))
			cell(b, FormatQuantity(ingredient.ReorderThreshold))
			stockBadge(ctx, b, ingredient)
			b.Raw(`<td>`)
			if data.CanManage {
				b.Raw(`<form method="post" class="inline"`)
				b.Attr("action", ingredientPath(ingredient.ID, "/update"))
				b.Raw(`><input type="number" name="current_stock" step="0.01" min="0"`)
				b.Attr("value", FormatQuantity(ingredient.CurrentStock))
				b.Raw(`><button type="submit">Update stock</button></form>`)
				link(b, ingredientPath(ingredient.ID, "/edit"), "Edit")
				b.Render(ctx, components.PostButton(ingredientPath(ingredient.ID, "/delete"), "Delete"))
			}
			b.Raw(`</td></tr>`)
		}
		if len(data.Ingredients) == 0 {
			emptyRow(b, 5, "No ingredients found.")
		}
		b.Raw(`</tbody></table>`)
	})
}

// IngredientForm renders the ingredient create or edit form.
func IngredientForm(chrome Chrome, data IngredientFormData) templ.Component {
	title, action := "New ingredient", "/inventory/new"
	if data.ID != 0 {
		title, action = "Edit ingredient", ingredientPath(data.ID, "/edit")
	}
	return page(title, chrome, func(ctx context.Context, b *components.Builder) {
		errorBox(b, data.Error)
		b.Raw(`<form method="post"`)
		b.Attr("action", action)
		b.Raw(`>`)
		input(b, "text", "name", "Name", data.Name)
		input(b, "number", "current_stock", "Current stock", data.CurrentStock)
		input(b, "number", "reorder_threshold", "Reorder threshold", data.ReorderThreshold)
		b.Raw(`<button type="submit">Save</button></form>`)

		if data.ID == 0 {
			return
		}
		b.Raw(`<section><h2>Stock movements</h2>`)
		table(b, "When", "Kind", "Change", "Before", "After", "Note")
		for _, m := range data.Movements {
			b.Raw(`<tr>`)
			cell(b, FormatDateTime(m.CreatedAt))
			cell(b, string(m.Kind))
			cell(b, FormatQuantity(m.Delta))
			cell(b, FormatQuantity(m.StockBefore))
			cell(b, FormatQuantity(m.StockAfter))
			cell(b, DefaultDash(m.Note))
			b.Raw(`</tr>`)
		}
		if len(data.Movements) == 0 {
			emptyRow(b, 6, "No movements recorded.")
		}
		b.Raw(`</tbody></table></section>`)
	})
}

// InventorySummary renders the manager's read-only stock overview.
func InventorySummary(chrome Chrome, s reports.InventorySummary) templ.Component {
	return page("Inventory Summary", chrome, func(ctx context.Context, b *components.Builder) {
		b.Raw(`<div class="stats">`)
		b.Render(ctx, components.StatCard("Ingredients", fmt.Sprint(len(s.Ingredients)), "", ""))
		b.Render(ctx, components.StatCard("Low stock", fmt.Sprint(len(s.LowStock)), "", "At or below reorder threshold"))
		b.Raw(`</div>`)
		table(b, "Ingredient", "Current Stock", "Reorder Threshold", "Total Usage", "Status")
		for _, ingredient := range s.Ingredients {
			b.Raw(`<tr>`)
			cell(b, ingredient.Name)
			cell(b, FormatQuantity(ingredient.CurrentStock))
			cell(b, FormatQuantity(ingredient.ReorderThreshold))
			cell(b, FormatQuantity(s.Usage[ingredient.ID]))
			stockBadge(ctx, b, ingredient)
			b.Raw(`</tr>`)
		}
		if len(s.Ingredients) == 0 {
			emptyRow(b, 5, "No ingredients yet.")
		}
		b.Raw(`</tbody></table>`)
	})
}
