package pages

import (
	"context"
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"perfumery/internal/reports"
	"perfumery/internal/views/components"
)

func count(n int64) string {
	return strconv.FormatInt(n, 10)
}

func slices(b *components.Builder, title string, series []reports.Slice) {
	b.Raw(`<section class="chart" data-chart="`)
	b.Text(title)
	b.Raw(`"><h2>`)
	b.Text(title)
	b.Raw(`</h2><ul>`)
	for _, s := range series {
		b.Raw(`<li><span>`)
		b.Text(s.Label)
		b.Raw(`</span> <strong>`)
		b.Text(count(s.Value))
		b.Raw(`</strong></li>`)
	}
	b.Raw(`</ul></section>`)
}

// Dashboard renders the manager overview.
func Dashboard(chrome Chrome, d reports.Dashboard) templ.Component {
	return page("Dashboard", chrome, func(ctx context.Context, b *components.Builder) {
		b.Raw(`<div class="stats">`)
		b.Render(ctx, components.StatCard("Formulations", count(d.TotalFormulations), "", ""))
		b.Render(ctx, components.StatCard("Approved", count(d.Approved), "", ""))
		b.Render(ctx, components.StatCard("Pending QA", count(d.PendingQA), "", ""))
		b.Render(ctx, components.StatCard("Open issues", count(d.OpenIssues), "", ""))
		b.Render(ctx, components.StatCard("Ingredients", count(d.TotalIngredients), fmt.Sprintf("%d low", d.LowStock), "At or below reorder threshold"))
		b.Raw(`</div>`)

		slices(b, "Compliance", d.Compliance)

		b.Raw(`<section><h2>Stock levels</h2>`)
		table(b, "Ingredient", "Current Stock", "Reorder Threshold", "Status")
		for _, level := range d.Stock {
			b.Raw(`<tr>`)
			cell(b, level.Name)
			cell(b, FormatQuantity(level.CurrentStock))
			cell(b, FormatQuantity(level.ReorderThreshold))
			b.Raw(`<td>`)
			if level.Low {
				b.Render(ctx, components.Badge("low_stock", "Low Stock"))
			} else {
				b.Render(ctx, components.Badge("in_stock", "In Stock"))
			}
			b.Raw(`</td></tr>`)
		}
		if len(d.Stock) == 0 {
			emptyRow(b, 4, "No ingredients yet.")
		}
		b.Raw(`</tbody></table></section>`)

		b.Raw(`<section><h2>Recent formulations</h2>`)
		recentTable(ctx, b, d.Recent)
		b.Raw(`</section>`)

		b.Raw(`<section><h2>Open compliance issues</h2>`)
		table(b, "Formulation", "Ingredient", "Description", "Raised")
		for _, issue := range d.RecentIssues {
			b.Raw(`<tr>`)
			cell(b, issueFormulation(issue.Formulation))
			cell(b, issueIngredient(issue.Ingredient))
			cell(b, issue.Description)
			cell(b, FormatDate(issue.CreatedAt))
			b.Raw(`</tr>`)
		}
		if len(d.RecentIssues) == 0 {
			emptyRow(b, 4, "No open issues.")
		}
		b.Raw(`</tbody></table></section>`)
	})
}

// Reports renders the manager reports page.
func Reports(chrome Chrome, o reports.Overview) templ.Component {
	return page("Reports", chrome, func(ctx context.Context, b *components.Builder) {
		b.Raw(`<p class="downloads">`)
		link(b, "/reports/download/formulations", "Formulations (CSV)")
		b.Raw(` `)
		link(b, "/reports/download/formulations.xlsx", "Formulations (XLSX)")
		b.Raw(` `)
		link(b, "/reports/download/ingredients", "Ingredients (CSV)")
		b.Raw(` `)
		link(b, "/reports/download/ingredients.xlsx", "Ingredients (XLSX)")
		b.Raw(`</p>`)

		b.Raw(`<div class="stats">`)
		b.Render(ctx, components.StatCard("Ingredients", count(o.TotalIngredients), "", ""))
		b.Render(ctx, components.StatCard("Low stock", count(o.LowStock), "", ""))
		b.Raw(`</div>`)

		slices(b, "Formulations by status", o.StatusCounts)

		b.Raw(`<section class="chart" data-chart="trend"><h2>Formulations per month</h2>`)
		table(b, "Month", "Created")
		for _, m := range o.Trend {
			b.Raw(`<tr>`)
			cell(b, m.Month)
			cell(b, count(m.Count))
			b.Raw(`</tr>`)
		}
		b.Raw(`</tbody></table></section>`)

		b.Raw(`<section><h2>Most used ingredients</h2>`)
		table(b, "Ingredient", "Total Usage")
		for _, u := range o.TopIngredients {
			b.Raw(`<tr>`)
			cell(b, u.Name)
			cell(b, FormatQuantity(u.Total))
			b.Raw(`</tr>`)
		}
		if len(o.TopIngredients) == 0 {
			emptyRow(b, 2, "No formulations yet.")
		}
		b.Raw(`</tbody></table></section>`)

		b.Raw(`<section><h2>Recent formulations</h2>`)
		recentTable(ctx, b, o.Recent)
		b.Raw(`</section>`)
	})
}
