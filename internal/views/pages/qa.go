package pages

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"perfumery/internal/views/components"
	"perfumery/models"
)

// QADashboardData drives the QA queue.
type QADashboardData struct {
	Pending []models.Formulation
	Latest  map[uint]*models.QATestResult
}

// QAResultData drives the QA test form for one formulation.
type QAResultData struct {
	Formulation *models.Formulation
	Results     []models.QATestResult
	Stability   string
	Performance string
	Comments    string
	Message     string
	Error       string
}

// QADashboard renders the formulations waiting for a QA decision.
func QADashboard(chrome Chrome, data QADashboardData) templ.Component {
	return page("QA Dashboard", chrome, func(ctx context.Context, b *components.Builder) {
		table(b, "Name", "Version", "Compliance", "Created By", "Last Tested", "")
		for _, f := range data.Pending {
			b.Raw(`<tr><td>`)
			link(b, formulationPath(f.ID, ""), f.Name)
			b.Raw(`</td>`)
			cell(b, f.Version)
			b.Raw(`<td>`)
			b.Render(ctx, components.Badge(string(f.ComplianceStatus), f.ComplianceStatus.Label()))
			b.Raw(`</td>`)
			cell(b, DefaultDash(f.CreatorName()))
			tested := "—"
			if latest := data.Latest[f.ID]; latest != nil {
				tested = FormatDateTime(latest.TestedAt)
			}
			cell(b, tested)
			b.Raw(`<td>`)
			link(b, fmt.Sprintf("/qa/test-result/%d", f.ID), "Review")
			b.Render(ctx, components.PostButton(fmt.Sprintf("/qa/%d/approve", f.ID), "Approve"))
			b.Render(ctx, components.PostButton(fmt.Sprintf("/qa/%d/reject", f.ID), "Reject"))
			b.Raw(`</td></tr>`)
		}
		if len(data.Pending) == 0 {
			emptyRow(b, 6, "Nothing is waiting for QA.")
		}
		b.Raw(`</tbody></table>`)
	})
}

// QATestResult renders the notes form with approve and reject actions.
func QATestResult(chrome Chrome, data QAResultData) templ.Component {
	f := data.Formulation
	return page("QA review: "+f.Name, chrome, func(ctx context.Context, b *components.Builder) {
		b.Raw(`<p class="hint">`)
		b.Text(QANotesMessage(data.Message))
		b.Raw(`</p>`)
		errorBox(b, data.Error)
		if f.Status == models.StatusPendingQA {
			b.Raw(`<form method="post"`)
			b.Attr("action", fmt.Sprintf("/qa/test-result/%d", f.ID))
			b.Raw(`>`)
			textarea(b, "stability_test", "Stability test", data.Stability)
			textarea(b, "performance_test", "Performance test", data.Performance)
			textarea(b, "comments", "Comments", data.Comments)
			b.Raw(`<button type="submit" name="action" value="save">Save notes</button>`)
			b.Raw(`<button type="submit" name="action" value="approve">Approve</button>`)
			b.Raw(`<button type="submit" name="action" value="reject">Reject</button></form>`)
		} else {
			b.Raw(`<p>This formulation is `)
			b.Text(f.Status.Label())
			b.Raw(` and is not awaiting QA.</p>`)
		}
		b.Raw(`<section><h2>History</h2>`)
		resultsTable(ctx, b, data.Results)
		b.Raw(`</section>`)
	})
}
