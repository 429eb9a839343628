// Package pages renders the server-side HTML views.
package pages

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"perfumery/internal/views/components"
	"perfumery/internal/views/layout"
)

// Chrome is the per-request frame around a page: navigation and the
// flash message popped from the session.
type Chrome struct {
	Nav       components.SidebarData
	FlashKind string
	Flash     string
}

func page(title string, chrome Chrome, body func(ctx context.Context, b *components.Builder)) templ.Component {
	content := components.Func(func(ctx context.Context, b *components.Builder) {
		b.Render(ctx, components.Flash(chrome.FlashKind, chrome.Flash))
		b.Raw(`<h1>`)
		b.Text(title)
		b.Raw(`</h1>`)
		body(ctx, b)
	})
	return layout.Layout(title+" · Perfumery", components.Sidebar(chrome.Nav), content)
}

func link(b *components.Builder, href, label string) {
	b.Raw(`<a`)
	b.Attr("href", href)
	b.Raw(`>`)
	b.Text(label)
	b.Raw(`</a>`)
}

func errorBox(b *components.Builder, message string) {
	if message == "" {
		return
	}
	b.Raw(`<p class="form-error" role="alert">`)
	b.Text(message)
	b.Raw(`</p>`)
}

func input(b *components.Builder, kind, name, label, value string) {
	b.Raw(`<label>`)
	b.Text(label)
	b.Raw(`<input`)
	b.Attr("type", kind)
	b.Attr("name", name)
	b.Attr("value", value)
	if kind == "number" {
		b.Raw(` step="0.01" min="0"`)
	}
	b.Raw(`></label>`)
}

func textarea(b *components.Builder, name, label, value string) {
	b.Raw(`<label>`)
	b.Text(label)
	b.Raw(`<textarea`)
	b.Attr("name", name)
	b.Raw(`>`)
	b.Text(value)
	b.Raw(`</textarea></label>`)
}

func table(b *components.Builder, headers ...string) {
	b.Raw(`<table><thead><tr>`)
	for _, h := range headers {
		b.Raw(`<th>`)
		b.Text(h)
		b.Raw(`</th>`)
	}
	b.Raw(`</tr></thead><tbody>`)
}

func cell(b *components.Builder, value string) {
	b.Raw(`<td>`)
	b.Text(value)
	b.Raw(`</td>`)
}

func emptyRow(b *components.Builder, cols int, message string) {
	b.Raw(fmt.Sprintf(`<tr><td colspan="%d" class="empty">`, cols))
	b.Text(message)
	b.Raw(`</td></tr>`)
}
