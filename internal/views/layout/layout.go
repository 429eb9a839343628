package layout

import (
	"context"

	"github.com/a-h/templ"

	"perfumery/internal/views/components"
)

func bodyWrapperClass(hasSidebar bool) string {
	if hasSidebar {
		return "app-shell with-sidebar"
	}
	return "app-shell"
}

func mainClass(hasSidebar bool) string {
	if hasSidebar {
		return "app-main"
	}
	return "app-main centered"
}

// Layout wraps content in the document shell. A nil sidebar renders the
// signed-out layout.
func Layout(title string, sidebar, content templ.Component) templ.Component {
	return components.Func(func(ctx context.Context, b *components.Builder) {
		hasSidebar := sidebar != nil
		b.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.Raw(`<title>`)
		b.Text(title)
		b.Raw(`</title><link rel="stylesheet" href="/assets/app.css">`)
		b.Raw(`<script src="/assets/htmx.min.js" defer></script></head><body>`)
		b.Raw(`<div`)
		b.Attr("class", bodyWrapperClass(hasSidebar))
		b.Raw(`>`)
		b.Render(ctx, sidebar)
		b.Raw(`<main`)
		b.Attr("class", mainClass(hasSidebar))
		b.Raw(`>`)
		b.Render(ctx, content)
		b.Raw(`</main></div></body></html>`)
	})
}
