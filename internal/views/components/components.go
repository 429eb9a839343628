package components

import (
	"context"

	"github.com/a-h/templ"

	"perfumery/internal/views/theme"
)

// SidebarLink is one navigation entry.
type SidebarLink struct {
	Label   string
	Path    string
	Section string
}

// SidebarData drives the navigation sidebar.
type SidebarData struct {
	Active   string
	User     string
	Role     string
	Features []SidebarLink
}

func linkState(section, active string) string {
	if section == active {
		return "active"
	}
	return "inactive"
}

// Sidebar renders the role navigation.
func Sidebar(data SidebarData) templ.Component {
	return Func(func(ctx context.Context, b *Builder) {
		b.Raw(`<aside class="sidebar"><nav><ul>`)
		for _, link := range data.Features {
			b.Raw(`<li><a`)
			b.Attr("href", link.Path)
			b.Attr("data-nav-section", link.Section)
			b.Attr("data-state", linkState(link.Section, data.Active))
			b.Raw(`>`)
			b.Text(link.Label)
			b.Raw(`</a></li>`)
		}
		b.Raw(`</ul></nav>`)
		if data.User != "" {
			b.Raw(`<div class="sidebar-user"><span>`)
			b.Text(data.User)
			b.Raw(`</span> <small>`)
			b.Text(data.Role)
			b.Raw(`</small><form method="post" action="/logout"><button type="submit">Sign out</button></form></div>`)
		}
		b.Raw(`</aside>`)
	})
}

// StatCard renders a headline number.
func StatCard(label, value, delta, caption string) templ.Component {
	return Func(func(ctx context.Context, b *Builder) {
		b.Raw(`<div class="stat-card"><p class="stat-label">`)
		b.Text(label)
		b.Raw(`</p><p class="stat-value">`)
		b.Text(value)
		b.Raw(`</p>`)
		if delta != "" {
			b.Raw(`<p class="stat-delta">`)
			b.Text(delta)
			b.Raw(`</p>`)
		}
		if caption != "" {
			b.Raw(`<p class="stat-caption">`)
			b.Text(caption)
			b.Raw(`</p>`)
		}
		b.Raw(`</div>`)
	})
}

// Badge renders a status value with its tone.
func Badge(status, label string) templ.Component {
	return Func(func(ctx context.Context, b *Builder) {
		b.Raw(`<span`)
		b.Attr("class", theme.ForStatus(status).BadgeClass)
		b.Attr("data-status", status)
		b.Raw(`>`)
		b.Text(label)
		b.Raw(`</span>`)
	})
}

// Flash renders a one-off notice. Kind is "success" or "error".
func Flash(kind, message string) templ.Component {
	return Func(func(ctx context.Context, b *Builder) {
		if message == "" {
			return
		}
		b.Raw(`<div role="alert"`)
		b.Attr("class", "flash flash-"+kind)
		b.Raw(`>`)
		b.Text(message)
		b.Raw(`</div>`)
	})
}

// PostButton renders a single-button form.
func PostButton(action, label string) templ.Component {
	return Func(func(ctx context.Context, b *Builder) {
		b.Raw(`<form method="post" class="inline"`)
		b.Attr("action", action)
		b.Raw(`><button type="submit">`)
		b.Text(label)
		b.Raw(`</button></form>`)
	})
}
