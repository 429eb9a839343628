package pages

import (
	"context"

	"github.com/a-h/templ"

	"perfumery/internal/views/components"
	"perfumery/internal/views/layout"
)

// LoginPartial renders the sign-in form alone, for HTMX swaps.
func LoginPartial(message, email string) templ.Component {
	return components.Func(func(ctx context.Context, b *components.Builder) {
		b.Raw(`<section id="login" class="login-card"><h1>Sign in</h1>`)
		errorBox(b, message)
		b.Raw(`<form method="post" action="/login">`)
		input(b, "email", "email", "Email", email)
		input(b, "password", "password", "Password", "")
		b.Raw(`<button type="submit">Sign in</button></form></section>`)
	})
}

// Login renders the full sign-in page.
func Login(message, email string) templ.Component {
	return layout.Layout("Sign in · Perfumery", nil, LoginPartial(message, email))
}

// Forbidden is shown when a user may not open their own landing page.
func Forbidden(chrome Chrome) templ.Component {
	return page("Access denied", chrome, func(ctx context.Context, b *components.Builder) {
		b.Raw(`<p>Your account has no access to this page. Ask a manager to assign you a role.</p>`)
	})
}
