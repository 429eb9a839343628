// Package components holds the small building blocks shared by every page.
package components

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Builder writes HTML fragments and remembers the first write error.
type Builder struct {
	w   io.Writer
	err error
}

func NewBuilder(w io.Writer) *Builder {
	return &Builder{w: w}
}

// Raw writes trusted markup.
func (b *Builder) Raw(parts ...string) {
	for _, part := range parts {
		if b.err != nil {
			return
		}
		_, b.err = io.WriteString(b.w, part)
	}
}

// Text writes escaped text.
func (b *Builder) Text(value string) {
	b.Raw(templ.EscapeString(value))
}

// Textf formats and escapes text.
func (b *Builder) Textf(format string, args ...any) {
	b.Text(fmt.Sprintf(format, args...))
}

// Attr writes ` name="value"` with the value escaped.
func (b *Builder) Attr(name, value string) {
	b.Raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// Render writes a nested component. Nil components are skipped.
func (b *Builder) Render(ctx context.Context, c templ.Component) {
	if b.err != nil || c == nil {
		return
	}
	b.err = c.Render(ctx, b.w)
}

func (b *Builder) Err() error {
	return b.err
}

// Func adapts a builder callback into a component.
func Func(fn func(ctx context.Context, b *Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := NewBuilder(w)
		fn(ctx, b)
		return b.Err()
	})
}
