package layout

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"perfumery/models"
)

func sections(role models.Role) []string {
	var out []string
	for _, link := range Navigation(role, "", "").Features {
		out = append(out, link.Section)
	}
	return out
}

func TestNavigationFollowsRole(t *testing.T) {
	tests := []struct {
		role models.Role
		want []string
	}{
		{models.RoleRnD, []string{"formulations", "inventory", "compliance", "compliance-rules"}},
		{models.RoleQA, []string{"formulations", "qa", "compliance"}},
		{models.RoleManager, []string{"dashboard", "inventory-summary", "reports"}},
		{models.RoleNone, nil},
	}
	for _, tt := range tests {
		got := sections(tt.role)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Fatalf("Navigation(%q) sections = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestNavigationCarriesUser(t *testing.T) {
	data := Navigation(models.RoleQA, "Quinn", "qa")
	if data.User != "Quinn" || data.Role != "QA" || data.Active != "qa" {
		t.Fatalf("unexpected sidebar data: %+v", data)
	}
}

func TestLayoutRendersProvidedContent(t *testing.T) {
	sidebar := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := w.Write([]byte("<aside>sidebar</aside>"))
		return err
	})
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := w.Write([]byte("<main>content</main>"))
		return err
	})

	var buf bytes.Buffer
	err := Layout("Formulations", sidebar, content).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("render layout: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<title>Formulations</title>") {
		t.Fatalf("expected document title to be rendered: %s", out)
	}
	if !strings.Contains(out, "sidebar") || !strings.Contains(out, "content") {
		t.Fatalf("expected sidebar and content sections in output: %s", out)
	}
}

func TestBodyWrapperClassReflectsSidebarState(t *testing.T) {
	if bodyWrapperClass(true) == bodyWrapperClass(false) {
		t.Fatal("expected different body wrapper class depending on sidebar state")
	}
	if mainClass(true) == mainClass(false) {
		t.Fatal("expected different main class depending on sidebar state")
	}
}
