package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/gorm"

	"perfumery/internal/db/dbtest"
	"perfumery/models"
)

// withDatabase points the commands at a fresh in-memory database.
func withDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	db := dbtest.New(t)
	original := openDatabase
	openDatabase = func(context.Context) (*gorm.DB, error) { return db, nil }
	t.Cleanup(func() { openDatabase = original })
	return db
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestMigrate(t *testing.T) {
	withDatabase(t)

	out, err := execute(t, "migrate")
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out, "Schema up to date") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestUsersAssignAndVerify(t *testing.T) {
	db := withDatabase(t)

	file := writeFile(t, "users.yaml", `
users:
  - email: RD@example.com
    name: Research Lead
    password: s3cret
    role: rd
  - email: qa@example.com
    password: s3cret
    role: qa
`)

	out, err := execute(t, "users", "assign", "--file", file)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if !strings.Contains(out, "created") || !strings.Contains(out, "rd@example.com") {
		t.Fatalf("unexpected output %q", out)
	}

	var user models.User
	if err := db.Where("email = ?", "rd@example.com").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Role != models.RoleRnD || user.Name != "Research Lead" {
		t.Fatalf("unexpected user %+v", user)
	}

	out, err = execute(t, "users", "assign", "-f", file)
	if err != nil {
		t.Fatalf("second assign failed: %v", err)
	}
	if strings.Contains(out, "created") {
		t.Fatalf("expected existing accounts to be kept, got %q", out)
	}

	out, err = execute(t, "users", "verify")
	if err != nil {
		t.Fatalf("verify failed: %v (%s)", err, out)
	}

	if err := db.Create(&models.User{Email: "legacy@example.com", PasswordHash: "plain"}).Error; err != nil {
		t.Fatalf("seed legacy user: %v", err)
	}
	out, err = execute(t, "users", "verify")
	if err == nil {
		t.Fatal("expected verify to fail for the legacy account")
	}
	if !strings.Contains(out, "legacy@example.com: no role assigned") || !strings.Contains(out, "password hash is not bcrypt") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestUsersAssignRejectsBadFiles(t *testing.T) {
	withDatabase(t)

	tests := []struct {
		name    string
		content string
	}{
		{"empty", "users: []\n"},
		{"malformed", "users: [\n"},
		{"unknown role", "users:\n  - email: x@example.com\n    password: pw\n    role: perfumer\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := writeFile(t, "users.yaml", tt.content)
			if _, err := execute(t, "users", "assign", "--file", file); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestInventoryImport(t *testing.T) {
	db := withDatabase(t)

	if _, err := execute(t, "users", "assign", "--file", writeFile(t, "users.yaml", "users:\n  - email: rd@example.com\n    password: pw\n    role: rd\n")); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	sheet := writeFile(t, "stock.csv", "Ingredient,Current Stock,Reorder Threshold\nBergamot,10,2\nHedione,40,10\n")
	out, err := execute(t, "inventory", "import", sheet, "--as", "rd@example.com")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, "2 created") {
		t.Fatalf("unexpected output %q", out)
	}

	var movements []models.StockMovement
	if err := db.Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("expected two import movements, got %d", len(movements))
	}

	sheet = writeFile(t, "stock.csv", "Ingredient,Current Stock\nBergamot,12\nHedione,40\n")
	out, err = execute(t, "inventory", "import", sheet)
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if !strings.Contains(out, "1 updated, 1 unchanged") {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := execute(t, "inventory", "import"); err == nil {
		t.Fatal("expected an argument error")
	}
	if _, err := execute(t, "inventory", "import", writeFile(t, "empty.csv", "")); err == nil {
		t.Fatal("expected an empty sheet to fail")
	}
}
