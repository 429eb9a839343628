package access

import (
	"testing"

	"perfumery/models"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		op      Operation
		rd      bool
		qa      bool
		manager bool
	}{
		{CreateFormulation, true, false, false},
		{EditFormulation, true, false, false},
		{SubmitFormulation, true, false, false},
		{DeleteFormulation, true, false, false},
		{ViewFormulations, true, true, false},
		{ViewCompliance, true, true, false},
		{DecideQA, false, true, false},
		{ViewQADashboard, false, true, false},
		{ManageIngredients, true, false, false},
		{ViewInventory, true, false, false},
		{AdjustStock, true, false, false},
		{ManageComplianceRules, true, false, false},
		{ResolveComplianceIssue, true, false, false},
		{ViewInventorySummary, false, false, true},
		{ViewReports, false, false, true},
		{ExportReports, false, false, true},
		{ViewDashboard, false, false, true},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(string(tt.op), func(t *testing.T) {
			t.Parallel()
			want := map[models.Role]bool{
				models.RoleRnD:     tt.rd,
				models.RoleQA:      tt.qa,
				models.RoleManager: tt.manager,
				models.RoleNone:    false,
			}
			for role, allowed := range want {
				if got := Authorize(role, tt.op); got != allowed {
					t.Fatalf("Authorize(%q, %s) = %t, want %t", role, tt.op, got, allowed)
				}
			}
		})
	}
}

func TestAuthorizeUnknownOperation(t *testing.T) {
	t.Parallel()

	for _, role := range models.Roles {
		if Authorize(role, Operation("unknown")) {
			t.Fatalf("role %q unexpectedly authorized for unknown operation", role)
		}
	}
}

func TestLandingPage(t *testing.T) {
	t.Parallel()

	cases := map[models.Role]string{
		models.RoleManager: PathDashboard,
		models.RoleRnD:     PathFormulations,
		models.RoleQA:      PathFormulations,
		models.RoleNone:    PathDashboard,
	}
	for role, want := range cases {
		if got := LandingPage(role); got != want {
			t.Fatalf("LandingPage(%q) = %q, want %q", role, got, want)
		}
	}
}
