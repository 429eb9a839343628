// Package access decides which role may perform which operation and where
// each role lands after signing in.
package access

import "perfumery/models"

// Operation names a gated action or view.
type Operation string

const (
	CreateFormulation      Operation = "formulation.create"
	EditFormulation        Operation = "formulation.edit"
	SubmitFormulation      Operation = "formulation.submit"
	DeleteFormulation      Operation = "formulation.delete"
	ViewFormulations       Operation = "formulation.view"
	DecideQA               Operation = "qa.decide"
	ViewQADashboard        Operation = "qa.dashboard"
	ManageIngredients      Operation = "inventory.manage"
	ViewInventory          Operation = "inventory.view"
	AdjustStock            Operation = "inventory.adjust"
	ViewInventorySummary   Operation = "inventory.summary"
	ViewCompliance         Operation = "compliance.view"
	ResolveComplianceIssue Operation = "compliance.resolve"
	ManageComplianceRules  Operation = "compliance.rules"
	ViewDashboard          Operation = "dashboard.view"
	ViewReports            Operation = "reports.view"
	ExportReports          Operation = "reports.export"
)

const (
	PathDashboard    = "/dashboard"
	PathFormulations = "/formulations"
)

var (
	rnd     = []models.Role{models.RoleRnD}
	qa      = []models.Role{models.RoleQA}
	manager = []models.Role{models.RoleManager}
	lab     = []models.Role{models.RoleRnD, models.RoleQA}
)

var table = map[Operation][]models.Role{
	CreateFormulation:      rnd,
	EditFormulation:        rnd,
	SubmitFormulation:      rnd,
	DeleteFormulation:      rnd,
	ViewFormulations:       lab,
	DecideQA:               qa,
	ViewQADashboard:        qa,
	ManageIngredients:      rnd,
	ViewInventory:          rnd,
	AdjustStock:            rnd,
	ViewInventorySummary:   manager,
	ViewCompliance:         lab,
	ResolveComplianceIssue: rnd,
	ManageComplianceRules:  rnd,
	ViewDashboard:          manager,
	ViewReports:            manager,
	ExportReports:          manager,
}

// Authorize reports whether role may perform op. Unknown operations and the
// empty role are always refused.
func Authorize(role models.Role, op Operation) bool {
	for _, allowed := range table[op] {
		if allowed == role {
			return true
		}
	}
	return false
}

// LandingPage is where a user with role is sent after login or after being
// refused a page.
func LandingPage(role models.Role) string {
	switch role {
	case models.RoleRnD, models.RoleQA:
		return PathFormulations
	default:
		return PathDashboard
	}
}
