package layout

import (
	"perfumery/internal/access"
	"perfumery/internal/views/components"
	"perfumery/models"
)

type navEntry struct {
	link components.SidebarLink
	op   access.Operation
}

var navigation = []navEntry{
	{components.SidebarLink{Label: "Dashboard", Path: "/dashboard", Section: "dashboard"}, access.ViewDashboard},
	{components.SidebarLink{Label: "Formulations", Path: "/formulations", Section: "formulations"}, access.ViewFormulations},
	{components.SidebarLink{Label: "QA Dashboard", Path: "/qa-dashboard", Section: "qa"}, access.ViewQADashboard},
	{components.SidebarLink{Label: "Inventory", Path: "/inventory", Section: "inventory"}, access.ViewInventory},
	{components.SidebarLink{Label: "Inventory Summary", Path: "/inventory-summary", Section: "inventory-summary"}, access.ViewInventorySummary},
	{components.SidebarLink{Label: "Compliance", Path: "/compliance", Section: "compliance"}, access.ViewCompliance},
	{components.SidebarLink{Label: "Compliance Rules", Path: "/compliance/rules", Section: "compliance-rules"}, access.ManageComplianceRules},
	{components.SidebarLink{Label: "Reports", Path: "/reports", Section: "reports"}, access.ViewReports},
}

// Navigation lists the sections the role may open.
func Navigation(role models.Role, user, active string) components.SidebarData {
	data := components.SidebarData{Active: active, User: user, Role: role.Label()}
	for _, entry := range navigation {
		if access.Authorize(role, entry.op) {
			data.Features = append(data.Features, entry.link)
		}
	}
	return data
}
