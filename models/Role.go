package models

import "strings"

// Role is the single job function assigned to a user.
type Role string

const (
	RoleNone    Role = ""
	RoleRnD     Role = "rd"
	RoleQA      Role = "qa"
	RoleManager Role = "manager"
)

// Roles lists every assignable role.
var Roles = []Role{RoleRnD, RoleQA, RoleManager}

// ParseRole maps user supplied role names onto a Role. Group names used by
// the old admin tooling ("R&D", "r_and_d") are accepted as aliases.
func ParseRole(value string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "rd", "r&d", "r_and_d", "rnd", "research":
		return RoleRnD, true
	case "qa", "quality":
		return RoleQA, true
	case "manager", "management":
		return RoleManager, true
	case "":
		return RoleNone, true
	default:
		return RoleNone, false
	}
}

func (r Role) Label() string {
	switch r {
	case RoleRnD:
		return "R&D"
	case RoleQA:
		return "QA"
	case RoleManager:
		return "Manager"
	default:
		return "No role"
	}
}
