package models

import "time"

// FormulationStatus is the lifecycle state of a formulation.
type FormulationStatus string

const (
	StatusDraft     FormulationStatus = "draft"
	StatusPendingQA FormulationStatus = "pending_qa"
	StatusApproved  FormulationStatus = "approved"
	StatusRejected  FormulationStatus = "rejected"
)

// FormulationStatuses lists lifecycle states in workflow order.
var FormulationStatuses = []FormulationStatus{StatusDraft, StatusPendingQA, StatusApproved, StatusRejected}

// Terminal reports whether no further lifecycle transition is possible.
func (s FormulationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s FormulationStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingQA, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s FormulationStatus) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusPendingQA:
		return "Pending QA"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	default:
		return string(s)
	}
}

// ComplianceStatus summarises the last compliance evaluation of a formulation.
type ComplianceStatus string

const (
	CompliancePending      ComplianceStatus = "pending"
	ComplianceCompliant    ComplianceStatus = "compliant"
	ComplianceNonCompliant ComplianceStatus = "non_compliant"
)

func (s ComplianceStatus) Label() string {
	switch s {
	case ComplianceCompliant:
		return "Compliant"
	case ComplianceNonCompliant:
		return "Non-Compliant"
	default:
		return "Pending Check"
	}
}

// Formulation is a versioned perfume recipe.
type Formulation struct {
	ID               uint                    `gorm:"primaryKey" json:"id"`
	Name             string                  `gorm:"not null" json:"name"`
	Version          string                  `gorm:"not null" json:"version"`
	Status           FormulationStatus       `gorm:"type:varchar(20);not null;default:draft;index" json:"status"`
	ComplianceStatus ComplianceStatus        `gorm:"type:varchar(20);not null;default:pending;index" json:"compliance_status"`
	CreatedByID      uint                    `gorm:"not null;index" json:"created_by_id"`
	CreatedBy        *User                   `gorm:"foreignKey:CreatedByID" json:"-"`
	Ingredients      []FormulationIngredient `gorm:"foreignKey:FormulationID;constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
	CreatedAt        time.Time               `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// CreatorName returns a printable author for listings and exports.
func (f Formulation) CreatorName() string {
	if f.CreatedBy == nil {
		return ""
	}
	return f.CreatedBy.DisplayName()
}
