package models

import "time"

// IssueStatus tracks the remediation progress of a compliance issue.
type IssueStatus string

const (
	IssueOpen       IssueStatus = "open"
	IssueInProgress IssueStatus = "in_progress"
	IssueResolved   IssueStatus = "resolved"
)

func (s IssueStatus) Label() string {
	switch s {
	case IssueOpen:
		return "Open"
	case IssueInProgress:
		return "In Progress"
	case IssueResolved:
		return "Resolved"
	default:
		return string(s)
	}
}

// ComplianceIssue records a rule violation. At most one exists per
// formulation and ingredient pair.
type ComplianceIssue struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	FormulationID uint         `gorm:"not null;uniqueIndex:idx_issue_formulation_ingredient" json:"formulation_id"`
	Formulation   *Formulation `gorm:"foreignKey:FormulationID" json:"-"`
	IngredientID  uint         `gorm:"not null;uniqueIndex:idx_issue_formulation_ingredient" json:"ingredient_id"`
	Ingredient    *Ingredient  `gorm:"foreignKey:IngredientID" json:"-"`
	Description   string       `gorm:"type:text;not null" json:"description"`
	Status        IssueStatus  `gorm:"type:varchar(20);not null;default:open;index" json:"status"`
	CreatedAt     time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
