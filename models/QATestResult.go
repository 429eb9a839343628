package models

import "time"

// QAStatus is the outcome recorded with a QA test result.
type QAStatus string

const (
	QAPending  QAStatus = "pending"
	QAApproved QAStatus = "approved"
	QARejected QAStatus = "rejected"
)

func (s QAStatus) Valid() bool {
	return s == QAPending || s == QAApproved || s == QARejected
}

func (s QAStatus) Label() string {
	switch s {
	case QAApproved:
		return "Approved"
	case QARejected:
		return "Rejected"
	default:
		return "Pending"
	}
}

// QATestResult is an append-only QA note for a formulation.
type QATestResult struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	FormulationID   uint         `gorm:"not null;index" json:"formulation_id"`
	Formulation     *Formulation `gorm:"foreignKey:FormulationID" json:"-"`
	StabilityTest   string       `gorm:"type:text" json:"stability_test"`
	PerformanceTest string       `gorm:"type:text" json:"performance_test"`
	Comments        string       `gorm:"type:text" json:"comments"`
	TestedByID      uint         `gorm:"not null;index" json:"tested_by_id"`
	TestedBy        *User        `gorm:"foreignKey:TestedByID" json:"-"`
	TestedAt        time.Time    `gorm:"not null;index" json:"tested_at"`
	Status          QAStatus     `gorm:"type:varchar(20);not null;default:pending" json:"status"`
}

func (QATestResult) TableName() string { return "qa_test_results" }
