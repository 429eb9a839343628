// Package review stores the append-only QA test results of formulations.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"perfumery/internal/apperr"
	"perfumery/internal/metrics"
	"perfumery/models"
)

var nowFunc = time.Now

// Notes are the free-text observations captured by QA.
type Notes struct {
	Stability   string
	Performance string
	Comments    string
}

func (n Notes) trimmed() Notes {
	return Notes{
		Stability:   strings.TrimSpace(n.Stability),
		Performance: strings.TrimSpace(n.Performance),
		Comments:    strings.TrimSpace(n.Comments),
	}
}

// Record appends a QA test result for a formulation.
func Record(ctx context.Context, db *gorm.DB, formulationID uint, notes Notes, testerID uint, status models.QAStatus) (*models.QATestResult, error) {
	if !status.Valid() {
		return nil, apperr.Validation("status", "Unknown QA status %q", status)
	}
	if formulationID == 0 {
		return nil, apperr.Validation("formulation", "Formulation is required")
	}

	notes = notes.trimmed()
	result := models.QATestResult{
		FormulationID:   formulationID,
		StabilityTest:   notes.Stability,
		PerformanceTest: notes.Performance,
		Comments:        notes.Comments,
		TestedByID:      testerID,
		TestedAt:        nowFunc().UTC(),
		Status:          status,
	}
	if err := db.WithContext(ctx).Create(&result).Error; err != nil {
		return nil, fmt.Errorf("record qa result: %w", err)
	}

	metrics.QADecision(string(status))
	return &result, nil
}

// Latest returns the newest result for a formulation, or nil when QA has not
// recorded anything yet.
func Latest(ctx context.Context, db *gorm.DB, formulationID uint) (*models.QATestResult, error) {
	var result models.QATestResult
	err := db.WithContext(ctx).
		Preload("TestedBy").
		Where("formulation_id = ?", formulationID).
		Order("tested_at desc, id desc").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest qa result: %w", err)
	}
	return &result, nil
}

// History returns every result for a formulation, newest first.
func History(ctx context.Context, db *gorm.DB, formulationID uint) ([]models.QATestResult, error) {
	var results []models.QATestResult
	if err := db.WithContext(ctx).
		Preload("TestedBy").
		Where("formulation_id = ?", formulationID).
		Order("tested_at desc, id desc").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("list qa results: %w", err)
	}
	return results, nil
}
