package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"perfumery/models"
)

var (
	formulationHeaders = []string{"Name", "Version", "Status", "Compliance Status", "Created By", "Created At"}
	ingredientHeaders  = []string{"Ingredient", "Current Stock", "Reorder Threshold", "Total Usage", "Status"}
)

// FormulationRow is one line of the formulations export.
type FormulationRow struct {
	Name             string
	Version          string
	Status           models.FormulationStatus
	ComplianceStatus models.ComplianceStatus
	CreatedBy        string
	CreatedAt        time.Time
}

// IngredientRow is one line of the ingredients export.
type IngredientRow struct {
	Name             string
	CurrentStock     decimal.Decimal
	ReorderThreshold decimal.Decimal
	TotalUsage       decimal.Decimal
	Status           models.StockStatus
}

// FormulationRows loads every formulation, newest first.
func FormulationRows(ctx context.Context, db *gorm.DB) ([]FormulationRow, error) {
	var formulations []models.Formulation
	if err := db.WithContext(ctx).Preload("CreatedBy").Order("created_at desc, id desc").Find(&formulations).Error; err != nil {
		return nil, fmt.Errorf("list formulations: %w", err)
	}
	rows := make([]FormulationRow, 0, len(formulations))
	for _, f := range formulations {
		rows = append(rows, FormulationRow{
			Name:             f.Name,
			Version:          f.Version,
			Status:           f.Status,
			ComplianceStatus: f.ComplianceStatus,
			CreatedBy:        f.CreatorName(),
			CreatedAt:        f.CreatedAt,
		})
	}
	return rows, nil
}

// IngredientRows loads every ingredient by name with its total usage.
func IngredientRows(ctx context.Context, db *gorm.DB) ([]IngredientRow, error) {
	var ingredients []models.Ingredient
	if err := db.WithContext(ctx).Order("name asc").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	usage, err := Usage(ctx, db)
	if err != nil {
		return nil, err
	}
	rows := make([]IngredientRow, 0, len(ingredients))
	for _, ingredient := range ingredients {
		rows = append(rows, IngredientRow{
			Name:             ingredient.Name,
			CurrentStock:     ingredient.CurrentStock,
			ReorderThreshold: ingredient.ReorderThreshold,
			TotalUsage:       usage[ingredient.ID],
			Status:           ingredient.Status(),
		})
	}
	return rows, nil
}

func (r FormulationRow) record() []string {
	return []string{
		r.Name,
		r.Version,
		string(r.Status),
		string(r.ComplianceStatus),
		r.CreatedBy,
		r.CreatedAt.UTC().Format("2006-01-02 15:04"),
	}
}

func (r IngredientRow) record() []string {
	return []string{
		r.Name,
		r.CurrentStock.StringFixed(2),
		r.ReorderThreshold.StringFixed(2),
		r.TotalUsage.StringFixed(2),
		string(r.Status),
	}
}

// WriteFormulationsCSV writes the formulations export.
func WriteFormulationsCSV(w io.Writer, rows []FormulationRow) error {
	out := csv.NewWriter(w)
	if err := out.Write(formulationHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		if err := out.Write(row.record()); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// WriteIngredientsCSV writes the ingredients export.
func WriteIngredientsCSV(w io.Writer, rows []IngredientRow) error {
	out := csv.NewWriter(w)
	if err := out.Write(ingredientHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		if err := out.Write(row.record()); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

func newWorkbook(sheet string, headers []string, widths []float64) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	boldStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, err
	}

	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, boldStyle); err != nil {
			return nil, err
		}
	}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// FormulationsWorkbook renders the formulations export as a spreadsheet.
func FormulationsWorkbook(rows []FormulationRow) (*excelize.File, error) {
	const sheet = "Formulations"
	f, err := newWorkbook(sheet, formulationHeaders, []float64{28, 10, 14, 18, 22, 18})
	if err != nil {
		return nil, err
	}
	for idx, row := range rows {
		line := idx + 2
		for col, value := range row.record() {
			name, _ := excelize.ColumnNumberToName(col + 1)
			if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", name, line), value); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// IngredientsWorkbook renders the ingredients export as a spreadsheet.
// Quantities are written as numbers.
func IngredientsWorkbook(rows []IngredientRow) (*excelize.File, error) {
	const sheet = "Ingredients"
	f, err := newWorkbook(sheet, ingredientHeaders, []float64{28, 14, 18, 14, 12})
	if err != nil {
		return nil, err
	}
	for idx, row := range rows {
		line := idx + 2
		values := []any{
			row.Name,
			row.CurrentStock.InexactFloat64(),
			row.ReorderThreshold.InexactFloat64(),
			row.TotalUsage.InexactFloat64(),
			string(row.Status),
		}
		for col, value := range values {
			name, _ := excelize.ColumnNumberToName(col + 1)
			if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", name, line), value); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}
