// Package reports builds the read models behind the dashboard, the reports
// page, the chart data endpoint and the downloadable exports.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"perfumery/models"
)

var nowFunc = time.Now

// Slice is one segment of a categorical chart.
type Slice struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// StockLevel is one bar of the stock chart.
type StockLevel struct {
	Name             string          `json:"name"`
	CurrentStock     decimal.Decimal `json:"current_stock"`
	ReorderThreshold decimal.Decimal `json:"reorder_threshold"`
	Low              bool            `json:"low"`
}

// MonthlyCount is the number of formulations created in a calendar month.
type MonthlyCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// IngredientUsage is the quantity of an ingredient across all formulations.
type IngredientUsage struct {
	IngredientID uint            `json:"ingredient_id"`
	Name         string          `json:"name"`
	Total        decimal.Decimal `json:"total"`
}

// Dashboard is the manager landing page.
type Dashboard struct {
	TotalFormulations int64
	Approved          int64
	PendingQA         int64
	OpenIssues        int64
	TotalIngredients  int64
	LowStock          int64
	Compliance        []Slice
	Stock             []StockLevel
	Recent            []models.Formulation
	RecentIssues      []models.ComplianceIssue
}

// Overview is the reports page.
type Overview struct {
	StatusCounts     []Slice
	Trend            []MonthlyCount
	TopIngredients   []IngredientUsage
	TotalIngredients int64
	LowStock         int64
	Recent           []models.Formulation
}

// Charts is the payload of the chart data endpoint.
type Charts struct {
	Compliance []Slice           `json:"compliance"`
	Stock      []StockLevel      `json:"stock"`
	Trend      []MonthlyCount    `json:"trend"`
	Usage      []IngredientUsage `json:"usage"`
}

// InventorySummary is the manager's read-only stock overview.
type InventorySummary struct {
	Ingredients []models.Ingredient
	LowStock    []models.Ingredient
	Usage       map[uint]decimal.Decimal
}

const (
	recentLimit   = 5
	trendMonths   = 6
	topIngredient = 10
)

func countWhere(ctx context.Context, db *gorm.DB, model any, query string, args ...any) (int64, error) {
	var n int64
	tx := db.WithContext(ctx).Model(model)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if err := tx.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// ComplianceBreakdown counts formulations per compliance status in a fixed order.
func ComplianceBreakdown(ctx context.Context, db *gorm.DB) ([]Slice, error) {
	statuses := []models.ComplianceStatus{models.ComplianceCompliant, models.ComplianceNonCompliant, models.CompliancePending}
	out := make([]Slice, 0, len(statuses))
	for _, status := range statuses {
		n, err := countWhere(ctx, db, &models.Formulation{}, "compliance_status = ?", status)
		if err != nil {
			return nil, fmt.Errorf("count %s formulations: %w", status, err)
		}
		out = append(out, Slice{Label: status.Label(), Value: n})
	}
	return out, nil
}

// StatusBreakdown counts formulations per lifecycle status.
func StatusBreakdown(ctx context.Context, db *gorm.DB) ([]Slice, error) {
	out := make([]Slice, 0, len(models.FormulationStatuses))
	for _, status := range models.FormulationStatuses {
		n, err := countWhere(ctx, db, &models.Formulation{}, "status = ?", status)
		if err != nil {
			return nil, fmt.Errorf("count %s formulations: %w", status, err)
		}
		out = append(out, Slice{Label: status.Label(), Value: n})
	}
	return out, nil
}

// StockLevels lists every ingredient by name with its low-stock flag.
func StockLevels(ctx context.Context, db *gorm.DB) ([]StockLevel, error) {
	var ingredients []models.Ingredient
	if err := db.WithContext(ctx).Order("name asc").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	out := make([]StockLevel, 0, len(ingredients))
	for _, ingredient := range ingredients {
		out = append(out, StockLevel{
			Name:             ingredient.Name,
			CurrentStock:     ingredient.CurrentStock,
			ReorderThreshold: ingredient.ReorderThreshold,
			Low:              ingredient.Status() == models.StockLow,
		})
	}
	return out, nil
}

// MonthlyTrend counts formulations created in each of the last months,
// oldest first, including months without any.
func MonthlyTrend(ctx context.Context, db *gorm.DB, now time.Time, months int) ([]MonthlyCount, error) {
	if months <= 0 {
		return []MonthlyCount{}, nil
	}
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	var created []time.Time
	if err := db.WithContext(ctx).Model(&models.Formulation{}).
		Where("created_at >= ?", start).
		Pluck("created_at", &created).Error; err != nil {
		return nil, fmt.Errorf("load formulation dates: %w", err)
	}

	counts := make(map[string]int64, months)
	for _, at := range created {
		counts[at.UTC().Format("2006-01")]++
	}
	out := make([]MonthlyCount, 0, months)
	for i := 0; i < months; i++ {
		month := start.AddDate(0, i, 0).Format("2006-01")
		out = append(out, MonthlyCount{Month: month, Count: counts[month]})
	}
	return out, nil
}

// Usage sums line item quantities per ingredient.
func Usage(ctx context.Context, db *gorm.DB) (map[uint]decimal.Decimal, error) {
	var items []models.FormulationIngredient
	if err := db.WithContext(ctx).Select("ingredient_id", "quantity").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load line items: %w", err)
	}
	totals := make(map[uint]decimal.Decimal)
	for _, item := range items {
		totals[item.IngredientID] = totals[item.IngredientID].Add(item.Quantity)
	}
	return totals, nil
}

// TopIngredients returns the most used ingredients, highest total first.
func TopIngredients(ctx context.Context, db *gorm.DB, limit int) ([]IngredientUsage, error) {
	totals, err := Usage(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return []IngredientUsage{}, nil
	}

	ids := make([]uint, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	var ingredients []models.Ingredient
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("load ingredients: %w", err)
	}

	out := make([]IngredientUsage, 0, len(ingredients))
	for _, ingredient := range ingredients {
		out = append(out, IngredientUsage{IngredientID: ingredient.ID, Name: ingredient.Name, Total: totals[ingredient.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if cmp := out[i].Total.Cmp(out[j].Total); cmp != 0 {
			return cmp > 0
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func recentFormulations(ctx context.Context, db *gorm.DB, limit int) ([]models.Formulation, error) {
	var recent []models.Formulation
	if err := db.WithContext(ctx).Preload("CreatedBy").Order("created_at desc, id desc").Limit(limit).Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("recent formulations: %w", err)
	}
	return recent, nil
}

// BuildDashboard assembles the manager dashboard.
func BuildDashboard(ctx context.Context, db *gorm.DB) (Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	counts := []struct {
		dst   *int64
		model any
		query string
		args  []any
	}{
		{&d.TotalFormulations, &models.Formulation{}, "", nil},
		{&d.Approved, &models.Formulation{}, "status = ?", []any{models.StatusApproved}},
		{&d.PendingQA, &models.Formulation{}, "status = ?", []any{models.StatusPendingQA}},
		{&d.OpenIssues, &models.ComplianceIssue{}, "status = ?", []any{models.IssueOpen}},
		{&d.TotalIngredients, &models.Ingredient{}, "", nil},
		{&d.LowStock, &models.Ingredient{}, "current_stock <= reorder_threshold", nil},
	}
	for _, c := range counts {
		if *c.dst, err = countWhere(ctx, db, c.model, c.query, c.args...); err != nil {
			return Dashboard{}, fmt.Errorf("dashboard counts: %w", err)
		}
	}

	if d.Compliance, err = ComplianceBreakdown(ctx, db); err != nil {
		return Dashboard{}, err
	}
	if d.Stock, err = StockLevels(ctx, db); err != nil {
		return Dashboard{}, err
	}
	if d.Recent, err = recentFormulations(ctx, db, recentLimit); err != nil {
		return Dashboard{}, err
	}
	if err := db.WithContext(ctx).Preload("Formulation").Preload("Ingredient").
		Where("status = ?", models.IssueOpen).
		Order("created_at desc, id desc").
		Limit(recentLimit).
		Find(&d.RecentIssues).Error; err != nil {
		return Dashboard{}, fmt.Errorf("recent issues: %w", err)
	}
	return d, nil
}

// BuildOverview assembles the reports page.
func BuildOverview(ctx context.Context, db *gorm.DB) (Overview, error) {
	var (
		o   Overview
		err error
	)
	if o.StatusCounts, err = StatusBreakdown(ctx, db); err != nil {
		return Overview{}, err
	}
	if o.Trend, err = MonthlyTrend(ctx, db, nowFunc(), trendMonths); err != nil {
		return Overview{}, err
	}
	if o.TopIngredients, err = TopIngredients(ctx, db, topIngredient); err != nil {
		return Overview{}, err
	}
	if o.TotalIngredients, err = countWhere(ctx, db, &models.Ingredient{}, ""); err != nil {
		return Overview{}, fmt.Errorf("count ingredients: %w", err)
	}
	if o.LowStock, err = countWhere(ctx, db, &models.Ingredient{}, "current_stock <= reorder_threshold"); err != nil {
		return Overview{}, fmt.Errorf("count low stock: %w", err)
	}
	if o.Recent, err = recentFormulations(ctx, db, 10); err != nil {
		return Overview{}, err
	}
	return o, nil
}

// BuildCharts assembles every chart series.
func BuildCharts(ctx context.Context, db *gorm.DB) (Charts, error) {
	var (
		c   Charts
		err error
	)
	if c.Compliance, err = ComplianceBreakdown(ctx, db); err != nil {
		return Charts{}, err
	}
	if c.Stock, err = StockLevels(ctx, db); err != nil {
		return Charts{}, err
	}
	if c.Trend, err = MonthlyTrend(ctx, db, nowFunc(), trendMonths); err != nil {
		return Charts{}, err
	}
	if c.Usage, err = TopIngredients(ctx, db, topIngredient); err != nil {
		return Charts{}, err
	}
	return c, nil
}

// BuildInventorySummary assembles the manager's stock overview.
func BuildInventorySummary(ctx context.Context, db *gorm.DB) (InventorySummary, error) {
	var s InventorySummary
	if err := db.WithContext(ctx).Order("name asc").Find(&s.Ingredients).Error; err != nil {
		return InventorySummary{}, fmt.Errorf("list ingredients: %w", err)
	}
	for _, ingredient := range s.Ingredients {
		if ingredient.Status() == models.StockLow {
			s.LowStock = append(s.LowStock, ingredient)
		}
	}
	usage, err := Usage(ctx, db)
	if err != nil {
		return InventorySummary{}, err
	}
	s.Usage = usage
	return s, nil
}
