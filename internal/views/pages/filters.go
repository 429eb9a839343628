package pages

import (
	"net/http"
	"strconv"
	"strings"

	"perfumery/models"
)

// IngredientFilters capture the client-driven state for ingredient lookups.
type IngredientFilters struct {
	Query string
}

// IngredientFiltersFromRequest extracts filter inputs from an HTTP request.
func IngredientFiltersFromRequest(r *http.Request) IngredientFilters {
	return IngredientFilters{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
}

// FilterIngredients applies the provided filters to a list of ingredients.
func FilterIngredients(all []models.Ingredient, filters IngredientFilters) []models.Ingredient {
	if filters.Query == "" {
		return all
	}
	query := strings.ToLower(filters.Query)
	filtered := make([]models.Ingredient, 0, len(all))
	for _, ingredient := range all {
		if containsFold(ingredient.Name, query) {
			filtered = append(filtered, ingredient)
		}
	}
	return filtered
}

// FormulationStatusFromRequest reads the optional status filter. Unknown
// values are ignored.
func FormulationStatusFromRequest(r *http.Request) models.FormulationStatus {
	status := models.FormulationStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	if status.Valid() {
		return status
	}
	return ""
}

// IssueStatusFromRequest reads the optional compliance issue status filter.
func IssueStatusFromRequest(r *http.Request) models.IssueStatus {
	switch status := models.IssueStatus(strings.TrimSpace(r.URL.Query().Get("status"))); status {
	case models.IssueOpen, models.IssueInProgress, models.IssueResolved:
		return status
	}
	return ""
}

// FindIngredient returns the ingredient with the requested identifier.
func FindIngredient(all []models.Ingredient, id uint) *models.Ingredient {
	for i := range all {
		if all[i].ID == id {
			return &all[i]
		}
	}
	return nil
}

// ParseUint extracts a uint from the provided string, returning zero on failure.
func ParseUint(value string) uint {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	parsed, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0
	}
	return uint(parsed)
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), needle)
}
