package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"perfumery/internal/apperr"
	"perfumery/internal/formulation"
	"perfumery/internal/views/pages"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type loginForm struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type formulationForm struct {
	Name    string `validate:"required,max=100"`
	Version string `validate:"required,max=20"`
}

type ingredientForm struct {
	Name             string `validate:"required,max=100"`
	CurrentStock     string `validate:"required,numeric"`
	ReorderThreshold string `validate:"omitempty,numeric"`
}

type stockForm struct {
	CurrentStock string `validate:"required,numeric"`
}

type ruleForm struct {
	IngredientID uint   `validate:"required"`
	MaxQuantity  string `validate:"required,numeric"`
	Description  string `validate:"max=500"`
}

type issueForm struct {
	Action string `validate:"required,oneof=mark_in_progress mark_resolved"`
}

type qaForm struct {
	Stability   string `validate:"max=5000"`
	Performance string `validate:"max=5000"`
	Comments    string `validate:"max=5000"`
}

var fieldLabels = map[string]string{
	"Name":             "Name",
	"Version":          "Version",
	"CurrentStock":     "Current stock",
	"ReorderThreshold": "Reorder threshold",
	"IngredientID":     "Ingredient",
	"MaxQuantity":      "Max quantity",
	"Description":      "Description",
	"Action":           "Action",
	"Stability":        "Stability test",
	"Performance":      "Performance test",
	"Comments":         "Comments",
}

// validationMessage turns the first validator failure into form text.
func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return apperr.Message(err)
	}
	fe := errs[0]
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "numeric":
		return label + " must be a number."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "oneof":
		return label + " is not recognised."
	default:
		return label + " is invalid."
	}
}

func parseDecimal(value string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseLines pairs the repeated ingredient_id and quantity fields. Fully
// blank rows are dropped. The submitted rows are returned for re-rendering.
func parseLines(r *http.Request) ([]formulation.LineItem, []pages.LineRow, error) {
	ids := r.PostForm["ingredient_id"]
	quantities := r.PostForm["quantity"]
	n := len(ids)
	if len(quantities) > n {
		n = len(quantities)
	}

	var (
		items []formulation.LineItem
		rows  []pages.LineRow
		bad   error
	)
	for i := 0; i < n; i++ {
		var rawID, rawQty string
		if i < len(ids) {
			rawID = strings.TrimSpace(ids[i])
		}
		if i < len(quantities) {
			rawQty = strings.TrimSpace(quantities[i])
		}
		if rawID == "" && rawQty == "" {
			continue
		}
		id := pages.ParseUint(rawID)
		rows = append(rows, pages.LineRow{IngredientID: id, Quantity: rawQty})
		if bad != nil {
			continue
		}
		if id == 0 {
			bad = apperr.Validation("ingredient", "Select an ingredient for every line")
			continue
		}
		qty, err := decimal.NewFromString(rawQty)
		if err != nil {
			bad = apperr.Validation("quantity", "Quantity must be a number")
			continue
		}
		items = append(items, formulation.LineItem{IngredientID: id, Quantity: qty})
	}
	return items, rows, bad
}
