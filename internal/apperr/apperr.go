// Package apperr defines the error kinds shared by the domain services and
// the HTTP layer.
package apperr

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"perfumery/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation builds a ValidationError for field.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError is returned when a reservation would drive stock negative.
type InsufficientStockError struct {
	IngredientID uint
	Ingredient   string
	Required     decimal.Decimal
	Available    decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s: required %s, available %s",
		e.Ingredient, e.Required.String(), e.Available.String())
}

// InvalidTransitionError is returned when a lifecycle operation does not
// apply to the formulation's current status.
type InvalidTransitionError struct {
	Action string
	From   models.FormulationStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a formulation in status %s", e.Action, e.From)
}

type notFoundError struct {
	kind string
	id   uint
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.kind, e.id)
}

func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound reports a missing entity. The result matches ErrNotFound under errors.Is.
func NotFound(kind string, id uint) error {
	return &notFoundError{kind: kind, id: id}
}

// Message converts err into text suitable for a flash message. Storage and
// other unexpected errors collapse into a generic message.
func Message(err error) string {
	var (
		validation   *ValidationError
		insufficient *InsufficientStockError
		transition   *InvalidTransitionError
		missing      *notFoundError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &insufficient):
		return fmt.Sprintf("Not enough stock for %s. Required: %s, Available: %s",
			insufficient.Ingredient, insufficient.Required.String(), insufficient.Available.String())
	case errors.As(err, &transition):
		return fmt.Sprintf("Cannot %s a formulation that is %s.", transition.Action, transition.From.Label())
	case errors.As(err, &missing):
		return fmt.Sprintf("The requested %s no longer exists.", missing.kind)
	case errors.Is(err, ErrNotFound):
		return "The requested record no longer exists."
	case errors.Is(err, ErrForbidden):
		return "You are not authorized to perform this action."
	default:
		return "Something went wrong. Please try again."
	}
}

// Expected reports whether err is one of the business errors above rather
// than a storage or programming failure.
func Expected(err error) bool {
	var (
		validation   *ValidationError
		insufficient *InsufficientStockError
		transition   *InvalidTransitionError
	)
	return errors.As(err, &validation) ||
		errors.As(err, &insufficient) ||
		errors.As(err, &transition) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrForbidden)
}
