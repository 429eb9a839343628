package pages

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDash returns an em dash when the provided value is empty or whitespace.
func DefaultDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

// FormatQuantity renders a stock or recipe quantity with two decimals.
func FormatQuantity(value decimal.Decimal) string {
	return value.StringFixed(2)
}

// FormatDate renders a day month year date.
func FormatDate(v time.Time) string {
	if v.IsZero() {
		return "—"
	}
	return v.Format("02 Jan 2006")
}

// FormatDateTime renders a timestamp down to the minute.
func FormatDateTime(v time.Time) string {
	if v.IsZero() {
		return "—"
	}
	return v.Format("02 Jan 2006 15:04")
}

// QANotesMessage normalises the text displayed above the QA notes form.
func QANotesMessage(message string) string {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "Record stability and performance observations before deciding."
	}
	return trimmed
}
