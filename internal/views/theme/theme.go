package theme

import "strings"

// Tone is the colour family used to render a status badge.
type Tone struct {
	Key        string
	BadgeClass string
}

const (
	// DefaultKey is used for statuses without a registered tone.
	DefaultKey = "neutral"
)

var catalogue = map[string]Tone{
	"neutral": {Key: "neutral", BadgeClass: "badge bg-slate-100 text-slate-700"},
	"info":    {Key: "info", BadgeClass: "badge bg-sky-100 text-sky-800"},
	"warning": {Key: "warning", BadgeClass: "badge bg-amber-100 text-amber-800"},
	"success": {Key: "success", BadgeClass: "badge bg-emerald-100 text-emerald-800"},
	"danger":  {Key: "danger", BadgeClass: "badge bg-rose-100 text-rose-800"},
}

// statusTones maps stored status values onto tones.
var statusTones = map[string]string{
	"draft":         "neutral",
	"pending_qa":    "info",
	"approved":      "success",
	"rejected":      "danger",
	"pending":       "neutral",
	"compliant":     "success",
	"non_compliant": "danger",
	"open":          "danger",
	"in_progress":   "warning",
	"resolved":      "success",
	"low_stock":     "warning",
	"in_stock":      "success",
}

// Resolve returns the registered tone for the provided key.
func Resolve(key string) Tone {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if value, ok := catalogue[normalized]; ok {
		return value
	}
	return catalogue[DefaultKey]
}

// ForStatus returns the tone used to display a stored status value.
func ForStatus(status string) Tone {
	return Resolve(statusTones[strings.ToLower(strings.TrimSpace(status))])
}
