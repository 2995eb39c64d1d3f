package models

import "github.com/shopspring/decimal"

// ClassificationResult is the per-request outcome of the category cascade.
// It is never persisted.
type ClassificationResult struct {
	Amount     *decimal.Decimal
	Category   string
	Confidence *float64
	Message    string
	// Options is set only when the caller must let the user choose.
	Options []string
	// Source names the cascade stage that produced Category.
	Source string
	Term   string
}

// NeedsConfirmation reports whether the result is a low-confidence suggestion
// rather than a committed category.
func (r ClassificationResult) NeedsConfirmation() bool {
	return len(r.Options) > 0
}
