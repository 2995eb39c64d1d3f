package models

import "github.com/shopspring/decimal"

// MonthlySummary holds per-category totals for one month of one user.
type MonthlySummary struct {
	Month  string
	Totals map[string]decimal.Decimal
}

// CategorySummary holds all expenses of one category and their total.
type CategorySummary struct {
	Category string
	Items    []Expense
	Total    decimal.Decimal
}
