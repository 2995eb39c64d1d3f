// Package models provides the data structures shared by the categorizer,
// the stores and the expense ledger.
package models

// Allowed categories. AI output is always normalized onto this set; rules and
// learned mappings may still produce free-form categories.
const (
	CategoryFood          = "Food"
	CategoryTravel        = "Travel"
	CategoryEntertainment = "Entertainment"
	CategoryShopping      = "Shopping"
	CategoryUtilities     = "Utilities"
	CategoryHealthcare    = "Healthcare"
	CategoryOther         = "Other"
)

// CategoryUncategorized is the placeholder returned when no stage of the
// cascade produced a category. It is deliberately outside the allowed set.
const CategoryUncategorized = "Uncategorized"

var allowedCategories = []string{
	CategoryFood,
	CategoryTravel,
	CategoryEntertainment,
	CategoryShopping,
	CategoryUtilities,
	CategoryHealthcare,
	CategoryOther,
}

// AllowedCategories returns a fresh copy of the allowed category set in its
// canonical order.
func AllowedCategories() []string {
	out := make([]string, len(allowedCategories))
	copy(out, allowedCategories)
	return out
}

// IsAllowedCategory reports whether name is a member of the allowed set.
func IsAllowedCategory(name string) bool {
	for _, c := range allowedCategories {
		if c == name {
			return true
		}
	}
	return false
}
