package logging

// Standardized field names for structured logging.
// Keep these stable: dashboards and log queries filter on them.
const (
	FieldUserID     = "user_id"
	FieldExpenseID  = "expense_id"
	FieldCategory   = "category"
	FieldTerm       = "term"
	FieldStrategy   = "strategy"
	FieldKeyword    = "keyword"
	FieldConfidence = "confidence"
	FieldOutcome    = "outcome"
	FieldBackend    = "backend"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldMethod     = "method"
	FieldPath       = "path"
)
