package models

import "time"

// Confirmation is emitted when a user saves an expense with a final category.
// It drives the learning stores, either in process or through the message
// broker.
type Confirmation struct {
	ExpenseID string    `json:"expenseId"`
	UserID    string    `json:"userId"`
	Category  string    `json:"category"`
	RawText   string    `json:"rawText"`
	Timestamp time.Time `json:"timestamp"`
}
