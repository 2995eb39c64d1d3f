package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day layout used for expense dates and filters.
const DateLayout = "2006-01-02"

// MonthLayout is the layout of the month key used by monthly summaries.
const MonthLayout = "2006-01"

// Expense is a confirmed, persisted expense record.
type Expense struct {
	ID        string          `json:"expenseId" csv:"expense_id"`
	UserID    string          `json:"userId" csv:"user_id"`
	Amount    decimal.Decimal `json:"amount" csv:"amount"`
	Category  string          `json:"category" csv:"category"`
	RawText   string          `json:"rawText" csv:"raw_text"`
	Date      string          `json:"date" csv:"date"`
	CreatedAt time.Time       `json:"createdAt" csv:"created_at"`
}

// ExpenseUpdate carries a partial update. Nil fields are left untouched.
type ExpenseUpdate struct {
	Amount   *decimal.Decimal
	Category *string
	RawText  *string
}

// IsEmpty reports whether the update would change nothing.
func (u ExpenseUpdate) IsEmpty() bool {
	return u.Amount == nil && u.Category == nil && u.RawText == nil
}

// ExpenseQuery filters expenses of a single user. Start and End are inclusive
// calendar days; Month is a YYYY-MM prefix. Empty fields do not filter.
type ExpenseQuery struct {
	UserID   string
	Start    string
	End      string
	Month    string
	Category string
}

// Matches applies the non-user filters of q to e. Backends that cannot push a
// filter down to their query language use it to filter in process.
func (q ExpenseQuery) Matches(e Expense) bool {
	if q.UserID != "" && e.UserID != q.UserID {
		return false
	}
	if q.Category != "" && e.Category != q.Category {
		return false
	}
	if q.Month != "" && (len(e.Date) < len(q.Month) || e.Date[:len(q.Month)] != q.Month) {
		return false
	}
	// YYYY-MM-DD sorts lexically in date order.
	if q.Start != "" && e.Date < q.Start {
		return false
	}
	if q.End != "" && e.Date > q.End {
		return false
	}
	return true
}
