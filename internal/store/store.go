// Package store defines the persistence contracts used by the categorizer and
// the expense ledger, and loads rule sets from YAML files.
package store

import (
	"context"
	"io"

	"fjacquet/expense-categorizer/internal/models"
)

// RuleStore holds the global term to category mappings learned from rule
// matches and confirmed saves.
type RuleStore interface {
	// GetRule looks up the exact normalized term.
	GetRule(ctx context.Context, term string) (category string, found bool, err error)
	// PutRule upserts term -> category. Last write wins.
	PutRule(ctx context.Context, term, category string) error
}

// MemoryStore holds per-user confirmed categories, their usage counts and the
// terms that were confirmed for them.
type MemoryStore interface {
	QueryByUser(ctx context.Context, userID string) ([]models.MemoryEntry, error)
	// Record increments the usage count of (userID, category) by exactly one
	// and adds term to its term set when term is not empty. The increment is
	// atomic with respect to concurrent callers.
	Record(ctx context.Context, userID, category, term string) error
}

// ExpenseStore persists confirmed expenses.
type ExpenseStore interface {
	PutExpense(ctx context.Context, expense models.Expense) error
	GetExpense(ctx context.Context, id string) (models.Expense, error)
	UpdateExpense(ctx context.Context, id string, update models.ExpenseUpdate) error
	DeleteExpense(ctx context.Context, id string) error
	QueryExpenses(ctx context.Context, query models.ExpenseQuery) ([]models.Expense, error)
}

// Backend bundles every store implemented by one persistence technology.
type Backend interface {
	RuleStore
	MemoryStore
	ExpenseStore
	io.Closer
	Name() string
}
