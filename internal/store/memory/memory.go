// Package memory implements every store contract in process. It backs the CLI
// by default and serves as the reference implementation in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"fjacquet/expense-categorizer/internal/apperror"
	"fjacquet/expense-categorizer/internal/models"
	"fjacquet/expense-categorizer/internal/textutils"
)

// BackendName identifies this backend in configuration and logs.
const BackendName = "memory"

type memoryKey struct {
	userID   string
	category string
}

type memoryValue struct {
	usage int64
	terms models.TermSet
}

// Store is a goroutine-safe in-memory Backend.
type Store struct {
	mu       sync.RWMutex
	rules    map[string]string
	memory   map[memoryKey]*memoryValue
	expenses map[string]models.Expense
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		rules:    make(map[string]string),
		memory:   make(map[memoryKey]*memoryValue),
		expenses: make(map[string]models.Expense),
	}
}

// Name returns the backend name.
func (s *Store) Name() string { return BackendName }

// Close is a no-op.
func (s *Store) Close() error { return nil }

// GetRule looks up the exact normalized term.
func (s *Store) GetRule(_ context.Context, term string) (string, bool, error) {
	term = textutils.NormalizeTerm(term)
	if term == "" {
		return "", false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	category, ok := s.rules[term]
	return category, ok, nil
}

// PutRule upserts term -> category.
func (s *Store) PutRule(_ context.Context, term, category string) error {
	term = textutils.NormalizeTerm(term)
	if term == "" {
		return &apperror.ValidationError{Field: "term", Reason: "is empty after normalization"}
	}
	s.mu.Lock()
	s.rules[term] = category
	s.mu.Unlock()
	return nil
}

// QueryByUser returns the user's entries ordered by usage count descending,
// then category.
func (s *Store) QueryByUser(_ context.Context, userID string) ([]models.MemoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.MemoryEntry
	for k, v := range s.memory {
		if k.userID != userID {
			continue
		}
		out = append(out, models.MemoryEntry{
			UserID:     k.userID,
			Category:   k.category,
			UsageCount: v.usage,
			Terms:      v.terms.Clone(),
		})
	}
	models.SortMemoryEntries(out)
	return out, nil
}

// Record increments usage for (userID, category) and adds term.
func (s *Store) Record(_ context.Context, userID, category, term string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := memoryKey{userID: userID, category: category}
	v, ok := s.memory[k]
	if !ok {
		v = &memoryValue{}
		s.memory[k] = v
	}
	v.usage++
	v.terms.Add(term)
	return nil
}

// PutExpense stores expense, replacing any record with the same ID.
func (s *Store) PutExpense(_ context.Context, expense models.Expense) error {
	s.mu.Lock()
	s.expenses[expense.ID] = expense
	s.mu.Unlock()
	return nil
}

// GetExpense returns the expense with the given ID.
func (s *Store) GetExpense(_ context.Context, id string) (models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[id]
	if !ok {
		return models.Expense{}, &apperror.NotFoundError{Kind: "expense", ID: id}
	}
	return e, nil
}

// UpdateExpense applies the non-nil fields of update.
func (s *Store) UpdateExpense(_ context.Context, id string, update models.ExpenseUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return &apperror.NotFoundError{Kind: "expense", ID: id}
	}
	if update.Amount != nil {
		e.Amount = *update.Amount
	}
	if update.Category != nil {
		e.Category = *update.Category
	}
	if update.RawText != nil {
		e.RawText = *update.RawText
	}
	s.expenses[id] = e
	return nil
}

// DeleteExpense removes the expense with the given ID.
func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return &apperror.NotFoundError{Kind: "expense", ID: id}
	}
	delete(s.expenses, id)
	return nil
}

// QueryExpenses returns matching expenses ordered by date, then creation time.
func (s *Store) QueryExpenses(_ context.Context, query models.ExpenseQuery) ([]models.Expense, error) {
	s.mu.RLock()
	out := make([]models.Expense, 0)
	for _, e := range s.expenses {
		if query.Matches(e) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
