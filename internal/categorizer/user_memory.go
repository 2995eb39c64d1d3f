package categorizer

import (
	"context"
	"strings"

	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/models"
	"fjacquet/expense-categorizer/internal/store"
)

// UserMemoryStrategy matches the raw text against terms the user confirmed
// earlier.
type UserMemoryStrategy struct {
	store  store.MemoryStore
	logger logging.Logger
}

// NewUserMemoryStrategy creates a UserMemoryStrategy backed by memory.
func NewUserMemoryStrategy(memory store.MemoryStore, logger logging.Logger) *UserMemoryStrategy {
	return &UserMemoryStrategy{store: memory, logger: logger}
}

// Name returns the name of this strategy for logging and debugging.
func (s *UserMemoryStrategy) Name() string {
	return SourceUserMemory
}

// Categorize enumerates the user's entries by usage count descending, then
// category, then term, and returns the first entry with a term contained in
// the raw text.
func (s *UserMemoryStrategy) Categorize(ctx context.Context, in Input) (Match, bool, error) {
	if s.store == nil || in.UserID == "" {
		return Match{}, false, nil
	}

	entries, err := s.store.QueryByUser(ctx, in.UserID)
	if err != nil {
		return Match{}, false, err
	}
	models.SortMemoryEntries(entries)

	lower := strings.ToLower(in.RawText)
	for _, entry := range entries {
		for _, term := range entry.Terms.Sorted() {
			if !strings.Contains(lower, term) {
				continue
			}
			s.logger.WithFields(
				logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
				logging.Field{Key: logging.FieldUserID, Value: in.UserID},
				logging.Field{Key: logging.FieldTerm, Value: term},
				logging.Field{Key: logging.FieldCategory, Value: entry.Category},
			).Debug("Expense categorized using user memory")
			return Match{Category: entry.Category, Keyword: term}, true, nil
		}
	}
	return Match{}, false, nil
}
