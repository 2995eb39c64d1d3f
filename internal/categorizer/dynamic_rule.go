package categorizer

import (
	"context"

	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/store"
)

// DynamicRuleStrategy looks up the extracted term in the learned rule store.
type DynamicRuleStrategy struct {
	store  store.RuleStore
	logger logging.Logger
}

// NewDynamicRuleStrategy creates a DynamicRuleStrategy backed by rules.
func NewDynamicRuleStrategy(rules store.RuleStore, logger logging.Logger) *DynamicRuleStrategy {
	return &DynamicRuleStrategy{store: rules, logger: logger}
}

// Name returns the name of this strategy for logging and debugging.
func (s *DynamicRuleStrategy) Name() string {
	return SourceDynamicRule
}

// Categorize performs an exact lookup of the term. Inputs without a term never
// match.
func (s *DynamicRuleStrategy) Categorize(ctx context.Context, in Input) (Match, bool, error) {
	if in.Term == "" || s.store == nil {
		return Match{}, false, nil
	}

	category, found, err := s.store.GetRule(ctx, in.Term)
	if err != nil {
		return Match{}, false, err
	}
	if !found || category == "" {
		return Match{}, false, nil
	}

	s.logger.WithFields(
		logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
		logging.Field{Key: logging.FieldTerm, Value: in.Term},
		logging.Field{Key: logging.FieldCategory, Value: category},
	).Debug("Expense categorized using learned rule")

	return Match{Category: category, Keyword: in.Term}, true, nil
}
