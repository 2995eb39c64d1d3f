package categorizer

import (
	"context"

	"fjacquet/expense-categorizer/internal/logging"
)

// StaticRuleStrategy matches the raw text against the keyword table of a
// RuleSet.
type StaticRuleStrategy struct {
	rules  *RuleSet
	logger logging.Logger
}

// NewStaticRuleStrategy creates a StaticRuleStrategy over rules.
func NewStaticRuleStrategy(rules *RuleSet, logger logging.Logger) *StaticRuleStrategy {
	return &StaticRuleStrategy{rules: rules, logger: logger}
}

// Name returns the name of this strategy for logging and debugging.
func (s *StaticRuleStrategy) Name() string {
	return SourceStaticRule
}

// Categorize returns the category of the first keyword contained in the raw
// text. A hit asks the resolver to cache the extracted term.
func (s *StaticRuleStrategy) Categorize(_ context.Context, in Input) (Match, bool, error) {
	rule, ok := s.rules.MatchKeyword(in.RawText)
	if !ok {
		return Match{}, false, nil
	}

	s.logger.WithFields(
		logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
		logging.Field{Key: logging.FieldKeyword, Value: rule.Keyword},
		logging.Field{Key: logging.FieldCategory, Value: rule.Category},
	).Debug("Expense categorized using static keyword rule")

	return Match{Category: rule.Category, Learn: true, Keyword: rule.Keyword}, true, nil
}
