// Package categorizer resolves free-text expenses to spending categories.
// Resolution cascades through strategies of increasing cost:
// 1. Static keyword rules (substring match on the raw text)
// 2. Learned global rules (exact match on the extracted term)
// 3. The user's confirmed terms (substring match on the raw text)
// 4. An AI classifier as a fallback
// Confirmed saves feed stages 2 and 3 through the Recorder.
package categorizer

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/expense-categorizer/internal/apperror"
	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/metrics"
	"fjacquet/expense-categorizer/internal/models"
	"fjacquet/expense-categorizer/internal/store"
	"fjacquet/expense-categorizer/internal/textutils"

	"github.com/shopspring/decimal"
)

// Request is one classification request.
type Request struct {
	UserID  string
	RawText string
}

// Options configures a Categorizer. Nil stores disable their stage.
type Options struct {
	Rules       *RuleSet
	RuleStore   store.RuleStore
	MemoryStore store.MemoryStore
	AI          *AIStrategy
	// Strategies replaces the default cascade when non-empty.
	Strategies  []CategorizationStrategy
	Placeholder string
	Logger      logging.Logger
	Metrics     *metrics.Metrics
}

// Categorizer runs the cascade. It holds only immutable configuration and is
// safe for concurrent use.
type Categorizer struct {
	rules       *RuleSet
	ruleStore   store.RuleStore
	strategies  []CategorizationStrategy
	placeholder string
	logger      logging.Logger
	metrics     *metrics.Metrics
}

// NewCategorizer builds the default cascade: static rules, learned rules,
// user memory, then AI when opts.AI is set.
func NewCategorizer(opts Options) (*Categorizer, error) {
	if opts.Logger == nil {
		opts.Logger = logging.GetLogger()
	}
	if opts.Rules == nil {
		opts.Rules = DefaultRuleSet()
	}
	if opts.Placeholder == "" {
		opts.Placeholder = models.CategoryUncategorized
	}
	if opts.Rules.IsAllowed(opts.Placeholder) {
		return nil, fmt.Errorf("placeholder category %q must not be an allowed category", opts.Placeholder)
	}

	strategies := opts.Strategies
	if len(strategies) == 0 {
		strategies = []CategorizationStrategy{
			NewStaticRuleStrategy(opts.Rules, opts.Logger),
			NewDynamicRuleStrategy(opts.RuleStore, opts.Logger),
			NewUserMemoryStrategy(opts.MemoryStore, opts.Logger),
		}
		if opts.AI != nil {
			strategies = append(strategies, opts.AI)
		}
	}

	return &Categorizer{
		rules:       opts.Rules,
		ruleStore:   opts.RuleStore,
		strategies:  append([]CategorizationStrategy(nil), strategies...),
		placeholder: opts.Placeholder,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
	}, nil
}

// RuleSet returns the static configuration in use.
func (c *Categorizer) RuleSet() *RuleSet { return c.rules }

// Placeholder returns the category used when nothing matched.
func (c *Categorizer) Placeholder() string { return c.placeholder }

// StrategyNames lists the cascade in order.
func (c *Categorizer) StrategyNames() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve classifies req. The only error it returns is a validation error;
// failures of any stage degrade to the next one and, at worst, to the
// placeholder category.
func (c *Categorizer) Resolve(ctx context.Context, req Request) (models.ClassificationResult, error) {
	result, _, err := c.Explain(ctx, req)
	return result, err
}

// Explain is Resolve plus the per-strategy trace.
func (c *Categorizer) Explain(ctx context.Context, req Request) (models.ClassificationResult, StrategyResults, error) {
	var trace StrategyResults
	if strings.TrimSpace(req.UserID) == "" {
		return models.ClassificationResult{}, trace, apperror.Missing("userId")
	}
	if strings.TrimSpace(req.RawText) == "" {
		return models.ClassificationResult{}, trace, apperror.Missing("rawText")
	}

	in := Input{
		UserID:  req.UserID,
		RawText: req.RawText,
		Term:    textutils.ExtractTerm(req.RawText),
	}
	var amount *decimal.Decimal
	if a, ok := textutils.ExtractAmount(req.RawText); ok {
		amount = &a
	}

	log := c.logger.WithFields(
		logging.Field{Key: logging.FieldUserID, Value: in.UserID},
		logging.Field{Key: logging.FieldTerm, Value: in.Term},
	)

	for _, strategy := range c.strategies {
		match, found, err := strategy.Categorize(ctx, in)
		trace.Add(StrategyResult{Strategy: strategy.Name(), Match: match, Found: found, Error: err})
		if err != nil {
			c.metrics.ObserveStrategyError(strategy.Name())
			log.WithError(&apperror.CategorizationError{Strategy: strategy.Name(), Err: err}).
				Warn("Categorization strategy failed, continuing with next strategy")
			continue
		}
		if !found || match.Category == "" {
			continue
		}

		if match.Learn {
			c.learn(ctx, in.Term, match.Category, log)
		}

		result := c.buildResult(amount, in.Term, strategy.Name(), match)
		c.metrics.ObserveResolution(result.Source, result.NeedsConfirmation())
		log.WithFields(
			logging.Field{Key: logging.FieldStrategy, Value: result.Source},
			logging.Field{Key: logging.FieldCategory, Value: result.Category},
		).Debug("Expense categorized: " + trace.Summary())
		return result, trace, nil
	}

	result := c.buildResult(amount, in.Term, SourcePlaceholder, Match{Category: c.placeholder})
	c.metrics.ObserveResolution(result.Source, false)
	log.Debug("No strategy matched, using placeholder: " + trace.Summary())
	return result, trace, nil
}

// learn caches term -> category after a static rule hit. Failures are logged.
func (c *Categorizer) learn(ctx context.Context, term, category string, log logging.Logger) {
	if term == "" || c.ruleStore == nil {
		return
	}
	if err := c.ruleStore.PutRule(ctx, term, category); err != nil {
		log.WithError(err).Warn("Failed to cache static rule match")
	}
}

func (c *Categorizer) buildResult(amount *decimal.Decimal, term, source string, m Match) models.ClassificationResult {
	result := models.ClassificationResult{
		Amount:     amount,
		Category:   m.Category,
		Confidence: m.Confidence,
		Source:     source,
		Term:       term,
	}
	if m.Tentative {
		result.Options = c.rules.Allowed()
	}
	result.Message = buildMessage(amount, m.Category, m.Tentative, m.Confidence)
	return result
}

func buildMessage(amount *decimal.Decimal, category string, tentative bool, confidence *float64) string {
	var b strings.Builder
	if amount != nil {
		fmt.Fprintf(&b, "Parsed amount %s and category %s", amount.String(), category)
	} else {
		fmt.Fprintf(&b, "Could not parse amount; suggested category %s", category)
	}
	if tentative && confidence != nil {
		fmt.Fprintf(&b, "; low confidence (%.2f), please choose a category", *confidence)
	}
	return b.String()
}
