package categorizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/metrics"

	"golang.org/x/time/rate"
)

// AIOutcome classifies what happened during one AI call.
type AIOutcome int

const (
	// AIDisabled means no classifier is configured.
	AIDisabled AIOutcome = iota
	// AIAnswered means the classifier returned a category.
	AIAnswered
	// AIEmpty means the classifier answered without a category.
	AIEmpty
	// AIFailed covers transport errors, timeouts, rate limiting and
	// malformed responses.
	AIFailed
)

func (o AIOutcome) String() string {
	switch o {
	case AIDisabled:
		return "disabled"
	case AIAnswered:
		return "answered"
	case AIEmpty:
		return "empty"
	case AIFailed:
		return "failed"
	default:
		return fmt.Sprintf("AIOutcome(%d)", int(o))
	}
}

// AIResult is the explicit result of one AI call. Category and Confidence
// are set only when Outcome is AIAnswered; Category is already mapped onto
// the allowed set.
type AIResult struct {
	Outcome    AIOutcome
	Category   string
	Confidence float64
	Err        error
}

// AIStrategyConfig tunes AIStrategy.
type AIStrategyConfig struct {
	Timeout             time.Duration
	RequestsPerMinute   int
	ConfidenceThreshold float64
	DefaultConfidence   float64
}

// DefaultAIStrategyConfig returns the standard settings.
func DefaultAIStrategyConfig() AIStrategyConfig {
	return AIStrategyConfig{
		Timeout:             5 * time.Second,
		ConfidenceThreshold: 0.8,
		DefaultConfidence:   0.7,
	}
}

// AIStrategy implements categorization using AI services.
// It uses the AIClient interface to interact with external AI services and
// never returns an error: every failure degrades to "no answer".
type AIStrategy struct {
	client  AIClient
	rules   *RuleSet
	cfg     AIStrategyConfig
	limiter *rate.Limiter
	logger  logging.Logger
	metrics *metrics.Metrics
}

// NewAIStrategy creates a new AIStrategy instance. A nil client yields a
// strategy that always reports AIDisabled.
func NewAIStrategy(client AIClient, rules *RuleSet, cfg AIStrategyConfig, logger logging.Logger) *AIStrategy {
	def := DefaultAIStrategyConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = def.ConfidenceThreshold
	}
	if cfg.DefaultConfidence <= 0 {
		cfg.DefaultConfidence = def.DefaultConfidence
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute)
	}

	return &AIStrategy{
		client:  client,
		rules:   rules,
		cfg:     cfg,
		limiter: limiter,
		logger:  logger,
	}
}

// WithMetrics attaches m and returns s.
func (s *AIStrategy) WithMetrics(m *metrics.Metrics) *AIStrategy {
	s.metrics = m
	return s
}

// Name returns the name of this strategy for logging and debugging.
func (s *AIStrategy) Name() string {
	return SourceAI
}

// Enabled reports whether a classifier is configured.
func (s *AIStrategy) Enabled() bool {
	return s != nil && s.client != nil
}

type classifyReply struct {
	resp AIResponse
	err  error
}

// Classify performs one bounded call to the classifier and normalizes its
// answer.
func (s *AIStrategy) Classify(ctx context.Context, text string) AIResult {
	if !s.Enabled() {
		s.metrics.ObserveAICall(AIDisabled.String(), 0)
		return AIResult{Outcome: AIDisabled}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		s.metrics.ObserveAICall(AIFailed.String(), 0)
		return AIResult{Outcome: AIFailed, Err: fmt.Errorf("rate limited: %w", err)}
	}

	start := time.Now()
	replies := make(chan classifyReply, 1)
	go func() {
		resp, err := s.client.Classify(ctx, text)
		replies <- classifyReply{resp: resp, err: err}
	}()

	var reply classifyReply
	select {
	case reply = <-replies:
	case <-ctx.Done():
		reply.err = ctx.Err()
	}
	elapsed := time.Since(start)

	result := s.interpret(reply)
	s.metrics.ObserveAICall(result.Outcome.String(), elapsed)
	return result
}

func (s *AIStrategy) interpret(reply classifyReply) AIResult {
	if reply.err != nil {
		if errors.Is(reply.err, context.DeadlineExceeded) {
			return AIResult{Outcome: AIFailed, Err: fmt.Errorf("classifier timed out after %s: %w", s.cfg.Timeout, reply.err)}
		}
		return AIResult{Outcome: AIFailed, Err: reply.err}
	}
	category, ok := s.rules.NormalizeAICategory(reply.resp.Category)
	if !ok {
		return AIResult{Outcome: AIEmpty}
	}
	return AIResult{
		Outcome:    AIAnswered,
		Category:   category,
		Confidence: s.normalizeConfidence(reply.resp.Confidence),
	}
}

// normalizeConfidence defaults absent or NaN values and clamps to [0,1].
func (s *AIStrategy) normalizeConfidence(c *float64) float64 {
	if c == nil || math.IsNaN(*c) {
		return s.cfg.DefaultConfidence
	}
	return math.Min(1, math.Max(0, *c))
}

// Categorize attempts to categorize the input using the AI classifier.
// Answers below the confidence threshold come back as tentative matches.
func (s *AIStrategy) Categorize(ctx context.Context, in Input) (Match, bool, error) {
	result := s.Classify(ctx, in.RawText)

	log := s.logger.WithFields(
		logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
		logging.Field{Key: logging.FieldOutcome, Value: result.Outcome.String()},
	)

	switch result.Outcome {
	case AIAnswered:
		confidence := result.Confidence
		tentative := confidence < s.cfg.ConfidenceThreshold
		log.WithFields(
			logging.Field{Key: logging.FieldCategory, Value: result.Category},
			logging.Field{Key: logging.FieldConfidence, Value: confidence},
		).Debug("Expense categorized using AI")
		return Match{Category: result.Category, Confidence: &confidence, Tentative: tentative}, true, nil
	case AIFailed:
		log.WithError(result.Err).Warn("AI categorization failed")
	case AIEmpty:
		log.Debug("AI returned no category")
	case AIDisabled:
		log.Debug("AI client not available, skipping AI categorization")
	}
	return Match{}, false, nil
}
