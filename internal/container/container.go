// Package container provides dependency injection for the expense
// categorizer. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"errors"
	"fmt"
	"io"

	"fjacquet/expense-categorizer/internal/amqp"
	"fjacquet/expense-categorizer/internal/categorizer"
	"fjacquet/expense-categorizer/internal/config"
	"fjacquet/expense-categorizer/internal/ledger"
	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/metrics"
	"fjacquet/expense-categorizer/internal/store"
	"fjacquet/expense-categorizer/internal/store/memory"
	"fjacquet/expense-categorizer/internal/store/postgres"
	"fjacquet/expense-categorizer/internal/store/sqlite"
)

// Container holds all application dependencies and provides methods to
// access them. It is immutable after creation.
type Container struct {
	logger        logging.Logger
	config        *config.Config
	metrics       *metrics.Metrics
	backend       store.Backend
	categoryStore *store.CategoryStore
	rules         *categorizer.RuleSet
	aiClient      categorizer.AIClient
	categorizer   *categorizer.Categorizer
	recorder      *categorizer.Recorder
	ledger        *ledger.Service
	publisher     *amqp.Client

	closers []io.Closer
}

// NewContainer creates and wires all application dependencies. The logger is
// built from cfg.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(ctx, cfg, cfg.NewLogger())
}

// NewContainerWithLogger is NewContainer with an explicit logger.
func NewContainerWithLogger(ctx context.Context, cfg *config.Config, logger logging.Logger) (_ *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = logging.GetLogger()
	}

	c := &Container{
		logger:  logger,
		config:  cfg,
		metrics: metrics.New(),
	}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	if c.backend, err = openBackend(ctx, cfg, logger); err != nil {
		return nil, err
	}
	c.closers = append(c.closers, c.backend)

	c.categoryStore = store.NewCategoryStore(cfg.Categorization.RulesFile, logger)
	if c.rules, err = loadRuleSet(c.categoryStore); err != nil {
		return nil, err
	}

	var ai *categorizer.AIStrategy
	if c.aiClient, err = newAIClient(ctx, cfg, c.rules, logger); err != nil {
		return nil, err
	}
	if c.aiClient != nil {
		ai = categorizer.NewAIStrategy(c.aiClient, c.rules, categorizer.AIStrategyConfig{
			Timeout:             cfg.AITimeout(),
			RequestsPerMinute:   cfg.AI.RequestsPerMinute,
			ConfidenceThreshold: cfg.Categorization.ConfidenceThreshold,
			DefaultConfidence:   cfg.Categorization.DefaultConfidence,
		}, logger).WithMetrics(c.metrics)
		logger.WithField("provider", cfg.AI.Provider).Info("AI categorization enabled")
	} else {
		logger.Info("AI categorization disabled")
	}

	c.categorizer, err = categorizer.NewCategorizer(categorizer.Options{
		Rules:       c.rules,
		RuleStore:   c.backend,
		MemoryStore: c.backend,
		AI:          ai,
		Placeholder: cfg.Categorization.PlaceholderCategory,
		Logger:      logger,
		Metrics:     c.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create categorizer: %w", err)
	}

	c.recorder = categorizer.NewRecorder(c.backend, c.backend, c.categorizer.Placeholder(), logger).WithMetrics(c.metrics)

	var sink ledger.ConfirmationSink
	switch {
	case !cfg.Categorization.AutoLearn:
		logger.Info("Learning from saved expenses disabled")
	case cfg.AMQP.Enabled:
		c.publisher, err = amqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect confirmation publisher: %w", err)
		}
		c.closers = append(c.closers, c.publisher)
		sink = c.publisher
	default:
		sink = c.recorder
	}
	c.ledger = ledger.NewService(c.backend, sink, logger)

	logger.Info("Container initialized successfully",
		logging.Field{Key: logging.FieldBackend, Value: c.backend.Name()},
		logging.Field{Key: "rules_version", Value: c.rules.Version()},
		logging.Field{Key: "strategies", Value: c.categorizer.StrategyNames()},
		logging.Field{Key: "ai_enabled", Value: ai != nil},
		logging.Field{Key: "amqp_enabled", Value: c.publisher != nil})

	return c, nil
}

func openBackend(ctx context.Context, cfg *config.Config, logger logging.Logger) (store.Backend, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory, "":
		return memory.New(), nil
	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.Store.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, nil
	case config.BackendPostgres:
		s, err := postgres.Open(ctx, cfg.Store.PostgresDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}

func loadRuleSet(cs *store.CategoryStore) (*categorizer.RuleSet, error) {
	rulesCfg, found, err := cs.LoadRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	if !found {
		return categorizer.DefaultRuleSet(), nil
	}
	rules, err := categorizer.RuleSetFromConfig(rulesCfg)
	if err != nil {
		return nil, fmt.Errorf("invalid rules file: %w", err)
	}
	return rules, nil
}

// newAIClient returns nil when AI is disabled or the provider has no key.
func newAIClient(ctx context.Context, cfg *config.Config, rules *categorizer.RuleSet, logger logging.Logger) (categorizer.AIClient, error) {
	if !cfg.AI.Enabled {
		return nil, nil
	}
	key := cfg.ActiveAIKey()
	if key == "" {
		logger.WithField("provider", cfg.AI.Provider).Warn("AI enabled but no API key configured")
		return nil, nil
	}

	switch cfg.AI.Provider {
	case config.ProviderGemini:
		client, err := categorizer.NewGeminiClient(ctx, key, cfg.AI.Model, rules.Allowed(), logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		client, err := categorizer.NewHTTPClassifier(cfg.AI.Endpoint, key, cfg.AITimeout())
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// DialConsumer opens a separate AMQP connection for consuming confirmations.
// maxAttempts <= 0 retries until ctx is done.
func (c *Container) DialConsumer(ctx context.Context, maxAttempts int) (*amqp.Client, error) {
	return amqp.DialWithRetry(ctx, c.config.AMQP.URL, c.config.AMQP.Exchange, c.config.AMQP.Queue, maxAttempts, c.logger)
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetMetrics returns the metrics registry shared by all components.
func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}

// GetBackend returns the persistence backend.
func (c *Container) GetBackend() store.Backend {
	return c.backend
}

// GetCategoryStore returns the rule file store.
func (c *Container) GetCategoryStore() *store.CategoryStore {
	return c.categoryStore
}

// GetRuleSet returns the static rule set in use.
func (c *Container) GetRuleSet() *categorizer.RuleSet {
	return c.rules
}

// GetAIClient returns the AI client, or nil if AI is not enabled.
func (c *Container) GetAIClient() categorizer.AIClient {
	return c.aiClient
}

// GetCategorizer returns the container's categorizer instance.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetRecorder returns the confirmation recorder.
func (c *Container) GetRecorder() *categorizer.Recorder {
	return c.recorder
}

// GetLedger returns the expense service.
func (c *Container) GetLedger() *ledger.Service {
	return c.ledger
}

// Close releases the backend, the AMQP publisher and the AI client.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	if closer, ok := c.aiClient.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
		c.aiClient = nil
	}
	c.logger.Debug("Container closed")
	return errors.Join(errs...)
}
