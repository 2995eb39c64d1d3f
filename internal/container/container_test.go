package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/expense-categorizer/internal/categorizer"
	"fjacquet/expense-categorizer/internal/config"
	"fjacquet/expense-categorizer/internal/ledger"
	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.AI.Enabled = false
	cfg.AI.Provider = config.ProviderHTTP
	cfg.AI.Endpoint = "http://127.0.0.1:1/classify"
	cfg.AI.TimeoutSeconds = 1
	cfg.Categorization.ConfidenceThreshold = 0.8
	cfg.Categorization.DefaultConfidence = 0.7
	cfg.Categorization.PlaceholderCategory = models.CategoryUncategorized
	cfg.Categorization.RulesFile = filepath.Join(t.TempDir(), "absent-rules.yaml")
	cfg.Categorization.AutoLearn = true
	cfg.Store.Backend = config.BackendMemory
	cfg.Server.Port = 8080
	return cfg
}

func newTestContainer(t *testing.T, cfg *config.Config) (*Container, *logging.MockLogger) {
	t.Helper()
	logger := logging.NewMockLogger()
	c, err := NewContainerWithLogger(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, logger
}

func TestNewContainer_NilConfig(t *testing.T) {
	_, err := NewContainer(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration cannot be nil")
}

func TestNewContainer_Defaults(t *testing.T) {
	c, logger := newTestContainer(t, testConfig(t))

	assert.NotNil(t, c.GetLogger())
	assert.NotNil(t, c.GetConfig())
	assert.NotNil(t, c.GetMetrics())
	assert.NotNil(t, c.GetCategoryStore())
	assert.NotNil(t, c.GetRecorder())
	assert.NotNil(t, c.GetLedger())
	assert.Nil(t, c.GetAIClient())
	assert.Equal(t, "memory", c.GetBackend().Name())
	assert.Equal(t, categorizer.DefaultRuleSetVersion, c.GetRuleSet().Version())
	assert.Equal(t, []string{
		categorizer.SourceStaticRule, categorizer.SourceDynamicRule, categorizer.SourceUserMemory,
	}, c.GetCategorizer().StrategyNames())
	assert.True(t, logger.HasEntry("INFO", "AI categorization disabled"))
	assert.True(t, logger.HasEntry("INFO", "Container initialized successfully"))
}

func TestNewContainer_AIWithoutKeyIsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.AI.Enabled = true

	c, logger := newTestContainer(t, cfg)
	assert.Nil(t, c.GetAIClient())
	assert.Len(t, c.GetCategorizer().StrategyNames(), 3)
	assert.True(t, logger.HasEntry("WARN", "AI enabled but no API key configured"))
}

func TestNewContainer_HTTPProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.AI.Enabled = true
	cfg.AI.APIKey = "test-key"

	c, _ := newTestContainer(t, cfg)
	require.NotNil(t, c.GetAIClient())
	assert.IsType(t, &categorizer.HTTPClassifier{}, c.GetAIClient())
	assert.Equal(t, categorizer.SourceAI, c.GetCategorizer().StrategyNames()[3])

	// The endpoint is unreachable: the cascade degrades to the placeholder.
	res, err := c.GetCategorizer().Resolve(context.Background(), categorizer.Request{UserID: "u1", RawText: "450 at zxqv"})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryUncategorized, res.Category)
}

func TestNewContainer_SQLiteBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = config.BackendSQLite
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "db", "expenses.db")

	c, _ := newTestContainer(t, cfg)
	assert.Equal(t, "sqlite", c.GetBackend().Name())
	_, err := os.Stat(cfg.Store.SQLitePath)
	assert.NoError(t, err)
}

func TestNewContainer_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = "mongo"

	_, err := NewContainerWithLogger(context.Background(), cfg, logging.NewMockLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}

func TestNewContainer_RulesFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Categorization.RulesFile = filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(cfg.Categorization.RulesFile, []byte(`
version: "office-2"
keywords:
  - keyword: "stationery"
    category: "Shopping"
`), 0600))

	c, _ := newTestContainer(t, cfg)
	assert.Equal(t, "office-2", c.GetRuleSet().Version())

	res, err := c.GetCategorizer().Resolve(context.Background(), categorizer.Request{UserID: "u1", RawText: "90 for stationery"})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryShopping, res.Category)
}

func TestNewContainer_InvalidRulesFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Categorization.RulesFile = filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(cfg.Categorization.RulesFile, []byte(`
ai_synonyms:
  - keyword: "stationery"
    category: "Office"
`), 0600))

	_, err := NewContainerWithLogger(context.Background(), cfg, logging.NewMockLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rules file")
}

func TestNewContainer_FreeFormKeywordCategory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Categorization.RulesFile = filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(cfg.Categorization.RulesFile, []byte(`
version: "office-3"
keywords:
  - keyword: "stapler"
    category: "Office"
`), 0600))

	c, _ := newTestContainer(t, cfg)
	res, err := c.GetCategorizer().Resolve(context.Background(), categorizer.Request{UserID: "u1", RawText: "120 for a stapler"})
	require.NoError(t, err)
	assert.Equal(t, "Office", res.Category)
}

func TestNewContainer_PlaceholderMustNotBeAllowed(t *testing.T) {
	cfg := testConfig(t)
	cfg.Categorization.PlaceholderCategory = models.CategoryOther

	_, err := NewContainerWithLogger(context.Background(), cfg, logging.NewMockLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create categorizer")
}

func saveAndResolve(t *testing.T, c *Container) models.ClassificationResult {
	t.Helper()
	ctx := context.Background()
	amount := decimal.NewFromInt(300)
	_, err := c.GetLedger().Save(ctx, ledger.SaveRequest{
		UserID: "u1", Amount: &amount, Category: models.CategoryEntertainment, RawText: "300 at zxqv arcade",
	})
	require.NoError(t, err)

	res, err := c.GetCategorizer().Resolve(ctx, categorizer.Request{UserID: "u1", RawText: "120 at zxqv arcade"})
	require.NoError(t, err)
	return res
}

func TestNewContainer_SavesTeachTheCascade(t *testing.T) {
	c, _ := newTestContainer(t, testConfig(t))
	assert.Equal(t, models.CategoryEntertainment, saveAndResolve(t, c).Category)
}

func TestNewContainer_AutoLearnOff(t *testing.T) {
	cfg := testConfig(t)
	cfg.Categorization.AutoLearn = false

	c, logger := newTestContainer(t, cfg)
	assert.Equal(t, models.CategoryUncategorized, saveAndResolve(t, c).Category)
	assert.True(t, logger.HasEntry("INFO", "Learning from saved expenses disabled"))
}

func TestClose_Idempotent(t *testing.T) {
	c, err := NewContainerWithLogger(context.Background(), testConfig(t), logging.NewMockLogger())
	require.NoError(t, err)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
