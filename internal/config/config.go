// Package config provides Viper-based hierarchical configuration management
// and .env loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fjacquet/expense-categorizer/internal/logging"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	AI struct {
		Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
		Provider          string `mapstructure:"provider" yaml:"provider"`
		Endpoint          string `mapstructure:"endpoint" yaml:"endpoint"`
		Model             string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
		APIKey            string `mapstructure:"api_key" yaml:"-"` // Never serialize API keys
		GeminiAPIKey      string `mapstructure:"gemini_api_key" yaml:"-"`
	} `mapstructure:"ai" yaml:"ai"`

	Categorization struct {
		ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
		DefaultConfidence   float64 `mapstructure:"default_confidence" yaml:"default_confidence"`
		PlaceholderCategory string  `mapstructure:"placeholder_category" yaml:"placeholder_category"`
		RulesFile           string  `mapstructure:"rules_file" yaml:"rules_file"`
		AutoLearn           bool    `mapstructure:"auto_learn" yaml:"auto_learn"`
	} `mapstructure:"categorization" yaml:"categorization"`

	Store struct {
		Backend     string `mapstructure:"backend" yaml:"backend"`
		SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
		PostgresDSN string `mapstructure:"postgres_dsn" yaml:"-"`
	} `mapstructure:"store" yaml:"store"`

	Server struct {
		Port                int `mapstructure:"port" yaml:"port"`
		ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds" yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds" yaml:"write_timeout_seconds"`
	} `mapstructure:"server" yaml:"server"`

	AMQP struct {
		Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
		URL      string `mapstructure:"url" yaml:"-"`
		Exchange string `mapstructure:"exchange" yaml:"exchange"`
		Queue    string `mapstructure:"queue" yaml:"queue"`
	} `mapstructure:"amqp" yaml:"amqp"`
}

// AITimeout returns the bound on a single AI call.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// ServerAddr returns the HTTP listen address.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// ActiveAIKey returns the key of the configured AI provider.
func (c *Config) ActiveAIKey() string {
	if c.AI.Provider == ProviderGemini {
		return c.AI.GeminiAPIKey
	}
	return c.AI.APIKey
}

// NewLogger builds the application logger from the log section.
func (c *Config) NewLogger() logging.Logger {
	return logging.NewLogrusAdapter(c.Log.Level, c.Log.Format)
}

var envOnce sync.Once

// LoadEnv loads environment variables from a .env file in the current or
// parent directory, if one exists. Variables already set are kept.
func LoadEnv(logger logging.Logger) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	envOnce.Do(func() {
		envFile := ".env"
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			envFile = filepath.Join("..", ".env")
			if _, err := os.Stat(envFile); os.IsNotExist(err) {
				logger.Debug("No .env file found, using environment variables")
				return
			}
		}

		if err := godotenv.Load(envFile); err != nil {
			logger.WithError(err).Warn("Error loading .env file")
			return
		}
		logger.WithField("file", envFile).Debug("Loaded environment variables")
	})
}
