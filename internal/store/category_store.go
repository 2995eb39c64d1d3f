package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/models"

	"gopkg.in/yaml.v3"
)

// DefaultRulesFile is the rule file name searched when none is configured.
const DefaultRulesFile = "rules.yaml"

// CategoryStore loads and saves rule sets stored as YAML.
type CategoryStore struct {
	RulesFile string
	logger    logging.Logger
}

// NewCategoryStore creates a store reading rulesFile. A nil logger falls back
// to the process default.
func NewCategoryStore(rulesFile string, logger logging.Logger) *CategoryStore {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &CategoryStore{
		RulesFile: rulesFile,
		logger:    logger,
	}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join(".expense-categorizer", filename),
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".expense-categorizer", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}

// LoadRules reads the rule file. found is false when no file exists, in
// which case the caller keeps its built-in rules.
func (s *CategoryStore) LoadRules() (cfg models.RulesConfig, found bool, err error) {
	filename := s.RulesFile
	if filename == "" {
		filename = DefaultRulesFile
	}

	filePath, err := s.FindConfigFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.WithField("file", filename).Debug("Rules file not found, using built-in rules")
			return models.RulesConfig{}, false, nil
		}
		return models.RulesConfig{}, false, fmt.Errorf("error resolving rules file: %w", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return models.RulesConfig{}, false, fmt.Errorf("error reading rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return models.RulesConfig{}, false, fmt.Errorf("error parsing rules file %s: %w", filePath, err)
	}

	s.logger.WithFields(
		logging.Field{Key: "file", Value: filePath},
		logging.Field{Key: "version", Value: cfg.Version},
		logging.Field{Key: logging.FieldCount, Value: len(cfg.Keywords)},
	).Info("Loaded rule set")
	return cfg, true, nil
}

// SaveRules writes cfg to the configured rule file, creating parent
// directories as needed.
func (s *CategoryStore) SaveRules(cfg models.RulesConfig) error {
	filename := s.RulesFile
	if filename == "" {
		filename = DefaultRulesFile
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("error marshaling rules: %w", err)
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("error creating rules directory: %w", err)
		}
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("error writing rules file: %w", err)
	}
	return nil
}
