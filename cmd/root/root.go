// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"

	"fjacquet/expense-categorizer/internal/config"
	"fjacquet/expense-categorizer/internal/container"
	"fjacquet/expense-categorizer/internal/logging"

	"github.com/spf13/cobra"
)

// DefaultUserID is used by commands run without --user.
const DefaultUserID = "cli"

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	ConfigFile string
	LogLevel   string
	Backend    string
	UserID     string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.GetLogger()

	// AppConfig is loaded before any subcommand runs.
	AppConfig *config.Config

	// AppContainer is created on first use by GetContainer.
	AppContainer *container.Container

	// SharedFlags holds the persistent flags.
	SharedFlags = CommonFlags{}

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "expense-categorizer",
		Short: "Categorize free-text expenses and keep a personal expense ledger.",
		Long: `expense-categorizer turns short notes like "spent 450 on groceries" into an
amount and a category. It tries static keyword rules, learned rules, the
user's own history and finally an AI classifier, and learns from every
expense the user confirms.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: loadConfig,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeContainer()
		},
	}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default searches config.yaml)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Override log.level")
	Cmd.PersistentFlags().StringVar(&SharedFlags.Backend, "store", "", "Override store.backend (memory, sqlite, postgres)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.UserID, "user", "u", DefaultUserID, "User the expenses belong to")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	config.LoadEnv(Log)

	cfg, err := config.LoadConfig(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}
	if SharedFlags.Backend != "" {
		cfg.Store.Backend = SharedFlags.Backend
	}

	AppConfig = cfg
	Log = cfg.NewLogger()
	logging.SetDefault(Log)
	return nil
}

// GetConfig returns the loaded configuration, or nil before any command ran.
func GetConfig() *config.Config {
	return AppConfig
}

// GetContainer returns the application container, creating it on first use.
func GetContainer(ctx context.Context) (*container.Container, error) {
	if AppContainer != nil {
		return AppContainer, nil
	}
	if AppConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	c, err := container.NewContainerWithLogger(ctx, AppConfig, Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	AppContainer = c
	return c, nil
}

func closeContainer() {
	if AppContainer == nil {
		return
	}
	if err := AppContainer.Close(); err != nil {
		Log.WithError(err).Warn("Failed to close application resources")
	}
	AppContainer = nil
}
