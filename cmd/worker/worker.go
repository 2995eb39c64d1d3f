// Package worker consumes expense confirmations from the message queue and
// records them in the categorizer's learning stores
package worker

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/expense-categorizer/cmd/root"
	"fjacquet/expense-categorizer/internal/amqp"
	"fjacquet/expense-categorizer/internal/container"
	"fjacquet/expense-categorizer/internal/logging"

	"github.com/spf13/cobra"
)

// MaxDialAttempts bounds broker connection attempts. Zero retries forever.
var MaxDialAttempts int

// Cmd represents the worker command
var Cmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume confirmations from RabbitMQ and learn from them",
	Long: `Consume expense confirmations published by the API and record each one
in the global rules and the user's memory. Requires amqp.enabled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		return Run(cmd.Context(), c)
	},
}

func init() {
	Cmd.Flags().IntVar(&MaxDialAttempts, "dial-attempts", 0, "Broker connection attempts (0 retries forever)")
}

type consumer interface {
	Consume(ctx context.Context, handler amqp.Handler) error
	Close() error
}

// Run consumes until ctx is done.
func Run(ctx context.Context, c *container.Container) error {
	if !c.GetConfig().AMQP.Enabled {
		return fmt.Errorf("worker requires amqp.enabled")
	}
	client, err := c.DialConsumer(ctx, MaxDialAttempts)
	if err != nil {
		return err
	}
	return consume(ctx, client, c.GetRecorder().Confirm, c.GetLogger())
}

func consume(ctx context.Context, cons consumer, handler amqp.Handler, logger logging.Logger) error {
	defer func() {
		if err := cons.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close consumer")
		}
	}()

	logger.Info("Confirmation worker started")
	err := cons.Consume(ctx, handler)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Info("Confirmation worker stopped")
		return nil
	}
	return err
}
