// Package serve runs the HTTP API
package serve

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fjacquet/expense-categorizer/cmd/root"
	"fjacquet/expense-categorizer/cmd/worker"
	"fjacquet/expense-categorizer/internal/container"
	"fjacquet/expense-categorizer/internal/httpapi"
	"fjacquet/expense-categorizer/internal/logging"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var (
	port       int
	withWorker bool
)

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the expense API. With --worker and amqp.enabled the confirmation
consumer runs in the same process.

Example:
  expense-categorizer serve --port 9090 --worker`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer(cmd.Context())
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			c.GetConfig().Server.Port = port
		}
		return run(cmd.Context(), c, withWorker)
	},
}

func init() {
	Cmd.Flags().IntVarP(&port, "port", "p", 8080, "Listen port (overrides server.port)")
	Cmd.Flags().BoolVar(&withWorker, "worker", false, "Also consume confirmations from RabbitMQ")
}

func newServer(c *container.Container) *httpapi.Server {
	cfg := c.GetConfig()
	return httpapi.NewServer(httpapi.Options{
		Addr:         cfg.ServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		Resolver:     c.GetCategorizer(),
		Ledger:       c.GetLedger(),
		Metrics:      c.GetMetrics(),
		Logger:       c.GetLogger(),
	})
}

func run(ctx context.Context, c *container.Container, withWorker bool) error {
	g, gctx := errgroup.WithContext(ctx)
	srv := newServer(c)
	logger := c.GetLogger()

	g.Go(func() error { return listen(gctx, srv, logger) })
	if withWorker {
		if !c.GetConfig().AMQP.Enabled {
			logger.Warn("--worker ignored: amqp.enabled is false")
		} else {
			g.Go(func() error { return worker.Run(gctx, c) })
		}
	}
	return g.Wait()
}

// listen serves until ctx is done, then shuts down gracefully.
func listen(ctx context.Context, srv *httpapi.Server, logger logging.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
