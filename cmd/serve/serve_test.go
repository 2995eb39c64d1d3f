package serve

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/expense-categorizer/internal/config"
	"fjacquet/expense-categorizer/internal/container"
	"fjacquet/expense-categorizer/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) (*container.Container, *logging.MockLogger) {
	t.Helper()
	cfg, err := config.Defaults()
	require.NoError(t, err)
	cfg.AI.Enabled = false
	cfg.Categorization.RulesFile = filepath.Join(t.TempDir(), "none.yaml")
	cfg.Server.Port = 0
	logger := logging.NewMockLogger()
	c, err := container.NewContainerWithLogger(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, logger
}

func TestServeCommand_Flags(t *testing.T) {
	assert.Equal(t, "serve", Cmd.Use)
	assert.Equal(t, "8080", Cmd.Flags().Lookup("port").DefValue)
	assert.Equal(t, "false", Cmd.Flags().Lookup("worker").DefValue)
}

func TestNewServer_Routes(t *testing.T) {
	c, _ := newTestContainer(t)
	srv := newServer(c)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/add", strings.NewReader(`{"userId":"u1","rawText":"250 on coffee"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category":"Food"`)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	c, logger := newTestContainer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- run(ctx, c, true) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.True(t, logger.HasEntry("WARN", "--worker ignored: amqp.enabled is false"))
}

func TestRun_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	c, _ := newTestContainer(t)
	c.GetConfig().Server.Port = ln.Addr().(*net.TCPAddr).Port

	err = run(context.Background(), c, false)
	assert.Error(t, err)
}
