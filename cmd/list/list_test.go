package list

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/expense-categorizer/internal/config"
	"fjacquet/expense-categorizer/internal/container"
	"fjacquet/expense-categorizer/internal/ledger"
	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) *container.Container {
	t.Helper()
	cfg, err := config.Defaults()
	require.NoError(t, err)
	cfg.AI.Enabled = false
	cfg.Categorization.RulesFile = filepath.Join(t.TempDir(), "none.yaml")
	c, err := container.NewContainerWithLogger(context.Background(), cfg, logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func save(t *testing.T, svc *ledger.Service, amount, category, text, date string) {
	t.Helper()
	d := decimal.RequireFromString(amount)
	_, err := svc.Save(context.Background(), ledger.SaveRequest{UserID: "u1", Amount: &d, Category: category, RawText: text, Date: date})
	require.NoError(t, err)
}

func TestListCommand_Flags(t *testing.T) {
	assert.Equal(t, "list", Cmd.Use)
	for _, name := range []string{"start", "end", "month", "category"} {
		assert.NotNil(t, Cmd.Flags().Lookup(name), name)
	}
}

func TestFilters_Query(t *testing.T) {
	f := Filters{Start: "2024-01-01", Month: "2024-01", Category: "Food"}
	assert.Equal(t, models.ExpenseQuery{UserID: "u1", Start: "2024-01-01", Month: "2024-01", Category: "Food"}, f.Query("u1"))
}

func TestRun(t *testing.T) {
	c := newTestContainer(t)
	save(t, c.GetLedger(), "250", "Food", "250 lunch", "2024-06-02")
	save(t, c.GetLedger(), "80", "Travel", "80 bus", "2024-07-01")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), c.GetLedger(), &out, Filters{Month: "2024-06"}.Query("u1")))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Date")
	assert.Contains(t, lines[2], "2024-06-02")
	assert.Contains(t, lines[2], "250.00")
	assert.Contains(t, lines[2], "250 lunch")
}

func TestRun_Empty(t *testing.T) {
	c := newTestContainer(t)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), c.GetLedger(), &out, models.ExpenseQuery{UserID: "nobody"}))
	assert.Equal(t, "No expenses found.\n", out.String())
}

func TestRun_InvalidDate(t *testing.T) {
	c := newTestContainer(t)
	var out bytes.Buffer
	err := run(context.Background(), c.GetLedger(), &out, models.ExpenseQuery{UserID: "u1", Start: "06/01/2024"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start")
}
