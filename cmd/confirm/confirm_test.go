package confirm

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"fjacquet/expense-categorizer/internal/categorizer"
	"fjacquet/expense-categorizer/internal/config"
	"fjacquet/expense-categorizer/internal/container"
	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/models"

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

func TestConfirmCommand_Flags(t *testing.T) {
	assert.Equal(t, "confirm <text>", Cmd.Use)
	for name, short := range map[string]string{"amount": "a", "category": "c", "date": "t"} {
		f := Cmd.Flags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, short, f.Shorthand)
	}
}

func TestRun_SavesAndTeaches(t *testing.T) {
	c := newTestContainer(t)
	ctx := context.Background()
	var out bytes.Buffer

	err := run(ctx, c.GetLedger(), &out, "u1", "1200 at kavya boutique", Flags{Category: "Shopping", Date: "2024-06-01"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "1200.00 Shopping on 2024-06-01")

	items, err := c.GetLedger().List(ctx, models.ExpenseQuery{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1200", items[0].Amount.String())

	res, err := c.GetCategorizer().Resolve(ctx, categorizer.Request{UserID: "u2", RawText: "300 at kavya boutique"})
	require.NoError(t, err)
	assert.Equal(t, "Shopping", res.Category)
}

func TestRun_ExplicitAmount(t *testing.T) {
	c := newTestContainer(t)
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), c.GetLedger(), &out, "u1", "cab home", Flags{Amount: "99.5", Category: "Travel"}))
	assert.Contains(t, out.String(), "99.50 Travel")
}

func TestRun_Errors(t *testing.T) {
	c := newTestContainer(t)
	var out bytes.Buffer

	err := run(context.Background(), c.GetLedger(), &out, "u1", "cab home", Flags{Category: "Travel"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount")

	err = run(context.Background(), c.GetLedger(), &out, "u1", "cab home", Flags{Amount: "ten", Category: "Travel"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a number")
}
