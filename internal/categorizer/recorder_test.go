package categorizer

import (
	"context"
	"testing"

	"fjacquet/expense-categorizer/internal/apperror"
	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/metrics"
	"fjacquet/expense-categorizer/internal/models"
	"fjacquet/expense-categorizer/internal/store/memory"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Record(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	m := metrics.New()
	r := NewRecorder(st, st, "", logging.NewMockLogger()).WithMetrics(m)

	require.NoError(t, r.Record(ctx, "u1", "Shopping", "Paid 999 on Myntra today"))

	entries, err := st.QueryByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].UsageCount)
	assert.True(t, entries[0].Terms.Contains("myntra"))

	category, found, err := st.GetRule(ctx, "myntra")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Shopping", category)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Confirmations.WithLabelValues("recorded")))
}

func TestRecorder_SkipsPlaceholderAndEmpty(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	r := NewRecorder(st, st, models.CategoryUncategorized, logging.NewMockLogger())

	require.NoError(t, r.Record(ctx, "u1", models.CategoryUncategorized, "paid 300 to ramesh"))
	require.NoError(t, r.Record(ctx, "u1", "  ", "paid 300 to ramesh"))

	entries, err := st.QueryByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, found, _ := st.GetRule(ctx, "ramesh")
	assert.False(t, found)
}

func TestRecorder_EmptyTermOnlyCountsUsage(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	r := NewRecorder(st, st, "", logging.NewMockLogger())

	require.NoError(t, r.Record(ctx, "u1", "Food", "450"))

	entries, err := st.QueryByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].UsageCount)
	assert.Equal(t, 0, entries[0].Terms.Len())
}

func TestRecorder_RequiresUser(t *testing.T) {
	r := NewRecorder(memory.New(), memory.New(), "", logging.NewMockLogger())
	err := r.Record(context.Background(), "", "Food", "chai")
	assert.True(t, apperror.IsValidation(err))
}

func TestRecorder_FailuresAreIndependent(t *testing.T) {
	ctx := context.Background()
	rules := memory.New()
	logger := logging.NewMockLogger()
	r := NewRecorder(rules, failingStore{}, "", logger)

	err := r.Record(ctx, "u1", "Shopping", "paid 800 at fabindia")
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnavailable)

	category, found, _ := rules.GetRule(ctx, "fabindia")
	assert.True(t, found, "rule is written even when the memory update failed")
	assert.Equal(t, "Shopping", category)
	assert.True(t, logger.HasEntry("WARN", "Failed to record confirmation"))
}

func TestRecorder_RuleFailureIsNotReturned(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	logger := logging.NewMockLogger()
	r := NewRecorder(failingStore{}, mem, "", logger)

	require.NoError(t, r.Record(ctx, "u1", "Shopping", "paid 800 at fabindia"))

	entries, err := mem.QueryByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].UsageCount)
	assert.True(t, logger.HasEntry("WARN", "Failed to store learned rule"))
	assert.False(t, logger.HasEntry("WARN", "Failed to record confirmation"))
}

func TestRecorder_Confirm(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	r := NewRecorder(st, st, "", logging.NewMockLogger())

	require.NoError(t, r.Confirm(ctx, models.Confirmation{UserID: "u1", Category: "Travel", RawText: "auto to airport"}))

	category, found, err := st.GetRule(ctx, "airport")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Travel", category)
}
