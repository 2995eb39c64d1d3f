// Package storetest holds the behavioural tests every store.Backend must
// pass. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"fjacquet/expense-categorizer/internal/apperror"
	"fjacquet/expense-categorizer/internal/models"
	"fjacquet/expense-categorizer/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty backend. Run closes it.
type Factory func(t *testing.T) store.Backend

// Run executes the conformance suite against backends built by newBackend.
func Run(t *testing.T, newBackend Factory) {
	t.Run("rules", func(t *testing.T) { testRules(t, open(t, newBackend)) })
	t.Run("memory", func(t *testing.T) { testMemory(t, open(t, newBackend)) })
	t.Run("memory_concurrent", func(t *testing.T) { testMemoryConcurrent(t, open(t, newBackend)) })
	t.Run("expenses", func(t *testing.T) { testExpenses(t, open(t, newBackend)) })
	t.Run("expense_queries", func(t *testing.T) { testExpenseQueries(t, open(t, newBackend)) })
}

func open(t *testing.T, newBackend Factory) store.Backend {
	t.Helper()
	b := newBackend(t)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func testRules(t *testing.T, b store.Backend) {
	ctx := context.Background()

	_, found, err := b.GetRule(ctx, "myntra")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, b.PutRule(ctx, "  Myntra ", "Shopping"))
	category, found, err := b.GetRule(ctx, "myntra")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Shopping", category)

	require.NoError(t, b.PutRule(ctx, "myntra", "Clothes"))
	category, _, err = b.GetRule(ctx, "MYNTRA")
	require.NoError(t, err)
	assert.Equal(t, "Clothes", category, "last write wins")

	_, found, err = b.GetRule(ctx, "myntr")
	require.NoError(t, err)
	assert.False(t, found, "lookup is exact, not substring")
}

func testMemory(t *testing.T, b store.Backend) {
	ctx := context.Background()

	entries, err := b.QueryByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, b.Record(ctx, "u1", "Shopping", "myntra"))
	require.NoError(t, b.Record(ctx, "u1", "Shopping", "Myntra "))
	require.NoError(t, b.Record(ctx, "u1", "Shopping", ""))
	require.NoError(t, b.Record(ctx, "u1", "Food", "chai point"))
	require.NoError(t, b.Record(ctx, "u2", "Travel", "metro"))

	entries, err = b.QueryByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Shopping", entries[0].Category)
	assert.Equal(t, int64(3), entries[0].UsageCount)
	assert.Equal(t, []string{"myntra"}, entries[0].Terms.Sorted())
	assert.Equal(t, "u1", entries[0].UserID)

	assert.Equal(t, "Food", entries[1].Category)
	assert.Equal(t, int64(1), entries[1].UsageCount)
	assert.True(t, entries[1].Terms.Contains("chai point"))

	other, err := b.QueryByUser(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "Travel", other[0].Category)
}

func testMemoryConcurrent(t *testing.T, b store.Backend) {
	ctx := context.Background()
	const n = 40

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- b.Record(ctx, "u1", "Food", fmt.Sprintf("term %c", 'a'+rune(i%26)))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	entries, err := b.QueryByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(n), entries[0].UsageCount)
	assert.Equal(t, 26, entries[0].Terms.Len())
}

func expense(id, user, date, category string, amount int64) models.Expense {
	return models.Expense{
		ID:        id,
		UserID:    user,
		Amount:    decimal.NewFromInt(amount),
		Category:  category,
		RawText:   "spent on " + category,
		Date:      date,
		CreatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testExpenses(t *testing.T, b store.Backend) {
	ctx := context.Background()

	e := expense("e1", "u1", "2024-06-01", "Food", 450)
	e.Amount = decimal.RequireFromString("450.50")
	require.NoError(t, b.PutExpense(ctx, e))

	got, err := b.GetExpense(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, got.Amount.Equal(e.Amount), "amount %s", got.Amount)
	assert.Equal(t, "2024-06-01", got.Date)
	assert.True(t, got.CreatedAt.Equal(e.CreatedAt))

	category := "Travel"
	require.NoError(t, b.UpdateExpense(ctx, "e1", models.ExpenseUpdate{Category: &category}))
	got, err = b.GetExpense(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Travel", got.Category)
	assert.True(t, got.Amount.Equal(e.Amount), "untouched fields keep their value")

	amount := decimal.NewFromInt(99)
	raw := "taxi 99"
	require.NoError(t, b.UpdateExpense(ctx, "e1", models.ExpenseUpdate{Amount: &amount, RawText: &raw}))
	got, err = b.GetExpense(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(amount))
	assert.Equal(t, raw, got.RawText)

	err = b.UpdateExpense(ctx, "missing", models.ExpenseUpdate{Category: &category})
	assert.True(t, apperror.IsNotFound(err), "got %v", err)

	require.NoError(t, b.DeleteExpense(ctx, "e1"))
	_, err = b.GetExpense(ctx, "e1")
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
	assert.True(t, apperror.IsNotFound(b.DeleteExpense(ctx, "e1")))
}

func testExpenseQueries(t *testing.T, b store.Backend) {
	ctx := context.Background()
	for _, e := range []models.Expense{
		expense("a", "u1", "2024-05-31", "Food", 10),
		expense("b", "u1", "2024-06-01", "Food", 20),
		expense("c", "u1", "2024-06-15", "Travel", 30),
		expense("d", "u1", "2024-07-01", "Food", 40),
		expense("e", "u2", "2024-06-10", "Food", 50),
	} {
		require.NoError(t, b.PutExpense(ctx, e))
	}

	ids := func(q models.ExpenseQuery) []string {
		t.Helper()
		items, err := b.QueryExpenses(ctx, q)
		require.NoError(t, err)
		out := make([]string, 0, len(items))
		for _, e := range items {
			out = append(out, e.ID)
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(models.ExpenseQuery{UserID: "u1"}))
	assert.Equal(t, []string{"b", "c"}, ids(models.ExpenseQuery{UserID: "u1", Start: "2024-06-01", End: "2024-06-30"}))
	assert.Equal(t, []string{"a", "b", "d"}, ids(models.ExpenseQuery{UserID: "u1", Category: "Food"}))
	assert.Equal(t, []string{"b", "c"}, ids(models.ExpenseQuery{UserID: "u1", Month: "2024-06"}))
	assert.Equal(t, []string{"e"}, ids(models.ExpenseQuery{UserID: "u2"}))
	assert.Empty(t, ids(models.ExpenseQuery{UserID: "nobody"}))
}
