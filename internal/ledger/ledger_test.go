package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"fjacquet/expense-categorizer/internal/apperror"
	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/models"
	"fjacquet/expense-categorizer/internal/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	got []models.Confirmation
	err error
}

func (c *captureSink) Confirm(_ context.Context, conf models.Confirmation) error {
	c.got = append(c.got, conf)
	return c.err
}

var fixedNow = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

func newTestService(sink ConfirmationSink) (*Service, *memory.Store, *logging.MockLogger) {
	st := memory.New()
	logger := logging.NewMockLogger()
	svc := NewService(st, sink, logger)
	svc.now = func() time.Time { return fixedNow }
	n := 0
	svc.newID = func() string {
		n++
		return "exp-" + string(rune('0'+n))
	}
	return svc, st, logger
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestSave(t *testing.T) {
	sink := &captureSink{}
	svc, st, _ := newTestService(sink)
	ctx := context.Background()

	e, err := svc.Save(ctx, SaveRequest{UserID: "u1", Amount: amount("450"), Category: "Food", RawText: "450 on groceries"})
	require.NoError(t, err)

	assert.Equal(t, "exp-1", e.ID)
	assert.Equal(t, "2024-06-15", e.Date, "date defaults to today")
	assert.Equal(t, fixedNow, e.CreatedAt)

	stored, err := st.GetExpense(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, stored)

	require.Len(t, sink.got, 1)
	assert.Equal(t, models.Confirmation{
		ExpenseID: "exp-1",
		UserID:    "u1",
		Category:  "Food",
		RawText:   "450 on groceries",
		Timestamp: fixedNow,
	}, sink.got[0])
}

func TestSave_KeepsExplicitDate(t *testing.T) {
	svc, _, _ := newTestService(nil)
	e, err := svc.Save(context.Background(), SaveRequest{UserID: "u1", Amount: amount("10"), Category: "Food", RawText: "10 chai", Date: "2024-01-02"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", e.Date)
}

func TestSave_SinkFailureDoesNotFailSave(t *testing.T) {
	sink := &captureSink{err: errors.New("broker down")}
	svc, st, logger := newTestService(sink)

	e, err := svc.Save(context.Background(), SaveRequest{UserID: "u1", Amount: amount("99"), Category: "Travel", RawText: "99 cab"})
	require.NoError(t, err)

	_, err = st.GetExpense(context.Background(), e.ID)
	assert.NoError(t, err)
	assert.True(t, logger.HasEntry("WARN", "Failed to forward confirmation"))
}

func TestSave_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   SaveRequest
		field string
	}{
		{name: "missing user", req: SaveRequest{Amount: amount("1"), Category: "Food"}, field: "userId"},
		{name: "missing category", req: SaveRequest{UserID: "u1", Amount: amount("1")}, field: "category"},
		{name: "missing raw text", req: SaveRequest{UserID: "u1", Amount: amount("1"), Category: "Food", RawText: "  "}, field: "rawText"},
		{name: "missing amount", req: SaveRequest{UserID: "u1", Category: "Food", RawText: "chai"}, field: "amount"},
		{name: "negative amount", req: SaveRequest{UserID: "u1", Amount: amount("-5"), Category: "Food", RawText: "chai"}, field: "amount"},
		{name: "bad date", req: SaveRequest{UserID: "u1", Amount: amount("1"), Category: "Food", RawText: "chai", Date: "15/06/2024"}, field: "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &captureSink{}
			svc, _, _ := newTestService(sink)
			_, err := svc.Save(context.Background(), tt.req)

			var ve *apperror.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Empty(t, sink.got, "no side effects on validation failure")
		})
	}
}

func TestListEditDelete(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()

	a, err := svc.Save(ctx, SaveRequest{UserID: "u1", Amount: amount("100"), Category: "Food", RawText: "100 lunch", Date: "2024-06-01"})
	require.NoError(t, err)
	_, err = svc.Save(ctx, SaveRequest{UserID: "u1", Amount: amount("200"), Category: "Travel", RawText: "200 train", Date: "2024-06-20"})
	require.NoError(t, err)

	items, err := svc.List(ctx, models.ExpenseQuery{UserID: "u1", Start: "2024-06-01", End: "2024-06-10"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, a.ID, items[0].ID)

	_, err = svc.List(ctx, models.ExpenseQuery{})
	assert.True(t, apperror.IsValidation(err))
	_, err = svc.List(ctx, models.ExpenseQuery{UserID: "u1", Start: "June"})
	assert.True(t, apperror.IsValidation(err))
	_, err = svc.List(ctx, models.ExpenseQuery{UserID: "u1", Month: "2024-6"})
	assert.True(t, apperror.IsValidation(err))

	category := "Groceries"
	require.NoError(t, svc.Edit(ctx, a.ID, models.ExpenseUpdate{Category: &category, Amount: amount("120")}))
	items, err = svc.List(ctx, models.ExpenseQuery{UserID: "u1", Category: "Groceries"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "120", items[0].Amount.String())

	assert.True(t, apperror.IsValidation(svc.Edit(ctx, a.ID, models.ExpenseUpdate{})))
	assert.True(t, apperror.IsValidation(svc.Edit(ctx, "", models.ExpenseUpdate{Category: &category})))
	assert.True(t, apperror.IsValidation(svc.Edit(ctx, a.ID, models.ExpenseUpdate{Amount: amount("-1")})))
	assert.True(t, apperror.IsNotFound(svc.Edit(ctx, "nope", models.ExpenseUpdate{Category: &category})))

	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.True(t, apperror.IsNotFound(svc.Delete(ctx, a.ID)))
	assert.True(t, apperror.IsValidation(svc.Delete(ctx, "")))
}

func TestSummaries(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()

	for _, r := range []SaveRequest{
		{UserID: "u1", Amount: amount("100.50"), Category: "Food", RawText: "expense", Date: "2024-06-01"},
		{UserID: "u1", Amount: amount("49.50"), Category: "Food", RawText: "expense", Date: "2024-06-02"},
		{UserID: "u1", Amount: amount("300"), Category: "Travel", RawText: "expense", Date: "2024-06-03"},
		{UserID: "u1", Amount: amount("999"), Category: "Food", RawText: "expense", Date: "2024-05-31"},
		{UserID: "u2", Amount: amount("1"), Category: "Food", RawText: "expense", Date: "2024-06-01"},
	} {
		_, err := svc.Save(ctx, r)
		require.NoError(t, err)
	}

	monthly, err := svc.MonthlySummary(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-06", monthly.Month, "defaults to the current month")
	require.Len(t, monthly.Totals, 2)
	assert.Equal(t, "150", monthly.Totals["Food"].String())
	assert.Equal(t, "300", monthly.Totals["Travel"].String())

	may, err := svc.MonthlySummary(ctx, "u1", "2024-05")
	require.NoError(t, err)
	assert.Equal(t, "999", may.Totals["Food"].String())

	_, err = svc.MonthlySummary(ctx, "u1", "June")
	assert.True(t, apperror.IsValidation(err))

	food, err := svc.CategorySummary(ctx, "u1", "Food")
	require.NoError(t, err)
	assert.Len(t, food.Items, 3)
	assert.Equal(t, "1149", food.Total.String())

	_, err = svc.CategorySummary(ctx, "u1", "")
	assert.True(t, apperror.IsValidation(err))
}
