package ledger

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/expense-categorizer/internal/apperror"
	"fjacquet/expense-categorizer/internal/models"

	"github.com/shopspring/decimal"
)

// MonthlySummary totals the user's expenses per category for month
// (YYYY-MM). An empty month means the current UTC month.
func (s *Service) MonthlySummary(ctx context.Context, userID, month string) (models.MonthlySummary, error) {
	if strings.TrimSpace(userID) == "" {
		return models.MonthlySummary{}, apperror.Missing("userId")
	}
	if month == "" {
		month = s.now().Format(models.MonthLayout)
	}
	if err := validateMonth(month); err != nil {
		return models.MonthlySummary{}, err
	}

	items, err := s.expenses.QueryExpenses(ctx, models.ExpenseQuery{UserID: userID, Month: month})
	if err != nil {
		return models.MonthlySummary{}, fmt.Errorf("failed to summarize month: %w", err)
	}

	totals := make(map[string]decimal.Decimal)
	for _, e := range items {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	return models.MonthlySummary{Month: month, Totals: totals}, nil
}

// CategorySummary returns all of the user's expenses in category and their
// total.
func (s *Service) CategorySummary(ctx context.Context, userID, category string) (models.CategorySummary, error) {
	if strings.TrimSpace(userID) == "" {
		return models.CategorySummary{}, apperror.Missing("userId")
	}
	if strings.TrimSpace(category) == "" {
		return models.CategorySummary{}, apperror.Missing("category")
	}

	items, err := s.expenses.QueryExpenses(ctx, models.ExpenseQuery{UserID: userID, Category: category})
	if err != nil {
		return models.CategorySummary{}, fmt.Errorf("failed to summarize category: %w", err)
	}

	total := decimal.Zero
	for _, e := range items {
		total = total.Add(e.Amount)
	}
	return models.CategorySummary{Category: category, Items: items, Total: total}, nil
}
