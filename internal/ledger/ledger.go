// Package ledger stores confirmed expenses and computes their summaries.
// Every successful save is forwarded to a ConfirmationSink so the categorizer
// can learn from it; that forwarding never fails the save.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/expense-categorizer/internal/apperror"
	"fjacquet/expense-categorizer/internal/dateutils"
	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/models"
	"fjacquet/expense-categorizer/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConfirmationSink receives confirmed categorizations.
type ConfirmationSink interface {
	Confirm(ctx context.Context, c models.Confirmation) error
}

// ConfirmationFunc adapts a function to ConfirmationSink.
type ConfirmationFunc func(ctx context.Context, c models.Confirmation) error

// Confirm calls f.
func (f ConfirmationFunc) Confirm(ctx context.Context, c models.Confirmation) error {
	return f(ctx, c)
}

// SaveRequest is a user-confirmed expense to persist.
type SaveRequest struct {
	UserID   string
	Amount   *decimal.Decimal
	Category string
	RawText  string
	// Date defaults to today (UTC) when empty.
	Date string
}

// Service implements the expense operations on an ExpenseStore.
type Service struct {
	expenses store.ExpenseStore
	sink     ConfirmationSink
	logger   logging.Logger
	now      func() time.Time
	newID    func() string
}

// NewService creates a Service. A nil sink disables learning from saves.
func NewService(expenses store.ExpenseStore, sink ConfirmationSink, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Service{
		expenses: expenses,
		sink:     sink,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func validateDate(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(models.DateLayout, value); err != nil {
		return &apperror.ValidationError{Field: field, Reason: "must be a YYYY-MM-DD date"}
	}
	return nil
}

func validateMonth(value string) error {
	if _, _, err := dateutils.MonthBounds(value); err != nil {
		return &apperror.ValidationError{Field: "month", Reason: "must be a YYYY-MM month"}
	}
	return nil
}

func validateAmount(amount *decimal.Decimal) error {
	if amount == nil {
		return apperror.Missing("amount")
	}
	if amount.IsNegative() {
		return &apperror.ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	return nil
}

// Save validates and persists req, then forwards the confirmation.
func (s *Service) Save(ctx context.Context, req SaveRequest) (models.Expense, error) {
	switch {
	case strings.TrimSpace(req.UserID) == "":
		return models.Expense{}, apperror.Missing("userId")
	case strings.TrimSpace(req.Category) == "":
		return models.Expense{}, apperror.Missing("category")
	case strings.TrimSpace(req.RawText) == "":
		return models.Expense{}, apperror.Missing("rawText")
	}
	if err := validateAmount(req.Amount); err != nil {
		return models.Expense{}, err
	}
	if err := validateDate("date", req.Date); err != nil {
		return models.Expense{}, err
	}

	now := s.now()
	expense := models.Expense{
		ID:        s.newID(),
		UserID:    req.UserID,
		Amount:    *req.Amount,
		Category:  strings.TrimSpace(req.Category),
		RawText:   req.RawText,
		Date:      req.Date,
		CreatedAt: now,
	}
	if expense.Date == "" {
		expense.Date = now.Format(models.DateLayout)
	}

	if err := s.expenses.PutExpense(ctx, expense); err != nil {
		return models.Expense{}, fmt.Errorf("failed to save expense: %w", err)
	}

	log := s.logger.WithFields(
		logging.Field{Key: logging.FieldExpenseID, Value: expense.ID},
		logging.Field{Key: logging.FieldUserID, Value: expense.UserID},
		logging.Field{Key: logging.FieldCategory, Value: expense.Category},
	)
	log.Info("Expense saved")

	if s.sink != nil {
		err := s.sink.Confirm(ctx, models.Confirmation{
			ExpenseID: expense.ID,
			UserID:    expense.UserID,
			Category:  expense.Category,
			RawText:   expense.RawText,
			Timestamp: now,
		})
		if err != nil {
			log.WithError(err).Warn("Failed to forward confirmation")
		}
	}
	return expense, nil
}

// List returns the user's expenses filtered by q.
func (s *Service) List(ctx context.Context, q models.ExpenseQuery) ([]models.Expense, error) {
	if strings.TrimSpace(q.UserID) == "" {
		return nil, apperror.Missing("userId")
	}
	if err := validateDate("start", q.Start); err != nil {
		return nil, err
	}
	if err := validateDate("end", q.End); err != nil {
		return nil, err
	}
	if q.Month != "" {
		if err := validateMonth(q.Month); err != nil {
			return nil, err
		}
	}
	items, err := s.expenses.QueryExpenses(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return items, nil
}

// Edit applies a partial update to the expense id.
func (s *Service) Edit(ctx context.Context, id string, update models.ExpenseUpdate) error {
	if strings.TrimSpace(id) == "" {
		return apperror.Missing("expenseId")
	}
	if update.IsEmpty() {
		return &apperror.ValidationError{Field: "updates", Reason: "no valid updates"}
	}
	if update.Amount != nil {
		if err := validateAmount(update.Amount); err != nil {
			return err
		}
	}
	if update.Category != nil && strings.TrimSpace(*update.Category) == "" {
		return &apperror.ValidationError{Field: "category", Reason: "must not be empty"}
	}

	if err := s.expenses.UpdateExpense(ctx, id, update); err != nil {
		return fmt.Errorf("failed to edit expense: %w", err)
	}
	s.logger.WithField(logging.FieldExpenseID, id).Info("Expense updated")
	return nil
}

// Delete removes the expense id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.Missing("expenseId")
	}
	if err := s.expenses.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	s.logger.WithField(logging.FieldExpenseID, id).Info("Expense deleted")
	return nil
}
