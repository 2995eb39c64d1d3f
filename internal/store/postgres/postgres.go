// Package postgres implements the store contracts on PostgreSQL through a
// pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fjacquet/expense-categorizer/internal/apperror"
	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/models"
	"fjacquet/expense-categorizer/internal/textutils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// BackendName identifies this backend in configuration and logs.
const BackendName = "postgres"

// Store is a store.Backend on PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// Open applies migrations and connects a pool to dsn.
func Open(ctx context.Context, dsn string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if err := RunMigrations(dsn); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.WithField(logging.FieldBackend, BackendName).Info("Opened store")
	return &Store{pool: pool, logger: logger}, nil
}

// Name returns the backend name.
func (s *Store) Name() string { return BackendName }

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func storeErr(op string, err error) error {
	return &apperror.StoreError{Store: BackendName, Op: op, Err: err}
}

// GetRule looks up the exact normalized term.
func (s *Store) GetRule(ctx context.Context, term string) (string, bool, error) {
	term = textutils.NormalizeTerm(term)
	if term == "" {
		return "", false, nil
	}
	var category string
	err := s.pool.QueryRow(ctx, `SELECT category FROM rules WHERE term = $1`, term).Scan(&category)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr("get_rule", err)
	}
	return category, true, nil
}

// PutRule upserts term -> category.
func (s *Store) PutRule(ctx context.Context, term, category string) error {
	term = textutils.NormalizeTerm(term)
	if term == "" {
		return &apperror.ValidationError{Field: "term", Reason: "is empty after normalization"}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rules (term, category, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (term) DO UPDATE SET category = EXCLUDED.category, updated_at = EXCLUDED.updated_at`,
		term, category)
	if err != nil {
		return storeErr("put_rule", err)
	}
	return nil
}

// QueryByUser returns the user's entries ordered by usage count descending,
// then category.
func (s *Store) QueryByUser(ctx context.Context, userID string) ([]models.MemoryEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.category, m.usage_count, t.term
		FROM user_memory m
		LEFT JOIN user_memory_terms t ON t.user_id = m.user_id AND t.category = m.category
		WHERE m.user_id = $1
		ORDER BY m.usage_count DESC, m.category, t.term`, userID)
	if err != nil {
		return nil, storeErr("query_memory", err)
	}
	defer rows.Close()

	var out []models.MemoryEntry
	for rows.Next() {
		var (
			category string
			usage    int64
			term     *string
		)
		if err := rows.Scan(&category, &usage, &term); err != nil {
			return nil, storeErr("query_memory", err)
		}
		if n := len(out); n == 0 || out[n-1].Category != category {
			out = append(out, models.MemoryEntry{UserID: userID, Category: category, UsageCount: usage})
		}
		if term != nil {
			out[len(out)-1].Terms.Add(*term)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("query_memory", err)
	}
	return out, nil
}

// Record increments usage for (userID, category) and adds term in one
// transaction.
func (s *Store) Record(ctx context.Context, userID, category, term string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storeErr("record", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO user_memory (user_id, category, usage_count) VALUES ($1, $2, 1)
		ON CONFLICT (user_id, category) DO UPDATE SET usage_count = user_memory.usage_count + 1`,
		userID, category); err != nil {
		return storeErr("record", err)
	}

	if term = textutils.NormalizeTerm(term); term != "" {
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_memory_terms (user_id, category, term) VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`,
			userID, category, term); err != nil {
			return storeErr("record", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("record", err)
	}
	return nil
}

// PutExpense stores expense, replacing any record with the same ID.
func (s *Store) PutExpense(ctx context.Context, e models.Expense) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO expenses (id, user_id, amount, category, raw_text, date, created_at)
		VALUES ($1, $2, $3::text::numeric, $4, $5, $6::text::date, $7)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id, amount = EXCLUDED.amount, category = EXCLUDED.category,
			raw_text = EXCLUDED.raw_text, date = EXCLUDED.date, created_at = EXCLUDED.created_at`,
		e.ID, e.UserID, e.Amount.String(), e.Category, e.RawText, e.Date, e.CreatedAt.UTC())
	if err != nil {
		return storeErr("put_expense", err)
	}
	return nil
}

const expenseColumns = `id, user_id, amount::text, category, raw_text, to_char(date, 'YYYY-MM-DD'), created_at`

func scanExpense(row pgx.Row) (models.Expense, error) {
	var (
		e      models.Expense
		amount string
	)
	if err := row.Scan(&e.ID, &e.UserID, &amount, &e.Category, &e.RawText, &e.Date, &e.CreatedAt); err != nil {
		return models.Expense{}, err
	}
	var err error
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return models.Expense{}, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

// GetExpense returns the expense with the given ID.
func (s *Store) GetExpense(ctx context.Context, id string) (models.Expense, error) {
	e, err := scanExpense(s.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Expense{}, &apperror.NotFoundError{Kind: "expense", ID: id}
	}
	if err != nil {
		return models.Expense{}, storeErr("get_expense", err)
	}
	return e, nil
}

// UpdateExpense applies the non-nil fields of update.
func (s *Store) UpdateExpense(ctx context.Context, id string, update models.ExpenseUpdate) error {
	var (
		sets []string
		args []any
	)
	next := func() string { return fmt.Sprintf("$%d", len(args)) }
	if update.Amount != nil {
		args = append(args, update.Amount.String())
		sets = append(sets, "amount = "+next()+"::text::numeric")
	}
	if update.Category != nil {
		args = append(args, *update.Category)
		sets = append(sets, "category = "+next())
	}
	if update.RawText != nil {
		args = append(args, *update.RawText)
		sets = append(sets, "raw_text = "+next())
	}
	if len(sets) == 0 {
		return &apperror.ValidationError{Field: "updates", Reason: "no valid updates"}
	}
	args = append(args, id)

	tag, err := s.pool.Exec(ctx, `UPDATE expenses SET `+strings.Join(sets, ", ")+` WHERE id = `+next(), args...)
	if err != nil {
		return storeErr("update_expense", err)
	}
	return requireAffected(tag, id)
}

// DeleteExpense removes the expense with the given ID.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete_expense", err)
	}
	return requireAffected(tag, id)
}

func requireAffected(tag pgconn.CommandTag, id string) error {
	if tag.RowsAffected() == 0 {
		return &apperror.NotFoundError{Kind: "expense", ID: id}
	}
	return nil
}

// QueryExpenses returns matching expenses ordered by date, then creation time.
func (s *Store) QueryExpenses(ctx context.Context, q models.ExpenseQuery) ([]models.Expense, error) {
	args := []any{q.UserID}
	where := []string{"user_id = $1"}
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if q.Start != "" {
		add("date >= $%d::text::date", q.Start)
	}
	if q.End != "" {
		add("date <= $%d::text::date", q.End)
	}
	if q.Month != "" {
		add("to_char(date, 'YYYY-MM') = $%d", q.Month)
	}
	if q.Category != "" {
		add("category = $%d", q.Category)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE `+strings.Join(where, " AND ")+
			` ORDER BY date, created_at, id`, args...)
	if err != nil {
		return nil, storeErr("query_expenses", err)
	}
	defer rows.Close()

	out := make([]models.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, storeErr("query_expenses", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("query_expenses", err)
	}
	return out, nil
}
