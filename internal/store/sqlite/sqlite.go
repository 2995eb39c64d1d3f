// Package sqlite implements the store contracts on an embedded SQLite
// database (pure Go driver, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/expense-categorizer/internal/apperror"
	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/models"
	"fjacquet/expense-categorizer/internal/textutils"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// BackendName identifies this backend in configuration and logs.
const BackendName = "sqlite"

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a store.Backend on SQLite.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Open creates the database file if needed, applies migrations and returns
// a ready Store.
func Open(dbPath string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; serializing in the pool avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.WithFields(
		logging.Field{Key: logging.FieldBackend, Value: BackendName},
		logging.Field{Key: "path", Value: dbPath},
	).Info("Opened store")

	return &Store{db: db, logger: logger}, nil
}

// Name returns the backend name.
func (s *Store) Name() string { return BackendName }

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
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
	err := s.db.QueryRowContext(ctx, `SELECT category FROM rules WHERE term = ?`, term).Scan(&category)
	if errors.Is(err, sql.ErrNoRows) {
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
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rules (term, category, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (term) DO UPDATE SET category = excluded.category, updated_at = excluded.updated_at`,
		term, category, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return storeErr("put_rule", err)
	}
	return nil
}

// QueryByUser returns the user's entries ordered by usage count descending,
// then category.
func (s *Store) QueryByUser(ctx context.Context, userID string) ([]models.MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.category, m.usage_count, t.term
		FROM user_memory m
		LEFT JOIN user_memory_terms t ON t.user_id = m.user_id AND t.category = m.category
		WHERE m.user_id = ?
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
			term     sql.NullString
		)
		if err := rows.Scan(&category, &usage, &term); err != nil {
			return nil, storeErr("query_memory", err)
		}
		if n := len(out); n == 0 || out[n-1].Category != category {
			out = append(out, models.MemoryEntry{UserID: userID, Category: category, UsageCount: usage})
		}
		if term.Valid {
			out[len(out)-1].Terms.Add(term.String)
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
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("record", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_memory (user_id, category, usage_count) VALUES (?, ?, 1)
		ON CONFLICT (user_id, category) DO UPDATE SET usage_count = usage_count + 1`,
		userID, category); err != nil {
		return storeErr("record", err)
	}

	if term = textutils.NormalizeTerm(term); term != "" {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_memory_terms (user_id, category, term) VALUES (?, ?, ?)
			ON CONFLICT DO NOTHING`,
			userID, category, term); err != nil {
			return storeErr("record", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("record", err)
	}
	return nil
}

// PutExpense stores expense, replacing any record with the same ID.
func (s *Store) PutExpense(ctx context.Context, e models.Expense) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO expenses (id, user_id, amount, category, raw_text, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Amount.String(), e.Category, e.RawText, e.Date, e.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return storeErr("put_expense", err)
	}
	return nil
}

const expenseColumns = `id, user_id, amount, category, raw_text, date, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (models.Expense, error) {
	var (
		e         models.Expense
		amount    string
		createdAt string
	)
	if err := row.Scan(&e.ID, &e.UserID, &amount, &e.Category, &e.RawText, &e.Date, &createdAt); err != nil {
		return models.Expense{}, err
	}
	var err error
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return models.Expense{}, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return models.Expense{}, fmt.Errorf("invalid stored timestamp %q: %w", createdAt, err)
	}
	return e, nil
}

// GetExpense returns the expense with the given ID.
func (s *Store) GetExpense(ctx context.Context, id string) (models.Expense, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
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
	if update.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, update.Amount.String())
	}
	if update.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *update.Category)
	}
	if update.RawText != nil {
		sets = append(sets, "raw_text = ?")
		args = append(args, *update.RawText)
	}
	if len(sets) == 0 {
		return &apperror.ValidationError{Field: "updates", Reason: "no valid updates"}
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE expenses SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return storeErr("update_expense", err)
	}
	return requireAffected(res, id, "update_expense")
}

// DeleteExpense removes the expense with the given ID.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete_expense", err)
	}
	return requireAffected(res, id, "delete_expense")
}

func requireAffected(res sql.Result, id, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr(op, err)
	}
	if n == 0 {
		return &apperror.NotFoundError{Kind: "expense", ID: id}
	}
	return nil
}

// QueryExpenses returns matching expenses ordered by date, then creation time.
func (s *Store) QueryExpenses(ctx context.Context, q models.ExpenseQuery) ([]models.Expense, error) {
	where := []string{"user_id = ?"}
	args := []any{q.UserID}
	if q.Start != "" {
		where = append(where, "date >= ?")
		args = append(args, q.Start)
	}
	if q.End != "" {
		where = append(where, "date <= ?")
		args = append(args, q.End)
	}
	if q.Month != "" {
		where = append(where, "substr(date, 1, 7) = ?")
		args = append(args, q.Month)
	}
	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, q.Category)
	}

	rows, err := s.db.QueryContext(ctx,
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
