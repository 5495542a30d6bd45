package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"calendario/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const expenseColumns = `id, name, category, amount, original_amount, original_currency,
	exchange_rate, expense_type, start_date, payment_frequency, installments, due_day, important`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateExpense implements backend.ExpenseWriter
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(),
		e.Name,
		e.Category,
		e.Amount.String(),
		e.OriginalAmount.String(),
		e.OriginalCurrency,
		e.ExchangeRate.String(),
		string(e.Type),
		e.StartDate.String(),
		string(e.PaymentFrequency),
		e.Installments,
		e.DueDay,
		e.Important,
	)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"name", e.Name,
		"amount", e.Amount.String(),
		"type", e.Type,
		"frequency", e.PaymentFrequency)

	return e, nil
}

// DeactivateExpense implements backend.ExpenseWriter
func (r *SQLiteRepository) DeactivateExpense(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339), id.String())
	if err != nil {
		return fmt.Errorf("deactivate expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate expense rows: %w", err)
	}
	if n == 0 {
		return core.ErrExpenseNotFound
	}

	slog.InfoContext(ctx, "Expense deactivated", "id", id)
	return nil
}

// GetExpense implements backend.ExpenseReader
func (r *SQLiteRepository) GetExpense(ctx context.Context, id uuid.UUID) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND deleted_at IS NULL`, id.String())
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense by id: %w", err)
	}
	return e, nil
}

// ListActiveExpenses implements backend.ExpenseLister
func (r *SQLiteRepository) ListActiveExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE deleted_at IS NULL ORDER BY start_date, created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list active expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

// WasReminded implements backend.ReminderLog
func (r *SQLiteRepository) WasReminded(ctx context.Context, id uuid.UUID, year, month int) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payment_reminders WHERE expense_id = ? AND year = ? AND month = ?`,
		id.String(), year, month).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check reminder: %w", err)
	}
	return n > 0, nil
}

// MarkReminded implements backend.ReminderLog. Marking twice is a no-op.
func (r *SQLiteRepository) MarkReminded(ctx context.Context, id uuid.UUID, year, month int, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO payment_reminders (expense_id, year, month, reminded_at) VALUES (?, ?, ?, ?)`,
		id.String(), year, month, at.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("mark reminder: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                                   core.Expense
		id, amount, origAmount, rate, start string
		expenseType, frequency              string
	)
	err := row.Scan(&id, &e.Name, &e.Category, &amount, &origAmount, &e.OriginalCurrency,
		&rate, &expenseType, &start, &frequency, &e.Installments, &e.DueDay, &e.Important)
	if err != nil {
		return core.Expense{}, err
	}

	if e.ID, err = uuid.Parse(id); err != nil {
		return core.Expense{}, fmt.Errorf("parse id %q: %w", id, err)
	}
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Expense{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if e.OriginalAmount, err = decimal.NewFromString(origAmount); err != nil {
		return core.Expense{}, fmt.Errorf("parse original amount %q: %w", origAmount, err)
	}
	if e.ExchangeRate, err = decimal.NewFromString(rate); err != nil {
		return core.Expense{}, fmt.Errorf("parse exchange rate %q: %w", rate, err)
	}
	if e.StartDate, err = core.ParseDate(start); err != nil {
		return core.Expense{}, fmt.Errorf("parse start date %q: %w", start, err)
	}
	e.Type = core.ExpenseType(expenseType)
	e.PaymentFrequency = core.Frequency(frequency)
	return e, nil
}
