package backend

import (
	"context"
	"time"

	"calendario/internal/core"

	"github.com/google/uuid"
)

// Ports for storage adapters.
type (
	ExpenseWriter interface {
		// CreateExpense validates and stores e, assigning an ID when e.ID is zero.
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		// DeactivateExpense hides an expense from every listing. Returns
		// core.ErrExpenseNotFound when no active expense has that ID.
		DeactivateExpense(ctx context.Context, id uuid.UUID) error
	}

	ExpenseReader interface {
		GetExpense(ctx context.Context, id uuid.UUID) (core.Expense, error)
	}

	ExpenseLister interface {
		ListActiveExpenses(ctx context.Context) ([]core.Expense, error)
	}

	// ReminderLog remembers which payment reminders were already sent.
	ReminderLog interface {
		WasReminded(ctx context.Context, id uuid.UUID, year, month int) (bool, error)
		MarkReminded(ctx context.Context, id uuid.UUID, year, month int, at time.Time) error
	}
)

// Backend represents a unified backend interface that provides all necessary operations
type Backend interface {
	ExpenseWriter
	ExpenseReader
	ExpenseLister
	ReminderLog
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	return []string{SQLiteBackend.String(), MemoryBackend.String()}
}
