package services

import (
	"context"
	"fmt"
	"log/slog"

	"calendario/internal/amqp"
	"calendario/internal/backend"
	"calendario/internal/core"

	"github.com/google/uuid"
)

// ExpenseStore is the subset of backend.Backend the expense service needs.
type ExpenseStore interface {
	backend.ExpenseWriter
	backend.ExpenseReader
	backend.ExpenseLister
}

// Invalidator drops derived state after a write.
type Invalidator interface {
	Invalidate()
}

// ExpenseService orchestrates expense writes across the store, the
// calendar cache and AMQP.
type ExpenseService struct {
	store     ExpenseStore
	publisher ChangePublisher
	views     Invalidator
}

func NewExpenseService(store ExpenseStore, publisher ChangePublisher, views Invalidator) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
		views:     views,
	}
}

// CreateExpense stores e and announces it. A publish failure is logged but
// does not fail the call; the expense is already saved.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.invalidate()

	if err := s.publish(ctx, created.ID, amqp.ActionCreated); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense changed message",
			"id", created.ID, "error", err)
	}
	return created, nil
}

func (s *ExpenseService) DeactivateExpense(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeactivateExpense(ctx, id); err != nil {
		return fmt.Errorf("deactivate expense: %w", err)
	}
	s.invalidate()

	if err := s.publish(ctx, id, amqp.ActionDeactivated); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense changed message",
			"id", id, "error", err)
	}
	return nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id uuid.UUID) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

func (s *ExpenseService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return s.store.ListActiveExpenses(ctx)
}

func (s *ExpenseService) invalidate() {
	if s.views != nil {
		s.views.Invalidate()
	}
}

func (s *ExpenseService) publish(ctx context.Context, id uuid.UUID, action string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping expense changed message", "id", id)
		return nil
	}
	return s.publisher.PublishExpenseChanged(ctx, amqp.NewExpenseChangedMessage(id, action))
}
