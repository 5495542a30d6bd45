package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"calendario/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func sample(name string, start core.Date) core.Expense {
	return core.Expense{
		Name:             name,
		Category:         "Casa",
		Amount:           decimal.NewFromInt(100),
		Type:             core.Recurring,
		StartDate:        start,
		PaymentFrequency: core.Monthly,
	}
}

func TestMemoryStoreCreateGetList(t *testing.T) {
	ctx := context.Background()
	s := New()

	late, err := s.CreateExpense(ctx, sample("late", core.NewDate(2025, 6, 1)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if late.ID == uuid.Nil {
		t.Fatalf("expected generated ID")
	}
	early, err := s.CreateExpense(ctx, sample("early", core.NewDate(2025, 1, 1)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetExpense(ctx, late.ID)
	if err != nil || got.Name != "late" {
		t.Fatalf("unexpected get: %+v err=%v", got, err)
	}

	list, err := s.ListActiveExpenses(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("unexpected list: %v err=%v", list, err)
	}
	if list[0].ID != early.ID || list[1].ID != late.ID {
		t.Fatalf("list not ordered by start date: %v", list)
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New()
	bad := sample("", core.NewDate(2025, 1, 1))
	if _, err := s.CreateExpense(context.Background(), bad); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}

	e := sample("dup", core.NewDate(2025, 1, 1))
	e.ID = uuid.New()
	if _, err := s.CreateExpense(context.Background(), e); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateExpense(context.Background(), e); err == nil {
		t.Fatalf("expected duplicate ID error")
	}
}

func TestMemoryStoreDeactivate(t *testing.T) {
	ctx := context.Background()
	s := New(sample("a", core.NewDate(2025, 1, 1)))
	list, _ := s.ListActiveExpenses(ctx)
	id := list[0].ID

	if err := s.DeactivateExpense(ctx, id); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := s.GetExpense(ctx, id); !errors.Is(err, core.ErrExpenseNotFound) {
		t.Fatalf("expected not found after deactivate, got %v", err)
	}
	if err := s.DeactivateExpense(ctx, id); !errors.Is(err, core.ErrExpenseNotFound) {
		t.Fatalf("expected not found on second deactivate, got %v", err)
	}
	if list, _ := s.ListActiveExpenses(ctx); len(list) != 0 {
		t.Fatalf("expected empty list, got %v", list)
	}
}

func TestMemoryStoreReminders(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := uuid.New()

	if ok, _ := s.WasReminded(ctx, id, 2025, 3); ok {
		t.Fatalf("unexpected reminder before marking")
	}
	if err := s.MarkReminded(ctx, id, 2025, 3, time.Now()); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if ok, _ := s.WasReminded(ctx, id, 2025, 3); !ok {
		t.Fatalf("expected reminder after marking")
	}
	if ok, _ := s.WasReminded(ctx, id, 2025, 4); ok {
		t.Fatalf("reminder leaked into another month")
	}
}
