// Package memory provides an in-process store for expenses and sent
// reminders. It is the default backend for local development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"calendario/internal/core"

	"github.com/google/uuid"
)

type reminderKey struct {
	id          uuid.UUID
	year, month int
}

type Store struct {
	mu        sync.Mutex
	items     map[uuid.UUID]core.Expense
	order     []uuid.UUID
	inactive  map[uuid.UUID]struct{}
	reminders map[reminderKey]time.Time
}

func New(seed ...core.Expense) *Store {
	s := &Store{
		items:     make(map[uuid.UUID]core.Expense),
		inactive:  make(map[uuid.UUID]struct{}),
		reminders: make(map[reminderKey]time.Time),
	}
	for _, e := range seed {
		_, _ = s.CreateExpense(context.Background(), e)
	}
	return s
}

// CreateExpense validates and stores the expense.
func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[e.ID]; exists {
		return core.Expense{}, fmt.Errorf("expense %s already exists", e.ID)
	}
	s.items[e.ID] = e
	s.order = append(s.order, e.ID)
	return e, nil
}

func (s *Store) DeactivateExpense(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeLocked(id) {
		return core.ErrExpenseNotFound
	}
	s.inactive[id] = struct{}{}
	return nil
}

func (s *Store) GetExpense(_ context.Context, id uuid.UUID) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeLocked(id) {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	return s.items[id], nil
}

// ListActiveExpenses returns active expenses ordered by start date, then
// insertion order.
func (s *Store) ListActiveExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0, len(s.order))
	for _, id := range s.order {
		if s.activeLocked(id) {
			out = append(out, s.items[id])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate.Time)
	})
	return out, nil
}

func (s *Store) WasReminded(_ context.Context, id uuid.UUID, year, month int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.reminders[reminderKey{id: id, year: year, month: month}]
	return ok, nil
}

func (s *Store) MarkReminded(_ context.Context, id uuid.UUID, year, month int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := reminderKey{id: id, year: year, month: month}
	if _, ok := s.reminders[key]; !ok {
		s.reminders[key] = at
	}
	return nil
}

func (s *Store) activeLocked(id uuid.UUID) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}
	_, gone := s.inactive[id]
	return !gone
}
