package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"calendario/internal/backend"
	"calendario/internal/cache"
	"calendario/internal/calendar"
	"calendario/internal/core"
)

var ErrInvalidPeriod = errors.New("invalid period")

// CalendarService answers month and year calendar queries over the active
// expenses, caching month overviews by "YYYY-MM".
type CalendarService struct {
	expenses backend.ExpenseLister
	cache    cache.Cache[core.MonthOverview]

	// generation counts invalidations; overviews computed from a list read
	// before the latest invalidation are not cached.
	mu         sync.Mutex
	generation uint64
}

// NewCalendarService returns a service that caches in c; a nil c disables caching.
func NewCalendarService(expenses backend.ExpenseLister, c cache.Cache[core.MonthOverview]) *CalendarService {
	return &CalendarService{expenses: expenses, cache: c}
}

func (s *CalendarService) Month(ctx context.Context, p calendar.Period) (core.MonthOverview, error) {
	if !p.Valid() || !validYear(p.Year) {
		return core.MonthOverview{}, fmt.Errorf("%w: %s", ErrInvalidPeriod, p)
	}
	if ov, ok := s.cached(p); ok {
		return ov, nil
	}

	gen := s.currentGeneration()
	expenses, err := s.expenses.ListActiveExpenses(ctx)
	if err != nil {
		return core.MonthOverview{}, fmt.Errorf("list expenses: %w", err)
	}
	return s.compute(expenses, p, gen), nil
}

// Year returns the twelve month overviews of year, January first.
func (s *CalendarService) Year(ctx context.Context, year int) ([]core.MonthOverview, error) {
	if !validYear(year) {
		return nil, fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}

	var (
		expenses []core.Expense
		gen      uint64
	)
	loaded := false
	out := make([]core.MonthOverview, 12)
	for m := 0; m < 12; m++ {
		p := calendar.Period{Year: year, MonthIndex: m}
		if ov, ok := s.cached(p); ok {
			out[m] = ov
			continue
		}
		if !loaded {
			var err error
			gen = s.currentGeneration()
			if expenses, err = s.expenses.ListActiveExpenses(ctx); err != nil {
				return nil, fmt.Errorf("list expenses: %w", err)
			}
			loaded = true
		}
		out[m] = s.compute(expenses, p, gen)
	}
	return out, nil
}

func validYear(y int) bool { return y >= 1 && y <= 9999 }

// Invalidate drops every cached overview.
func (s *CalendarService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if s.cache != nil {
		s.cache.Clear()
	}
}

func (s *CalendarService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *CalendarService) cached(p calendar.Period) (core.MonthOverview, bool) {
	if s.cache == nil {
		return core.MonthOverview{}, false
	}
	return s.cache.Get(p.String())
}

// compute builds the overview and caches it unless an invalidation happened
// after gen was read.
func (s *CalendarService) compute(expenses []core.Expense, p calendar.Period, gen uint64) core.MonthOverview {
	ov := calendar.Overview(expenses, p)
	if s.cache == nil {
		return ov
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.cache.Set(p.String(), ov)
	}
	return ov
}
