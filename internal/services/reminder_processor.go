package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"calendario/internal/amqp"
	"calendario/internal/backend"
	"calendario/internal/calendar"
	"calendario/internal/core"
	applog "calendario/internal/log"
)

// ReminderStore is what the reminder processor reads and records.
type ReminderStore interface {
	backend.ExpenseLister
	backend.ReminderLog
}

// ReminderProcessor publishes a PaymentDueMessage for each occurrence whose
// due date falls within the lookahead window, at most once per expense and month.
type ReminderProcessor struct {
	// mu serializes passes; the check-publish-mark sequence is not atomic.
	mu sync.Mutex

	store         ReminderStore
	publisher     ReminderPublisher
	lookaheadDays int
}

func NewReminderProcessor(store ReminderStore, publisher ReminderPublisher, lookaheadDays int) *ReminderProcessor {
	if lookaheadDays < 0 {
		lookaheadDays = 0
	}
	return &ReminderProcessor{
		store:         store,
		publisher:     publisher,
		lookaheadDays: lookaheadDays,
	}
}

// ProcessDueReminders sends reminders for payments due between now's date
// and lookaheadDays later, inclusive. It returns how many were sent.
// Concurrent calls run one at a time.
func (p *ReminderProcessor) ProcessDueReminders(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.publisher == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	expenses, err := p.store.ListActiveExpenses(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active expenses: %w", err)
	}

	now = now.UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, p.lookaheadDays)

	slog.InfoContext(ctx, "Processing payment reminders",
		applog.FieldOperation, applog.OpRemind,
		"total_active", len(expenses),
		"from", from.Format(time.DateOnly),
		"to", to.Format(time.DateOnly))

	sent := 0
	last := calendar.PeriodOf(to)
	for period := calendar.PeriodOf(from); !last.Before(period); period = period.Next() {
		for _, occ := range calendar.OccurrencesIn(expenses, period) {
			due := occ.DueDate.Time
			if due.Before(from) || due.After(to) {
				continue
			}
			if p.remind(ctx, occ, now) {
				sent++
			}
		}
	}

	slog.InfoContext(ctx, "Payment reminder processing complete",
		"sent", sent,
		"total_checked", len(expenses))

	return sent, nil
}

// remind reports whether a new reminder was published. Failures are logged
// and the occurrence is retried on the next pass.
func (p *ReminderProcessor) remind(ctx context.Context, occ calendar.Occurrence, now time.Time) bool {
	e := occ.Expense
	year, month := occ.Period.Year, int(occ.Period.Month())

	done, err := p.store.WasReminded(ctx, e.ID, year, month)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to check reminder log",
			"id", e.ID, "period", occ.Period.String(), "error", err)
		return false
	}
	if done {
		return false
	}

	msg := &amqp.PaymentDueMessage{
		ExpenseID:    e.ID,
		Name:         e.Name,
		Category:     e.Category,
		Amount:       core.FormatAmount(occ.Amount),
		DueDate:      occ.DueDate.String(),
		Number:       occ.Number,
		Installments: occ.Total,
		Year:         year,
		Month:        month,
		Important:    e.Important,
		Timestamp:    now,
	}
	if err := p.publisher.PublishPaymentDue(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish payment reminder",
			"id", e.ID, "name", e.Name, "error", err)
		return false
	}

	if err := p.store.MarkReminded(ctx, e.ID, year, month, now); err != nil {
		slog.ErrorContext(ctx, "Failed to record reminder",
			"id", e.ID, "period", occ.Period.String(), "error", err)
		// Unmarked: the next pass publishes this occurrence again.
	}

	slog.InfoContext(ctx, "Payment reminder sent",
		applog.FieldOperation, applog.OpRemind,
		"id", e.ID,
		"name", e.Name,
		"due_date", msg.DueDate,
		"amount", msg.Amount)
	return true
}
