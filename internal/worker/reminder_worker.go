// Package worker drives the reminder processor from a ticker and from
// expense change messages.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"calendario/internal/amqp"

	"golang.org/x/sync/errgroup"
)

// Processor is implemented by *services.ReminderProcessor.
type Processor interface {
	ProcessDueReminders(ctx context.Context, now time.Time) (int, error)
}

// ChangeConsumer is implemented by *amqp.Client.
type ChangeConsumer interface {
	ConsumeExpenseChanged(ctx context.Context, handler func(context.Context, *amqp.ExpenseChangedMessage) error) error
}

// ReminderWorker runs a reminder pass at startup, on every tick and whenever
// a new expense is announced.
type ReminderWorker struct {
	processor Processor
	consumer  ChangeConsumer
	interval  time.Duration
	now       func() time.Time
}

// NewReminderWorker returns a worker; a nil consumer runs the ticker only.
func NewReminderWorker(processor Processor, consumer ChangeConsumer, interval time.Duration) *ReminderWorker {
	return &ReminderWorker{
		processor: processor,
		consumer:  consumer,
		interval:  interval,
		now:       time.Now,
	}
}

// Run blocks until ctx is cancelled or the consumer fails. Cancellation is
// not reported as an error.
func (w *ReminderWorker) Run(ctx context.Context) error {
	if w.processor == nil {
		return fmt.Errorf("worker not properly initialized")
	}
	if w.interval <= 0 {
		return fmt.Errorf("invalid interval %v", w.interval)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.runPass(gctx, "startup")
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				w.runPass(gctx, "ticker")
			}
		}
	})

	if w.consumer != nil {
		g.Go(func() error {
			return w.consumer.ConsumeExpenseChanged(gctx, w.HandleExpenseChanged)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// HandleExpenseChanged runs a pass for newly created expenses, which may
// already be due inside the lookahead window. Returning an error requeues
// the message.
func (w *ReminderWorker) HandleExpenseChanged(ctx context.Context, msg *amqp.ExpenseChangedMessage) error {
	slog.InfoContext(ctx, "Processing expense changed message",
		"id", msg.ID,
		"action", msg.Action)

	if msg.Action != amqp.ActionCreated {
		return nil
	}
	if _, err := w.processor.ProcessDueReminders(ctx, w.now()); err != nil {
		return fmt.Errorf("process reminders for %s: %w", msg.ID, err)
	}
	return nil
}

func (w *ReminderWorker) runPass(ctx context.Context, trigger string) {
	count, err := w.processor.ProcessDueReminders(ctx, w.now())
	if err != nil {
		slog.ErrorContext(ctx, "Reminder processing failed", "error", err, "trigger", trigger)
		return
	}
	slog.InfoContext(ctx, "Reminder processing complete",
		"sent", count,
		"trigger", trigger,
		"next_check", w.now().Add(w.interval).Format("15:04:05"))
}
