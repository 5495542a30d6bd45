package services

import (
	"context"
	"errors"
	"sync"

	"calendario/internal/amqp"
	"calendario/internal/core"

	"github.com/shopspring/decimal"
)

type fakePublisher struct {
	mu      sync.Mutex
	changed []*amqp.ExpenseChangedMessage
	due     []*amqp.PaymentDueMessage
	fail    bool
}

var errPublish = errors.New("broker unavailable")

func (p *fakePublisher) PublishExpenseChanged(_ context.Context, msg *amqp.ExpenseChangedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errPublish
	}
	p.changed = append(p.changed, msg)
	return nil
}

func (p *fakePublisher) PublishPaymentDue(_ context.Context, msg *amqp.PaymentDueMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errPublish
	}
	p.due = append(p.due, msg)
	return nil
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate() { c.calls++ }

func monthly(name string, amount int64, start core.Date) core.Expense {
	return core.Expense{
		Name:             name,
		Category:         "Casa",
		Amount:           decimal.NewFromInt(amount),
		Type:             core.Recurring,
		StartDate:        start,
		PaymentFrequency: core.Monthly,
	}
}
