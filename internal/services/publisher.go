package services

import (
	"context"

	"calendario/internal/amqp"
)

// ChangePublisher is implemented by *amqp.Client. Pass a nil interface, not a
// nil *amqp.Client, when messaging is disabled.
type ChangePublisher interface {
	PublishExpenseChanged(ctx context.Context, msg *amqp.ExpenseChangedMessage) error
}

// ReminderPublisher is implemented by *amqp.Client.
type ReminderPublisher interface {
	PublishPaymentDue(ctx context.Context, msg *amqp.PaymentDueMessage) error
}
