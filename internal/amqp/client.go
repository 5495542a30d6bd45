// Package amqp publishes and consumes calendario events over RabbitMQ.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Topology names the exchange and queues the client declares. Each queue is
// bound to the exchange with its own name as routing key.
type Topology struct {
	Exchange      string
	ExpenseQueue  string
	ReminderQueue string
}

func DefaultTopology() Topology {
	return Topology{
		Exchange:      "calendario",
		ExpenseQueue:  "expense_changed",
		ReminderQueue: "payment_due",
	}
}

type Client struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	topo    Topology
	pubMu   sync.Mutex
}

func NewClient(url string, topo Topology) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:    conn,
		channel: channel,
		topo:    topo,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queues: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.topo.Exchange, // name
		"direct",        // type
		true,            // durable
		false,           // auto-deleted
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	for _, queue := range []string{c.topo.ExpenseQueue, c.topo.ReminderQueue} {
		if queue == "" {
			continue
		}
		if _, err := c.channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
		// routing key is the queue name
		if err := c.channel.QueueBind(queue, queue, c.topo.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}

	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	err := c.channel.PublishWithContext(
		ctx,
		c.topo.Exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// PublishExpenseChanged implements services.ChangePublisher
func (c *Client) PublishExpenseChanged(ctx context.Context, msg *ExpenseChangedMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, c.topo.ExpenseQueue, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published expense changed message",
		"id", msg.ID,
		"action", msg.Action,
		"exchange", c.topo.Exchange,
		"queue", c.topo.ExpenseQueue)
	return nil
}

// PublishPaymentDue implements services.ReminderPublisher
func (c *Client) PublishPaymentDue(ctx context.Context, msg *PaymentDueMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, c.topo.ReminderQueue, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published payment due message",
		"expense_id", msg.ExpenseID,
		"due_date", msg.DueDate,
		"amount", msg.Amount,
		"queue", c.topo.ReminderQueue)
	return nil
}

// ConsumeExpenseChanged delivers expense change messages to handler until ctx
// is cancelled. Malformed messages are dropped; handler errors requeue.
func (c *Client) ConsumeExpenseChanged(ctx context.Context, handler func(context.Context, *ExpenseChangedMessage) error) error {
	msgs, err := c.channel.Consume(
		c.topo.ExpenseQueue, // queue
		"",                  // consumer
		false,               // auto-ack (we want manual ack)
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,                 // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming expense changed messages", "queue", c.topo.ExpenseQueue)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			c.handleDelivery(ctx, delivery, handler)
		}
	}
}

func (c *Client) handleDelivery(ctx context.Context, d amqp091.Delivery, handler func(context.Context, *ExpenseChangedMessage) error) {
	msg, err := ExpenseChangedMessageFromJSON(d.Body)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to decode message", "error", err)
		_ = d.Nack(false, false) // drop, don't requeue
		return
	}

	if err := handler(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to handle message",
			"error", err,
			"id", msg.ID,
			"action", msg.Action)
		_ = d.Nack(false, true)
		return
	}

	_ = d.Ack(false)
	slog.DebugContext(ctx, "Processed expense changed message", "id", msg.ID, "action", msg.Action)
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
