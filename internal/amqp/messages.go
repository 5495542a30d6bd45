package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Expense change actions.
const (
	ActionCreated     = "created"
	ActionDeactivated = "deactivated"
)

// ExpenseChangedMessage tells consumers an expense was created or removed.
// It carries only the ID; consumers re-read the store for details.
type ExpenseChangedMessage struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseChangedMessage(id uuid.UUID, action string) *ExpenseChangedMessage {
	return &ExpenseChangedMessage{
		ID:        id,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
}

func (m *ExpenseChangedMessage) Validate() error {
	if m.ID == uuid.Nil {
		return errors.New("missing expense id")
	}
	switch m.Action {
	case ActionCreated, ActionDeactivated:
		return nil
	default:
		return fmt.Errorf("unknown action %q", m.Action)
	}
}

func (m *ExpenseChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseChangedMessageFromJSON decodes and validates a message body.
func ExpenseChangedMessageFromJSON(data []byte) (*ExpenseChangedMessage, error) {
	var msg ExpenseChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// PaymentDueMessage announces an upcoming payment. Amount is a decimal
// string with two places; DueDate is YYYY-MM-DD.
type PaymentDueMessage struct {
	ExpenseID    uuid.UUID `json:"expense_id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Amount       string    `json:"amount"`
	DueDate      string    `json:"due_date"`
	Number       int       `json:"number"`
	Installments int       `json:"installments,omitempty"`
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	Important    bool      `json:"important,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func (m *PaymentDueMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PaymentDueMessageFromJSON(data []byte) (*PaymentDueMessage, error) {
	var msg PaymentDueMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ExpenseID == uuid.Nil {
		return nil, errors.New("missing expense id")
	}
	return &msg, nil
}
