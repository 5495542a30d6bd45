package core

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// ScheduledPayment is a single occurrence of an expense in a month.
type ScheduledPayment struct {
	ExpenseID    uuid.UUID
	Name         string
	Category     string
	Type         ExpenseType
	Number       int // 1-based installment number
	Installments int // 0 when unbounded
	Remaining    int // installments left after this one; 0 when unbounded
	Amount       decimal.Decimal
	DueDate      Date
	Important    bool
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year       int
	Month      int // 1-12
	Total      decimal.Decimal
	ByCategory []CategoryAmount
	Items      []ScheduledPayment
}
