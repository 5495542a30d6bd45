package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validExpense() Expense {
	return Expense{
		Name:             "Mutuo",
		Category:         "Casa",
		Amount:           decimal.NewFromInt(650),
		Type:             Recurring,
		StartDate:        NewDate(2025, 1, 15),
		PaymentFrequency: Monthly,
	}
}

func TestExpenseValidate(t *testing.T) {
	if err := validExpense().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Expense)
		want   error
	}{
		{"empty name", func(e *Expense) { e.Name = "  " }, ErrEmptyName},
		{"name too long", func(e *Expense) { e.Name = strings.Repeat("x", 201) }, ErrNameTooLong},
		{"empty category", func(e *Expense) { e.Category = "" }, ErrEmptyCategory},
		{"zero amount", func(e *Expense) { e.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(e *Expense) { e.Amount = decimal.NewFromInt(-1) }, ErrInvalidAmount},
		{"zero start date", func(e *Expense) { e.StartDate = Date{Time: time.Time{}} }, ErrInvalidStartDate},
		{"unknown type", func(e *Expense) { e.Type = "SUBSCRIPTION" }, ErrInvalidType},
		{"unknown frequency", func(e *Expense) { e.PaymentFrequency = "WEEKLY" }, ErrInvalidFrequency},
		{"negative installments", func(e *Expense) { e.Installments = -1 }, ErrNegativeInstallments},
		{"due day too large", func(e *Expense) { e.DueDay = 32 }, ErrInvalidDueDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validExpense()
			tt.mutate(&e)
			if err := e.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOccurrenceLimit(t *testing.T) {
	tests := []struct {
		name         string
		frequency    Frequency
		installments int
		wantLimit    int
		wantBounded  bool
	}{
		{"monthly unbounded", Monthly, 0, 0, false},
		{"monthly capped", Monthly, 12, 12, true},
		{"once without installments", Once, 0, 1, true},
		{"once ignores installments", Once, 5, 1, true},
		{"quarterly capped", Quarterly, 4, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validExpense()
			e.PaymentFrequency = tt.frequency
			e.Installments = tt.installments
			limit, bounded := e.OccurrenceLimit()
			if limit != tt.wantLimit || bounded != tt.wantBounded {
				t.Errorf("OccurrenceLimit() = (%d, %v), want (%d, %v)", limit, bounded, tt.wantLimit, tt.wantBounded)
			}
		})
	}
}

func TestEffectiveDueDay(t *testing.T) {
	e := validExpense()
	if got := e.EffectiveDueDay(); got != 15 {
		t.Errorf("EffectiveDueDay() = %d, want 15", got)
	}
	e.DueDay = 3
	if got := e.EffectiveDueDay(); got != 3 {
		t.Errorf("EffectiveDueDay() = %d, want 3", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-31")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2025 || d.Month() != 1 || d.Day() != 31 {
		t.Fatalf("unexpected date %v", d)
	}
	if d.String() != "2025-01-31" {
		t.Fatalf("String() = %q", d.String())
	}
	if _, err := ParseDate("31/01/2025"); err == nil {
		t.Fatalf("expected error for non ISO date")
	}
}

func TestFrequencyAndTypeEnumeration(t *testing.T) {
	for _, f := range Frequencies() {
		if !f.IsValid() {
			t.Errorf("frequency %q reported invalid", f)
		}
	}
	for _, ty := range ExpenseTypes() {
		if !ty.IsValid() {
			t.Errorf("expense type %q reported invalid", ty)
		}
	}
}
