package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Variable    ExpenseType = "VARIABLE"
	Recurring   ExpenseType = "RECURRING"
	Installment ExpenseType = "INSTALLMENT"
)

const (
	Once         Frequency = "ONCE"
	Monthly      Frequency = "MONTHLY"
	Bimonthly    Frequency = "BIMONTHLY"
	Quarterly    Frequency = "QUARTERLY"
	Semiannually Frequency = "SEMIANNUALLY"
	Annually     Frequency = "ANNUALLY"
)

type (
	// ExpenseType governs how the per-occurrence amount is derived.
	ExpenseType string

	// Frequency is the cadence at which an expense recurs.
	Frequency string

	Date struct {
		time.Time
	}

	// Expense is a planned or recurring financial obligation.
	Expense struct {
		ID       uuid.UUID
		Name     string
		Category string

		// Amount is expressed in the base currency.
		Amount decimal.Decimal

		// Display/audit only, never used by calendar math.
		OriginalAmount   decimal.Decimal
		OriginalCurrency string
		ExchangeRate     decimal.Decimal

		Type             ExpenseType
		StartDate        Date
		PaymentFrequency Frequency

		// Installments bounds the number of occurrences. 0 means unbounded,
		// see OccurrenceLimit.
		Installments int

		DueDay    int // 1-31, 0 falls back to the start date's day
		Important bool
	}
)

var (
	ErrEmptyName            = errors.New("empty name")
	ErrNameTooLong          = errors.New("name too long (max 200 characters)")
	ErrEmptyCategory        = errors.New("empty category")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidStartDate     = errors.New("invalid start date")
	ErrInvalidType          = errors.New("invalid expense type")
	ErrInvalidFrequency     = errors.New("invalid payment frequency")
	ErrNegativeInstallments = errors.New("installments cannot be negative")
	ErrInvalidDueDay        = errors.New("invalid due day")

	// ErrExpenseNotFound is returned by stores when an expense does not
	// exist or has been deactivated.
	ErrExpenseNotFound = errors.New("expense not found")
)

// ExpenseTypes returns every known expense type.
func ExpenseTypes() []ExpenseType {
	return []ExpenseType{Variable, Recurring, Installment}
}

func (t ExpenseType) IsValid() bool {
	switch t {
	case Variable, Recurring, Installment:
		return true
	default:
		return false
	}
}

// Frequencies returns every known payment frequency.
func Frequencies() []Frequency {
	return []Frequency{Once, Monthly, Bimonthly, Quarterly, Semiannually, Annually}
}

func (f Frequency) IsValid() bool {
	switch f {
	case Once, Monthly, Bimonthly, Quarterly, Semiannually, Annually:
		return true
	default:
		return false
	}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// OccurrenceLimit reports how many occurrences the expense can have.
// ONCE is always limited to a single occurrence. Otherwise a positive
// installment count is the limit and zero means the expense recurs
// indefinitely.
func (e Expense) OccurrenceLimit() (limit int, bounded bool) {
	if e.PaymentFrequency == Once {
		return 1, true
	}
	if e.Installments > 0 {
		return e.Installments, true
	}
	return 0, false
}

// EffectiveDueDay returns the day of month the payment is due.
func (e Expense) EffectiveDueDay() int {
	if e.DueDay > 0 {
		return e.DueDay
	}
	return e.StartDate.Day()
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if len(e.Name) > 200 {
		return ErrNameTooLong
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if e.StartDate.IsZero() {
		return ErrInvalidStartDate
	}
	if !e.Type.IsValid() {
		return ErrInvalidType
	}
	if !e.PaymentFrequency.IsValid() {
		return ErrInvalidFrequency
	}
	if e.Installments < 0 {
		return ErrNegativeInstallments
	}
	if e.DueDay < 0 || e.DueDay > 31 {
		return ErrInvalidDueDay
	}
	return nil
}
