// Package calendar places expenses on a monthly calendar.
//
// The calculator works on (year, zero-based month index) pairs only: the
// day of month of an expense's start date never affects whether it occurs
// in a month. Every function here is pure and safe for concurrent use.
package calendar

import (
	"fmt"

	"calendario/internal/core"

	"github.com/shopspring/decimal"
)

// frequencySteps maps each payment frequency to the number of months
// between consecutive occurrences.
var frequencySteps = map[core.Frequency]int{
	core.Once:         1,
	core.Monthly:      1,
	core.Bimonthly:    2,
	core.Quarterly:    3,
	core.Semiannually: 6,
	core.Annually:     12,
}

// FrequencyStepInMonths returns the month step for a payment frequency.
// It panics on a frequency outside the known set: callers are expected to
// reject such values with core.Frequency.IsValid at their boundary.
func FrequencyStepInMonths(frequency core.Frequency) int {
	step, ok := frequencySteps[frequency]
	if !ok {
		panic(fmt.Sprintf("calendar: unknown payment frequency %q", frequency))
	}
	return step
}

// elapsedMonths counts months between the expense's start month and the
// target month. Negative when the target precedes the start.
func elapsedMonths(e core.Expense, year, monthIndex int) int {
	startYear := e.StartDate.Year()
	startMonth := int(e.StartDate.Time.Month()) - 1
	return (year-startYear)*12 + (monthIndex - startMonth)
}

// occurrenceIndex returns the zero-based occurrence index of the expense in
// the target month, or false when it does not occur there.
func occurrenceIndex(e core.Expense, year, monthIndex int) (int, bool) {
	elapsed := elapsedMonths(e, year, monthIndex)
	if elapsed < 0 {
		return 0, false
	}

	step := FrequencyStepInMonths(e.PaymentFrequency)
	if elapsed%step != 0 {
		return 0, false
	}

	index := elapsed / step
	if limit, bounded := e.OccurrenceLimit(); bounded && index >= limit {
		return 0, false
	}
	return index, true
}

// OccursInMonth reports whether an installment of the expense falls in the
// given month. monthIndex is zero-based (0 = January).
func OccursInMonth(e core.Expense, year, monthIndex int) bool {
	_, ok := occurrenceIndex(e, year, monthIndex)
	return ok
}

// InstallmentNumber returns the 1-based occurrence number of the expense in
// the given month. The second result is false when the expense does not
// occur there.
func InstallmentNumber(e core.Expense, year, monthIndex int) (int, bool) {
	index, ok := occurrenceIndex(e, year, monthIndex)
	if !ok {
		return 0, false
	}
	return index + 1, true
}

// InstallmentAmount returns the amount due for a single occurrence.
// INSTALLMENT expenses split the stored amount evenly across their
// installments and yield zero when the count is zero. Other types are due in
// full every time.
func InstallmentAmount(e core.Expense) decimal.Decimal {
	if e.Type != core.Installment {
		return e.Amount
	}
	if e.Installments <= 0 {
		return decimal.Zero
	}
	return e.Amount.Div(decimal.NewFromInt(int64(e.Installments)))
}
