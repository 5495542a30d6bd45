package calendar

import (
	"sort"

	"calendario/internal/core"

	"github.com/shopspring/decimal"
)

// Occurrence is a single scheduled instance of an expense in a month.
type Occurrence struct {
	Expense core.Expense
	Period  Period
	Number  int // 1-based
	Total   int // 0 when the expense recurs indefinitely
	Amount  decimal.Decimal
	DueDate core.Date
}

// ElapsedMonths returns the months between the expense's start month and p.
func ElapsedMonths(e core.Expense, p Period) int {
	return elapsedMonths(e, p.Year, p.MonthIndex)
}

// DueDate returns the payment date for the expense within p. A due day
// beyond the end of the month is clamped to the month's last day.
func DueDate(e core.Expense, p Period) core.Date {
	day := e.EffectiveDueDay()
	if last := p.LastDay(); day > last {
		day = last
	}
	return core.NewDate(p.Year, int(p.Month()), day)
}

// OccurrenceAt returns the occurrence of e in p, if any.
func OccurrenceAt(e core.Expense, p Period) (Occurrence, bool) {
	number, ok := InstallmentNumber(e, p.Year, p.MonthIndex)
	if !ok {
		return Occurrence{}, false
	}
	limit, _ := e.OccurrenceLimit()
	return Occurrence{
		Expense: e,
		Period:  p,
		Number:  number,
		Total:   limit,
		Amount:  InstallmentAmount(e),
		DueDate: DueDate(e, p),
	}, true
}

// OccurrencesIn returns every occurrence in p, ordered by due date and name.
func OccurrencesIn(expenses []core.Expense, p Period) []Occurrence {
	var out []Occurrence
	for _, e := range expenses {
		if occ, ok := OccurrenceAt(e, p); ok {
			out = append(out, occ)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate.Time) {
			return out[i].DueDate.Before(out[j].DueDate.Time)
		}
		return out[i].Expense.Name < out[j].Expense.Name
	})
	return out
}

// RemainingInstallments returns how many occurrences are left after p.
// The second result is false for expenses without a bound.
func RemainingInstallments(e core.Expense, p Period) (int, bool) {
	limit, bounded := e.OccurrenceLimit()
	if !bounded {
		return 0, false
	}
	elapsed := ElapsedMonths(e, p)
	if elapsed < 0 {
		return limit, true
	}
	done := elapsed/FrequencyStepInMonths(e.PaymentFrequency) + 1
	if done >= limit {
		return 0, true
	}
	return limit - done, true
}

// Overview summarizes the occurrences of a month.
func Overview(expenses []core.Expense, p Period) core.MonthOverview {
	overview := core.MonthOverview{
		Year:  p.Year,
		Month: int(p.Month()),
		Total: decimal.Zero,
	}

	byCategory := map[string]decimal.Decimal{}
	for _, occ := range OccurrencesIn(expenses, p) {
		remaining, _ := RemainingInstallments(occ.Expense, p)
		overview.Total = overview.Total.Add(occ.Amount)
		byCategory[occ.Expense.Category] = byCategory[occ.Expense.Category].Add(occ.Amount)
		overview.Items = append(overview.Items, core.ScheduledPayment{
			ExpenseID:    occ.Expense.ID,
			Name:         occ.Expense.Name,
			Category:     occ.Expense.Category,
			Type:         occ.Expense.Type,
			Number:       occ.Number,
			Installments: occ.Total,
			Remaining:    remaining,
			Amount:       occ.Amount,
			DueDate:      occ.DueDate,
			Important:    occ.Expense.Important,
		})
	}

	for name, amount := range byCategory {
		overview.ByCategory = append(overview.ByCategory, core.CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(overview.ByCategory, func(i, j int) bool {
		return overview.ByCategory[i].Name < overview.ByCategory[j].Name
	})

	return overview
}

// YearOverview returns the twelve month overviews of year.
func YearOverview(expenses []core.Expense, year int) []core.MonthOverview {
	out := make([]core.MonthOverview, 0, 12)
	for m := 0; m < 12; m++ {
		out = append(out, Overview(expenses, Period{Year: year, MonthIndex: m}))
	}
	return out
}
