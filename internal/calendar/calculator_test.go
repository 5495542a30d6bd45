package calendar

import (
	"testing"

	"calendario/internal/core"

	"github.com/shopspring/decimal"
)

func expense(freq core.Frequency, installments int, start core.Date) core.Expense {
	return core.Expense{
		Name:             "Test",
		Category:         "Casa",
		Amount:           decimal.NewFromInt(1200000),
		Type:             core.Recurring,
		StartDate:        start,
		PaymentFrequency: freq,
		Installments:     installments,
	}
}

func TestFrequencyStepInMonths(t *testing.T) {
	tests := []struct {
		frequency core.Frequency
		want      int
	}{
		{core.Once, 1},
		{core.Monthly, 1},
		{core.Bimonthly, 2},
		{core.Quarterly, 3},
		{core.Semiannually, 6},
		{core.Annually, 12},
	}

	for _, tt := range tests {
		t.Run(string(tt.frequency), func(t *testing.T) {
			if got := FrequencyStepInMonths(tt.frequency); got != tt.want {
				t.Errorf("FrequencyStepInMonths(%s) = %d, want %d", tt.frequency, got, tt.want)
			}
		})
	}

	// every declared frequency must be mapped
	for _, f := range core.Frequencies() {
		if FrequencyStepInMonths(f) <= 0 {
			t.Errorf("FrequencyStepInMonths(%s) is not positive", f)
		}
	}
}

func TestFrequencyStepInMonths_UnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("FrequencyStepInMonths() did not panic on unknown frequency")
		}
	}()
	FrequencyStepInMonths(core.Frequency("WEEKLY"))
}

func TestOccursInMonth_PreStartExclusion(t *testing.T) {
	for _, f := range core.Frequencies() {
		e := expense(f, 0, core.NewDate(2025, 6, 10))
		for _, p := range []Period{{2025, 4}, {2025, 0}, {2024, 11}, {2020, 5}} {
			if OccursInMonth(e, p.Year, p.MonthIndex) {
				t.Errorf("%s expense occurs in %s before its start", f, p)
			}
		}
	}
}

func TestOccursInMonth_MonthlyCapped(t *testing.T) {
	e := expense(core.Monthly, 12, core.NewDate(2025, 1, 1))
	for m := 0; m < 12; m++ {
		if !OccursInMonth(e, 2025, m) {
			t.Errorf("OccursInMonth(2025, %d) = false, want true", m)
		}
	}
	if OccursInMonth(e, 2026, 0) {
		t.Error("OccursInMonth(2026, 0) = true, want false after the 12th installment")
	}
}

func TestOccursInMonth_Quarterly(t *testing.T) {
	e := expense(core.Quarterly, 4, core.NewDate(2025, 3, 1))
	want := map[int]bool{2: true, 5: true, 8: true, 11: true}
	for m := 0; m < 12; m++ {
		if got := OccursInMonth(e, 2025, m); got != want[m] {
			t.Errorf("OccursInMonth(2025, %d) = %v, want %v", m, got, want[m])
		}
	}
	if OccursInMonth(e, 2026, 2) {
		t.Error("OccursInMonth(2026, 2) = true, want false beyond 4 installments")
	}
}

func TestOccursInMonth_InfiniteRecurrence(t *testing.T) {
	e := expense(core.Monthly, 0, core.NewDate(2025, 1, 1))
	for p := (Period{2025, 0}); p.Before(Period{2031, 0}); p = p.Next() {
		if !OccursInMonth(e, p.Year, p.MonthIndex) {
			t.Fatalf("OccursInMonth(%s) = false, want true", p)
		}
	}
}

func TestOccursInMonth_DayOfMonthIrrelevant(t *testing.T) {
	e := expense(core.Monthly, 0, core.NewDate(2025, 1, 31))
	if !OccursInMonth(e, 2025, 1) {
		t.Error("expense starting on Jan 31 should occur in February")
	}
}

func TestOccursInMonth_Once(t *testing.T) {
	tests := []struct {
		name         string
		installments int
	}{
		{"no installments", 0},
		{"installments ignored", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := expense(core.Once, tt.installments, core.NewDate(2025, 4, 20))
			if !OccursInMonth(e, 2025, 3) {
				t.Error("ONCE expense should occur in its start month")
			}
			for _, p := range []Period{{2025, 4}, {2025, 5}, {2026, 3}} {
				if OccursInMonth(e, p.Year, p.MonthIndex) {
					t.Errorf("ONCE expense occurs again in %s", p)
				}
			}
		})
	}
}

func TestOccursInMonth_AnnualAcrossYears(t *testing.T) {
	e := expense(core.Annually, 0, core.NewDate(2023, 11, 5))
	tests := []struct {
		year, month int
		want        bool
	}{
		{2023, 10, true},
		{2024, 10, true},
		{2024, 9, false},
		{2030, 10, true},
		{2030, 11, false},
	}
	for _, tt := range tests {
		if got := OccursInMonth(e, tt.year, tt.month); got != tt.want {
			t.Errorf("OccursInMonth(%d, %d) = %v, want %v", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestInstallmentNumber(t *testing.T) {
	e := expense(core.Bimonthly, 3, core.NewDate(2025, 2, 1))
	tests := []struct {
		name       string
		p          Period
		wantNumber int
		wantOK     bool
	}{
		{"before start", Period{2025, 0}, 0, false},
		{"first", Period{2025, 1}, 1, true},
		{"off cadence", Period{2025, 2}, 0, false},
		{"second", Period{2025, 3}, 2, true},
		{"third", Period{2025, 5}, 3, true},
		{"beyond cap", Period{2025, 7}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := InstallmentNumber(e, tt.p.Year, tt.p.MonthIndex)
			if got != tt.wantNumber || ok != tt.wantOK {
				t.Errorf("InstallmentNumber(%s) = (%d, %v), want (%d, %v)", tt.p, got, ok, tt.wantNumber, tt.wantOK)
			}
		})
	}
}

func TestInstallmentNumber_ConsistentWithOccursInMonth(t *testing.T) {
	starts := []core.Date{core.NewDate(2024, 1, 31), core.NewDate(2025, 7, 1)}
	for _, f := range core.Frequencies() {
		for _, n := range []int{0, 1, 4, 12} {
			for _, start := range starts {
				e := expense(f, n, start)
				limit, bounded := e.OccurrenceLimit()
				for p := (Period{2023, 0}); p.Before(Period{2029, 0}); p = p.Next() {
					occurs := OccursInMonth(e, p.Year, p.MonthIndex)
					number, ok := InstallmentNumber(e, p.Year, p.MonthIndex)
					if occurs != ok {
						t.Fatalf("%s/%d %s: OccursInMonth=%v but InstallmentNumber ok=%v", f, n, p, occurs, ok)
					}
					if !ok {
						if number != 0 {
							t.Fatalf("%s/%d %s: expected zero number, got %d", f, n, p, number)
						}
						continue
					}
					if number < 1 || (bounded && number > limit) {
						t.Fatalf("%s/%d %s: number %d out of range (limit %d)", f, n, p, number, limit)
					}
				}
			}
		}
	}
}

func TestInstallmentAmount(t *testing.T) {
	amount := decimal.NewFromInt(1200000)
	tests := []struct {
		name         string
		expenseType  core.ExpenseType
		installments int
		want         decimal.Decimal
	}{
		{"installment split", core.Installment, 12, decimal.NewFromInt(100000)},
		{"installment zero count", core.Installment, 0, decimal.Zero},
		{"installment uneven split", core.Installment, 3, decimal.NewFromInt(400000)},
		{"recurring unchanged", core.Recurring, 12, amount},
		{"recurring unbounded", core.Recurring, 0, amount},
		{"variable unchanged", core.Variable, 6, amount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := expense(core.Monthly, tt.installments, core.NewDate(2025, 1, 1))
			e.Type = tt.expenseType
			e.Amount = amount
			if got := InstallmentAmount(e); !got.Equal(tt.want) {
				t.Errorf("InstallmentAmount() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCalculator_Idempotent(t *testing.T) {
	e := expense(core.Semiannually, 5, core.NewDate(2025, 5, 17))
	e.Type = core.Installment
	for i := 0; i < 3; i++ {
		if !OccursInMonth(e, 2025, 10) {
			t.Fatal("OccursInMonth changed between calls")
		}
		if n, ok := InstallmentNumber(e, 2025, 10); !ok || n != 2 {
			t.Fatalf("InstallmentNumber = (%d, %v), want (2, true)", n, ok)
		}
		if got := InstallmentAmount(e); !got.Equal(decimal.NewFromInt(240000)) {
			t.Fatalf("InstallmentAmount = %s", got)
		}
	}
}
