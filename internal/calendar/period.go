package calendar

import (
	"fmt"
	"time"
)

// Period is a calendar month identified by year and zero-based month index.
type Period struct {
	Year       int
	MonthIndex int // 0 = January
}

// NewPeriod builds a Period from a 1-12 month number.
func NewPeriod(year int, month time.Month) Period {
	return Period{Year: year, MonthIndex: int(month) - 1}
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return NewPeriod(t.Year(), t.Month())
}

// Valid reports whether the month index is within 0..11.
func (p Period) Valid() bool {
	return p.MonthIndex >= 0 && p.MonthIndex <= 11
}

// Month returns the month as time.Month (1-12).
func (p Period) Month() time.Month {
	return time.Month(p.MonthIndex + 1)
}

// AddMonths returns the period n months later (earlier when negative).
func (p Period) AddMonths(n int) Period {
	total := p.Year*12 + p.MonthIndex + n
	year := total / 12
	index := total % 12
	if index < 0 {
		index += 12
		year--
	}
	return Period{Year: year, MonthIndex: index}
}

func (p Period) Next() Period {
	return p.AddMonths(1)
}

// Before reports whether p is strictly earlier than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.MonthIndex < other.MonthIndex
}

// LastDay returns the number of days in the month.
func (p Period) LastDay() int {
	return time.Date(p.Year, p.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// String formats the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.MonthIndex+1)
}
