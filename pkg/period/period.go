// Package period handles (year, month) accounting periods.
package period

import (
	"fmt"
	"time"
)

type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func New(year, month int) Period {
	return Period{Year: year, Month: month}
}

// Of returns the calendar period containing t, in UTC.
func Of(t time.Time) Period {
	t = t.UTC()
	return Period{Year: t.Year(), Month: int(t.Month())}
}

func ValidMonth(month int) bool {
	return month >= 1 && month <= 12
}

func (p Period) Valid() bool {
	return p.Year > 0 && ValidMonth(p.Month)
}

// Previous rolls January back to December of the prior year.
func (p Period) Previous() Period {
	if p.Month <= 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Index is a monotonically increasing month counter, handy for window arithmetic.
func (p Period) Index() int {
	return p.Year*12 + (p.Month - 1)
}

func (p Period) AddMonths(n int) Period {
	idx := p.Index() + n
	return Period{Year: idx / 12, Month: idx%12 + 1}
}

func (p Period) FirstDay() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

func (p Period) LastDay() time.Time {
	return p.FirstDay().AddDate(0, 1, -1)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
