package models

import "time"

// Month identifies a calendar year-month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the Month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Before reports whether m is chronologically before o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m Month) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// MonthlyCashflow is the net cashflow (income - expense) of one calendar
// month. A projection over the ledger, never stored.
type MonthlyCashflow struct {
	Month Month
	Net   float64
}

// DailyExpense is the expense total of one calendar date, with the
// transactions that produced it available for category breakdowns.
type DailyExpense struct {
	Date       time.Time
	Total      float64
	Count      int
	ByCategory map[string]float64
}
