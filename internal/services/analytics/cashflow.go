package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/domain/models"
)

// Aggregator derives monthly and daily projections from a transaction
// snapshot. All methods are pure: insertion order of the snapshot is
// irrelevant, results are re-sorted by date.
type Aggregator struct{}

func NewAggregator() *Aggregator { return &Aggregator{} }

// MonthlyCashflow groups transactions by calendar month and returns net
// cashflow (income - expense) per month in ascending chronological order.
// Months with no transactions are omitted, not zero-filled.
func (a *Aggregator) MonthlyCashflow(txs []models.Transaction) []models.MonthlyCashflow {
	byMonth := make(map[models.Month]decimal.Decimal)
	for _, tx := range txs {
		m := models.MonthOf(tx.Date)
		net := byMonth[m]
		if tx.Kind == models.KindIncome {
			net = net.Add(tx.Amount)
		} else {
			net = net.Sub(tx.Amount)
		}
		byMonth[m] = net
	}

	out := make([]models.MonthlyCashflow, 0, len(byMonth))
	for m, net := range byMonth {
		out = append(out, models.MonthlyCashflow{Month: m, Net: net.InexactFloat64()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// MonthlyExpenseTotals returns per-month expense sums in ascending order.
func (a *Aggregator) MonthlyExpenseTotals(txs []models.Transaction) []float64 {
	byMonth := make(map[models.Month]decimal.Decimal)
	months := make([]models.Month, 0)
	for _, tx := range txs {
		if tx.Kind != models.KindExpense {
			continue
		}
		m := models.MonthOf(tx.Date)
		if _, ok := byMonth[m]; !ok {
			months = append(months, m)
		}
		byMonth[m] = byMonth[m].Add(tx.Amount)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	out := make([]float64, 0, len(months))
	for _, m := range months {
		out = append(out, byMonth[m].InexactFloat64())
	}
	return out
}

// DailyExpenseTotals groups expense transactions by exact calendar date,
// ascending, with a per-category breakdown per day.
func (a *Aggregator) DailyExpenseTotals(txs []models.Transaction) []models.DailyExpense {
	type day struct {
		total      decimal.Decimal
		count      int
		byCategory map[string]decimal.Decimal
	}
	byDate := make(map[time.Time]*day)
	for _, tx := range txs {
		if tx.Kind != models.KindExpense {
			continue
		}
		date := truncateToDate(tx.Date)
		d, ok := byDate[date]
		if !ok {
			d = &day{byCategory: make(map[string]decimal.Decimal)}
			byDate[date] = d
		}
		d.total = d.total.Add(tx.Amount)
		d.count++
		d.byCategory[tx.Category] = d.byCategory[tx.Category].Add(tx.Amount)
	}

	out := make([]models.DailyExpense, 0, len(byDate))
	for date, d := range byDate {
		cats := make(map[string]float64, len(d.byCategory))
		for c, amt := range d.byCategory {
			cats[c] = amt.InexactFloat64()
		}
		out = append(out, models.DailyExpense{
			Date:       date,
			Total:      d.total.InexactFloat64(),
			Count:      d.count,
			ByCategory: cats,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Totals returns overall income and expense sums.
func (a *Aggregator) Totals(txs []models.Transaction) (income, expense float64) {
	var in, ex decimal.Decimal
	for _, tx := range txs {
		if tx.Kind == models.KindIncome {
			in = in.Add(tx.Amount)
		} else {
			ex = ex.Add(tx.Amount)
		}
	}
	return in.InexactFloat64(), ex.InexactFloat64()
}

// SavingsRate returns (income - expense) / income * 100, or 0 with no income.
func (a *Aggregator) SavingsRate(txs []models.Transaction) float64 {
	income, expense := a.Totals(txs)
	if income == 0 {
		return 0
	}
	return (income - expense) / income * 100
}

// CategoryBreakdown returns per-category expense shares, largest first.
func (a *Aggregator) CategoryBreakdown(txs []models.Transaction) []models.CategoryShare {
	byCategory := make(map[string]decimal.Decimal)
	var total decimal.Decimal
	for _, tx := range txs {
		if tx.Kind != models.KindExpense {
			continue
		}
		byCategory[tx.Category] = byCategory[tx.Category].Add(tx.Amount)
		total = total.Add(tx.Amount)
	}
	if total.IsZero() {
		return nil
	}

	out := make([]models.CategoryShare, 0, len(byCategory))
	totalF := total.InexactFloat64()
	for c, amt := range byCategory {
		f := amt.InexactFloat64()
		out = append(out, models.CategoryShare{
			Category:   c,
			Amount:     f,
			Percentage: f / totalF * 100,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
