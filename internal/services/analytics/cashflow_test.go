package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/domain/models"
)

func tx(date string, amount float64, kind models.Kind, category string) models.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return models.Transaction{
		Date:     d,
		Amount:   decimal.NewFromFloat(amount),
		Kind:     kind,
		Category: category,
	}
}

func TestMonthlyCashflow(t *testing.T) {
	agg := NewAggregator()
	// out of order on purpose: aggregation must re-sort
	txs := []models.Transaction{
		tx("2024-02-10", 200, models.KindExpense, "food"),
		tx("2024-01-05", 1000, models.KindIncome, "salary"),
		tx("2024-01-20", 300, models.KindExpense, "rent"),
		tx("2024-02-01", 100, models.KindIncome, "salary"),
	}

	got := agg.MonthlyCashflow(txs)
	if len(got) != 2 {
		t.Fatalf("months = %d, want 2", len(got))
	}
	if got[0].Month.String() != "2024-01" || !almostEqual(got[0].Net, 700) {
		t.Fatalf("jan = %+v, want net 700", got[0])
	}
	if got[1].Month.String() != "2024-02" || !almostEqual(got[1].Net, -100) {
		t.Fatalf("feb = %+v, want net -100", got[1])
	}
}

func TestMonthlyExpenseTotals(t *testing.T) {
	agg := NewAggregator()
	txs := []models.Transaction{
		tx("2024-02-10", 50, models.KindExpense, "food"),
		tx("2024-01-05", 1000, models.KindIncome, "salary"),
		tx("2024-01-20", 300, models.KindExpense, "rent"),
		tx("2024-02-15", 150, models.KindExpense, "food"),
	}

	got := agg.MonthlyExpenseTotals(txs)
	if len(got) != 2 || !almostEqual(got[0], 300) || !almostEqual(got[1], 200) {
		t.Fatalf("expense totals = %v, want [300 200]", got)
	}
}

func TestDailyExpenseTotals(t *testing.T) {
	agg := NewAggregator()
	txs := []models.Transaction{
		tx("2024-01-02", 30, models.KindExpense, "food"),
		tx("2024-01-02", 20, models.KindExpense, "transport"),
		tx("2024-01-01", 10, models.KindExpense, "food"),
		tx("2024-01-03", 500, models.KindIncome, "salary"),
	}

	got := agg.DailyExpenseTotals(txs)
	if len(got) != 2 {
		t.Fatalf("days = %d, want 2", len(got))
	}
	if !got[0].Date.Before(got[1].Date) {
		t.Fatalf("days not sorted: %v, %v", got[0].Date, got[1].Date)
	}
	second := got[1]
	if !almostEqual(second.Total, 50) || second.Count != 2 {
		t.Fatalf("day = %+v, want total 50 count 2", second)
	}
	if !almostEqual(second.ByCategory["food"], 30) || !almostEqual(second.ByCategory["transport"], 20) {
		t.Fatalf("categories = %v", second.ByCategory)
	}
}

func TestSavingsRate(t *testing.T) {
	agg := NewAggregator()
	txs := []models.Transaction{
		tx("2024-01-05", 1000, models.KindIncome, "salary"),
		tx("2024-01-20", 900, models.KindExpense, "rent"),
	}
	if got := agg.SavingsRate(txs); !almostEqual(got, 10) {
		t.Fatalf("savings rate = %v, want 10", got)
	}
	if got := agg.SavingsRate(nil); got != 0 {
		t.Fatalf("savings rate with no income = %v, want 0", got)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	agg := NewAggregator()
	txs := []models.Transaction{
		tx("2024-01-02", 300, models.KindExpense, "rent"),
		tx("2024-01-03", 150, models.KindExpense, "food"),
		tx("2024-01-04", 50, models.KindExpense, "transport"),
		tx("2024-01-05", 5000, models.KindIncome, "salary"),
	}

	got := agg.CategoryBreakdown(txs)
	if len(got) != 3 {
		t.Fatalf("categories = %d, want 3", len(got))
	}
	if got[0].Category != "rent" || !almostEqual(got[0].Percentage, 60) {
		t.Fatalf("top category = %+v, want rent at 60%%", got[0])
	}
	if got[2].Category != "transport" || !almostEqual(got[2].Percentage, 10) {
		t.Fatalf("last category = %+v, want transport at 10%%", got[2])
	}
}
