package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/domain/models"
)

func entry(date string, amount float64) models.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return models.Transaction{
		Date:     d,
		Amount:   decimal.NewFromFloat(amount),
		Kind:     models.KindExpense,
		Category: "food",
	}
}

func TestLedgerUnknownUser(t *testing.T) {
	l := NewMemoryLedger()
	txs, ok := l.Transactions("missing")
	if ok {
		t.Fatalf("expected ok=false for unknown user")
	}
	if len(txs) != 0 {
		t.Fatalf("snapshot = %d entries, want 0", len(txs))
	}
	if l.Count("missing") != 0 {
		t.Fatalf("count = %d, want 0", l.Count("missing"))
	}
}

func TestLedgerSnapshotSorted(t *testing.T) {
	l := NewMemoryLedger()
	l.Append("u1", []models.Transaction{entry("2024-03-01", 30)})
	l.Append("u1", []models.Transaction{entry("2024-01-01", 10), entry("2024-02-01", 20)})

	txs, ok := l.Transactions("u1")
	if !ok || len(txs) != 3 {
		t.Fatalf("snapshot = %d entries ok=%v, want 3/true", len(txs), ok)
	}
	for i := 1; i < len(txs); i++ {
		if txs[i].Date.Before(txs[i-1].Date) {
			t.Fatalf("snapshot not sorted at %d: %v", i, txs)
		}
	}
}

func TestLedgerSnapshotIsCopy(t *testing.T) {
	l := NewMemoryLedger()
	l.Append("u1", []models.Transaction{entry("2024-01-01", 10)})

	txs, _ := l.Transactions("u1")
	txs[0].Category = "mutated"

	again, _ := l.Transactions("u1")
	if again[0].Category != "food" {
		t.Fatalf("snapshot mutation leaked into the ledger")
	}
}

func TestLedgerUserIDs(t *testing.T) {
	l := NewMemoryLedger()
	l.Append("a", []models.Transaction{entry("2024-01-01", 1)})
	l.Append("b", []models.Transaction{entry("2024-01-01", 2)})
	l.Append("a", []models.Transaction{entry("2024-01-02", 3)})

	ids := l.UserIDs()
	if len(ids) != 2 {
		t.Fatalf("user ids = %v, want 2 entries", ids)
	}
}
