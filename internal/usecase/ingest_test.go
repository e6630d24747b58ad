package usecase

import (
	"context"
	"strings"
	"testing"

	"finsight/internal/domain/models"
	"finsight/internal/repository"
)

func TestIngestRequiresUserID(t *testing.T) {
	uc := NewIngestUseCase(repository.NewMemoryLedger(), nil, nil, nil, newFakeMetrics(), newTestLogger(t))
	if _, err := uc.Ingest(context.Background(), "", nil); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}

func TestIngestRejectsPerRecord(t *testing.T) {
	ledger := repository.NewMemoryLedger()
	m := newFakeMetrics()
	uc := NewIngestUseCase(ledger, nil, nil, nil, m, newTestLogger(t))

	result, err := uc.Ingest(context.Background(), "u1", []models.TransactionRecord{
		record("2024-01-05", "1000", "income", "salary"),
		record("not-a-date", "50", "expense", "food"),
		record("2024-01-06", "abc", "expense", "food"),
		record("2024-01-07", "-10", "expense", "food"),
		record("2024-01-08", "25", "transfer", "food"),
		record("2024-01-09", "40", "expense", ""),
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if result.Accepted != 2 {
		t.Fatalf("accepted = %d, want 2", result.Accepted)
	}
	if len(result.Rejected) != 4 {
		t.Fatalf("rejected = %d, want 4", len(result.Rejected))
	}
	wantReasons := map[int]string{
		1: "invalid date",
		2: "invalid amount",
		3: "must not be negative",
		4: "invalid kind",
	}
	for _, rej := range result.Rejected {
		want, ok := wantReasons[rej.Index]
		if !ok {
			t.Fatalf("unexpected rejected index %d", rej.Index)
		}
		if !strings.Contains(rej.Reason, want) {
			t.Fatalf("reason %q does not mention %q", rej.Reason, want)
		}
	}

	if ledger.Count("u1") != 2 {
		t.Fatalf("ledger count = %d, want 2", ledger.Count("u1"))
	}
	txs, _ := ledger.Transactions("u1")
	if txs[1].Category != "uncategorized" {
		t.Fatalf("category = %q, want uncategorized", txs[1].Category)
	}

	if m.ingested["income"] != 1 || m.ingested["expense"] != 1 {
		t.Fatalf("ingested metrics = %v", m.ingested)
	}
	if m.rejected != 4 {
		t.Fatalf("rejected metric = %d, want 4", m.rejected)
	}
}

func TestIngestAcceptsZeroAmount(t *testing.T) {
	ledger := repository.NewMemoryLedger()
	uc := NewIngestUseCase(ledger, nil, nil, nil, newFakeMetrics(), newTestLogger(t))

	result, err := uc.Ingest(context.Background(), "u1", []models.TransactionRecord{
		record("2024-01-02", "0", "expense", "fees"),
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.Accepted != 1 || len(result.Rejected) != 0 {
		t.Fatalf("result = %+v, want zero-amount record accepted", result)
	}
	txs, _ := ledger.Transactions("u1")
	if !txs[0].Amount.IsZero() {
		t.Fatalf("amount = %s, want 0", txs[0].Amount)
	}
}

func TestIngestAllRejected(t *testing.T) {
	ledger := repository.NewMemoryLedger()
	uc := NewIngestUseCase(ledger, nil, nil, nil, newFakeMetrics(), newTestLogger(t))

	result, err := uc.Ingest(context.Background(), "u1", []models.TransactionRecord{
		record("bad", "bad", "bad", ""),
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.Accepted != 0 || len(result.Rejected) != 1 {
		t.Fatalf("result = %+v", result)
	}
	if ledger.Count("u1") != 0 {
		t.Fatalf("ledger count = %d, want 0", ledger.Count("u1"))
	}
}

func TestIngestSinkFailureIsBestEffort(t *testing.T) {
	ledger := repository.NewMemoryLedger()
	sink := &failingSink{}
	uc := NewIngestUseCase(ledger, sink, nil, nil, newFakeMetrics(), newTestLogger(t))

	result, err := uc.Ingest(context.Background(), "u1", []models.TransactionRecord{
		record("2024-01-05", "1000", "income", "salary"),
	})
	if err != nil {
		t.Fatalf("ingest must not fail on sink errors: %v", err)
	}
	if result.Accepted != 1 {
		t.Fatalf("accepted = %d, want 1", result.Accepted)
	}
	if sink.calls != 1 {
		t.Fatalf("sink calls = %d, want 1", sink.calls)
	}
	if ledger.Count("u1") != 1 {
		t.Fatalf("ledger count = %d, want 1", ledger.Count("u1"))
	}
}
