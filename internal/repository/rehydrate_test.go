package repository

import (
	"context"
	"errors"
	"testing"

	"finsight/internal/domain/models"
)

type stubArchive struct {
	users   map[string][]models.Transaction
	listErr error
}

func (a *stubArchive) StoreBatch(ctx context.Context, userID string, txs []models.Transaction) error {
	return nil
}

func (a *stubArchive) LoadUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	return a.users[userID], nil
}

func (a *stubArchive) UserIDs(ctx context.Context) ([]string, error) {
	if a.listErr != nil {
		return nil, a.listErr
	}
	ids := make([]string, 0, len(a.users))
	for id := range a.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (a *stubArchive) Health(ctx context.Context) error { return nil }
func (a *stubArchive) Close() error                     { return nil }

func TestRehydrateLedger(t *testing.T) {
	archive := &stubArchive{users: map[string][]models.Transaction{
		"u1": {entry("2024-01-05", 100), entry("2024-01-06", 40)},
		"u2": {entry("2024-02-01", 250)},
	}}
	ledger := NewMemoryLedger()

	n, err := RehydrateLedger(context.Background(), ledger, archive)
	if err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	if n != 2 {
		t.Fatalf("users loaded = %d, want 2", n)
	}
	if ledger.Count("u1") != 2 || ledger.Count("u2") != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", ledger.Count("u1"), ledger.Count("u2"))
	}
}

func TestRehydrateLedgerArchiveError(t *testing.T) {
	archive := &stubArchive{listErr: errors.New("connect refused")}
	ledger := NewMemoryLedger()

	if _, err := RehydrateLedger(context.Background(), ledger, archive); err == nil {
		t.Fatalf("expected error when archive listing fails")
	}
	if len(ledger.UserIDs()) != 0 {
		t.Fatalf("ledger should stay empty on failure")
	}
}
