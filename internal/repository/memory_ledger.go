package repository

import (
	"sort"
	"sync"

	"finsight/internal/domain/models"
	domrepo "finsight/internal/domain/repository"
)

// MemoryLedger is the in-process transaction store, the single source of
// truth for the analysis pipeline. Entries are append-only and immutable;
// every other entity in the system is a projection over a snapshot of this
// store.
type MemoryLedger struct {
	mu    sync.RWMutex
	users map[string][]models.Transaction
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{users: make(map[string][]models.Transaction)}
}

// Append adds validated transactions to the user's sequence, creating the
// sequence on first ingestion.
func (l *MemoryLedger) Append(userID string, txs []models.Transaction) {
	if len(txs) == 0 {
		return
	}
	l.mu.Lock()
	l.users[userID] = append(l.users[userID], txs...)
	l.mu.Unlock()
}

// Transactions returns a date-sorted snapshot of the user's ledger. An
// unknown user is a normal case: empty snapshot, ok=false, no error.
func (l *MemoryLedger) Transactions(userID string) ([]models.Transaction, bool) {
	l.mu.RLock()
	txs, ok := l.users[userID]
	out := make([]models.Transaction, len(txs))
	copy(out, txs)
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, ok
}

// UserIDs returns all known user ids in unspecified order.
func (l *MemoryLedger) UserIDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.users))
	for id := range l.users {
		out = append(out, id)
	}
	return out
}

// Count returns the number of transactions held for the user.
func (l *MemoryLedger) Count(userID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.users[userID])
}

var _ domrepo.LedgerStore = (*MemoryLedger)(nil)
