package repository

import (
	"context"
	"fmt"

	domrepo "finsight/internal/domain/repository"
)

// RehydrateLedger reloads every archived user into the in-memory ledger.
// Called once at startup when the archive backend is configured, so a
// restarted instance resumes with its full transaction history. Returns the
// number of users loaded.
func RehydrateLedger(ctx context.Context, ledger domrepo.LedgerStore, archive domrepo.Archive) (int, error) {
	ids, err := archive.UserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("rehydrate users: %w", err)
	}
	for _, id := range ids {
		txs, err := archive.LoadUser(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("rehydrate user %s: %w", id, err)
		}
		ledger.Append(id, txs)
	}
	return len(ids), nil
}
