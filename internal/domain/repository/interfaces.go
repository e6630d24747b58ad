package repository

import (
	"context"

	"finsight/internal/domain/models"
)

// LedgerStore is the single source of truth for per-user transactions.
// Unknown users are a normal case: Transactions returns an empty snapshot,
// never an error.
type LedgerStore interface {
	Append(userID string, txs []models.Transaction)
	Transactions(userID string) ([]models.Transaction, bool)
	UserIDs() []string
	Count(userID string) int
}

// Archive persists transactions to the analytical store. Write-behind only;
// no analysis reads go through it.
type Archive interface {
	StoreBatch(ctx context.Context, userID string, txs []models.Transaction) error
	LoadUser(ctx context.Context, userID string) ([]models.Transaction, error)
	UserIDs(ctx context.Context) ([]string, error)
	Health(ctx context.Context) error
	Close() error
}

// Publisher pushes generated recommendations onto the downstream feed.
type Publisher interface {
	PublishRecommendations(ctx context.Context, userID string, recs []models.Recommendation) error
	Close() error
}

// Metrics records operational metrics for ingestion and analysis.
type Metrics interface {
	RecordIngested(kind string, n int)
	RecordRejected(n int)
	RecordAnalysis(stage string, seconds float64)
	RecordError(kind string)
	RecordRiskLevel(level string)
}
