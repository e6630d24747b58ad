package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finsight/internal/domain/models"
	domrepo "finsight/internal/domain/repository"
	"finsight/pkg/cache"
	applogger "finsight/pkg/logger"
	"finsight/pkg/queue"
	"finsight/pkg/util"
)

// RefreshJobType is the queue message type for cache-warming jobs.
const RefreshJobType = "refresh_insights"

// RefreshPayload is the refresh job payload.
type RefreshPayload struct {
	UserID string `json:"user_id"`
}

// BatchSink receives accepted batches for durable persistence. Both the
// direct processor and the buffering pipeline satisfy it.
type BatchSink interface {
	ProcessBatch(ctx context.Context, userID string, txs []models.Transaction) error
}

// IngestUseCase validates raw transaction records, appends the accepted ones
// to the ledger, and fans out to persistence, cache invalidation, and the
// refresh queue. Invalid records are rejected individually; a batch never
// fails as a whole because of bad rows.
type IngestUseCase struct {
	ledger  domrepo.LedgerStore
	sink    BatchSink
	cache   cache.Service
	jobs    queue.QueueService
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewIngestUseCase(
	ledger domrepo.LedgerStore,
	sink BatchSink,
	cacheSvc cache.Service,
	jobs queue.QueueService,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *IngestUseCase {
	return &IngestUseCase{
		ledger:  ledger,
		sink:    sink,
		cache:   cacheSvc,
		jobs:    jobs,
		metrics: metrics,
		l:       l,
	}
}

// Ingest processes one batch of raw records for a user.
func (uc *IngestUseCase) Ingest(ctx context.Context, userID string, records []models.TransactionRecord) (*models.IngestResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id required")
	}

	result := &models.IngestResult{
		BatchID: uuid.NewString(),
		UserID:  userID,
	}

	accepted := make([]models.Transaction, 0, len(records))
	kindCounts := make(map[models.Kind]int, 2)
	for i, rec := range records {
		tx, reason := normalizeRecord(rec)
		if reason != "" {
			result.Rejected = append(result.Rejected, models.RejectedRecord{Index: i, Reason: reason})
			continue
		}
		accepted = append(accepted, tx)
		kindCounts[tx.Kind]++
	}
	result.Accepted = len(accepted)

	if len(result.Rejected) > 0 {
		uc.metrics.RecordRejected(len(result.Rejected))
	}
	if len(accepted) == 0 {
		return result, nil
	}

	uc.ledger.Append(userID, accepted)
	for kind, n := range kindCounts {
		uc.metrics.RecordIngested(string(kind), n)
	}

	// Persistence is best-effort here: the ledger already accepted the batch
	// and the pipeline buffers failed writes for retry.
	if uc.sink != nil {
		if err := uc.sink.ProcessBatch(ctx, userID, accepted); err != nil {
			uc.l.Warn("batch persistence deferred",
				applogger.String("user_id", userID),
				applogger.String("batch_id", result.BatchID),
				applogger.Error(err),
			)
		}
	}

	uc.invalidateInsights(ctx, userID)
	uc.enqueueRefresh(ctx, userID)

	uc.l.Info("batch ingested",
		applogger.String("user_id", userID),
		applogger.String("batch_id", result.BatchID),
		applogger.Int("accepted", result.Accepted),
		applogger.Int("rejected", len(result.Rejected)),
	)
	return result, nil
}

// normalizeRecord validates one raw record. An empty reason means accepted.
func normalizeRecord(rec models.TransactionRecord) (models.Transaction, string) {
	date, ok := util.ParseTime(rec.Date)
	if !ok {
		return models.Transaction{}, fmt.Sprintf("invalid date: %q", rec.Date)
	}

	amount, err := decimal.NewFromString(rec.Amount)
	if err != nil {
		return models.Transaction{}, fmt.Sprintf("invalid amount: %q", rec.Amount)
	}
	if amount.Sign() < 0 {
		return models.Transaction{}, fmt.Sprintf("amount must not be negative, got %s", rec.Amount)
	}

	kind := models.Kind(rec.Kind)
	if !kind.IsValid() {
		return models.Transaction{}, fmt.Sprintf("invalid kind: %q", rec.Kind)
	}

	category := rec.Category
	if category == "" {
		category = "uncategorized"
	}

	return models.Transaction{
		Date:     date.UTC(),
		Amount:   amount,
		Kind:     kind,
		Category: category,
	}, ""
}

func (uc *IngestUseCase) invalidateInsights(ctx context.Context, userID string) {
	if uc.cache == nil {
		return
	}
	pattern := cache.BuildPattern(cache.GenerateKey("insights", userID))
	if err := uc.cache.DeleteByPattern(ctx, pattern); err != nil {
		uc.l.Warn("insight cache invalidation failed",
			applogger.String("user_id", userID),
			applogger.Error(err),
		)
	}
}

func (uc *IngestUseCase) enqueueRefresh(ctx context.Context, userID string) {
	if uc.jobs == nil {
		return
	}
	if err := uc.jobs.PublishMessage(ctx, RefreshJobType, RefreshPayload{UserID: userID}); err != nil {
		uc.l.Warn("refresh job enqueue failed",
			applogger.String("user_id", userID),
			applogger.Error(err),
		)
	}
}
