package usecase

import (
	"context"
	"fmt"
	"time"

	"finsight/internal/domain/models"
	domrepo "finsight/internal/domain/repository"
	pkgkafka "finsight/pkg/kafka"
)

// Backend names accepted by the processor.
const (
	BackendKafka      = "kafka"
	BackendClickHouse = "clickhouse"
	BackendNone       = "none"
)

// BatchProcessor routes accepted transaction batches to the configured
// persistence backend. The in-memory ledger is always written first by the
// ingest use case; this stage is the durable mirror.
type BatchProcessor struct {
	archive      domrepo.Archive
	producer     *pkgkafka.Producer
	topic        string
	metrics      domrepo.Metrics
	backend      string
	batchSize    int
	batchTimeout time.Duration
}

// NewBatchProcessor creates a processor for the given backend. batchSize
// splits oversized batches before persisting (0 disables splitting);
// batchTimeout bounds each persistence call (0 means no deadline).
func NewBatchProcessor(
	archive domrepo.Archive,
	producer *pkgkafka.Producer,
	topic string,
	metrics domrepo.Metrics,
	backend string,
	batchSize int,
	batchTimeout time.Duration,
) *BatchProcessor {
	return &BatchProcessor{
		archive:      archive,
		producer:     producer,
		topic:        topic,
		metrics:      metrics,
		backend:      backend,
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
	}
}

// transactionsMessage is the wire shape on the transactions topic. It is the
// same schema KafkaTransactionsHandler consumes, so a mirrored batch can be
// replayed through the ingest path.
type transactionsMessage struct {
	UserID       string                `json:"user_id"`
	Transactions []archivedTransaction `json:"transactions"`
}

type archivedTransaction struct {
	Date     string `json:"date"`
	Amount   string `json:"amount"`
	Kind     string `json:"kind"`
	Category string `json:"category"`
}

// ProcessBatch persists one accepted batch through the configured backend,
// splitting it into batchSize chunks.
func (p *BatchProcessor) ProcessBatch(ctx context.Context, userID string, txs []models.Transaction) error {
	if len(txs) == 0 || p.backend == BackendNone {
		return nil
	}

	start := time.Now()
	for _, chunk := range p.split(txs) {
		if err := p.persist(ctx, userID, chunk); err != nil {
			p.metrics.RecordError("process_batch")
			return fmt.Errorf("process batch: %w", err)
		}
	}
	p.metrics.RecordAnalysis("persist_batch", time.Since(start).Seconds())
	return nil
}

func (p *BatchProcessor) split(txs []models.Transaction) [][]models.Transaction {
	if p.batchSize <= 0 || len(txs) <= p.batchSize {
		return [][]models.Transaction{txs}
	}
	chunks := make([][]models.Transaction, 0, len(txs)/p.batchSize+1)
	for start := 0; start < len(txs); start += p.batchSize {
		end := start + p.batchSize
		if end > len(txs) {
			end = len(txs)
		}
		chunks = append(chunks, txs[start:end])
	}
	return chunks
}

func (p *BatchProcessor) persist(ctx context.Context, userID string, txs []models.Transaction) error {
	if p.batchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.batchTimeout)
		defer cancel()
	}

	switch p.backend {
	case BackendKafka:
		msg := transactionsMessage{
			UserID:       userID,
			Transactions: make([]archivedTransaction, len(txs)),
		}
		for i, tx := range txs {
			msg.Transactions[i] = archivedTransaction{
				Date:     tx.Date.UTC().Format(time.RFC3339),
				Amount:   tx.Amount.String(),
				Kind:     string(tx.Kind),
				Category: tx.Category,
			}
		}
		return p.producer.PublishBatch(ctx, p.topic, []pkgkafka.Message{{
			Key:   []byte(userID),
			Value: msg,
		}})
	case BackendClickHouse:
		return p.archive.StoreBatch(ctx, userID, txs)
	default:
		return fmt.Errorf("unknown backend: %s", p.backend)
	}
}

// Close closes underlying resources if available.
func (p *BatchProcessor) Close() {
	if p.producer != nil {
		_ = p.producer.Close()
	}
	if p.archive != nil {
		_ = p.archive.Close()
	}
}
