package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"finsight/internal/domain/models"
	domrepo "finsight/internal/domain/repository"
	pkgkafka "finsight/pkg/kafka"
	applogger "finsight/pkg/logger"
)

// KafkaTransactionsHandler consumes transaction batches from Kafka and runs
// them through the same ingest path as the HTTP endpoint.
type KafkaTransactionsHandler struct {
	topic   string
	ingest  *IngestUseCase
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewKafkaTransactionsHandler(topic string, ingest *IngestUseCase, metrics domrepo.Metrics, l *applogger.Logger) *KafkaTransactionsHandler {
	return &KafkaTransactionsHandler{topic: topic, ingest: ingest, metrics: metrics, l: l}
}

func (h *KafkaTransactionsHandler) Topic() string { return h.topic }

// incoming message schema: {user_id, transactions: [{date, amount, kind, category}]}
func (h *KafkaTransactionsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		UserID       string                     `json:"user_id"`
		Transactions []models.TransactionRecord `json:"transactions"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.UserID == "" {
		h.metrics.RecordError("consumer_invalid")
		return fmt.Errorf("message missing user_id")
	}
	if len(m.Transactions) == 0 {
		return nil
	}

	result, err := h.ingest.Ingest(ctx, m.UserID, m.Transactions)
	if err != nil {
		h.metrics.RecordError("consumer_ingest")
		return err
	}
	if len(result.Rejected) > 0 {
		h.l.Warn("stream batch partially rejected",
			applogger.String("user_id", m.UserID),
			applogger.String("batch_id", result.BatchID),
			applogger.Int("rejected", len(result.Rejected)),
		)
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaTransactionsHandler)(nil)
