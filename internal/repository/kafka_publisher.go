package repository

import (
	"context"

	"finsight/internal/domain/models"
	domrepo "finsight/internal/domain/repository"
	pkgkafka "finsight/pkg/kafka"
)

// KafkaRecommendationPublisher pushes generated recommendations onto the
// downstream feed topic. Messages are keyed by user id so one user's feed
// stays ordered within a partition.
type KafkaRecommendationPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaRecommendationPublisher(producer *pkgkafka.Producer, topic string) *KafkaRecommendationPublisher {
	return &KafkaRecommendationPublisher{producer: producer, topic: topic}
}

func (p *KafkaRecommendationPublisher) PublishRecommendations(ctx context.Context, userID string, recs []models.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(recs))
	for i, rec := range recs {
		msgs[i] = pkgkafka.Message{Key: []byte(userID), Value: rec}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaRecommendationPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.Publisher = (*KafkaRecommendationPublisher)(nil)
