package repository

import (
	"context"
	"fmt"

	"InsightHub/internal/domain/models"
	drepo "InsightHub/internal/domain/repository"
	pkgkafka "InsightHub/pkg/kafka"
)

// KafkaEventPublisher emits generated insights to the event stream, keyed by
// fingerprint so replays of one request land on the same partition.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaEventPublisher wires the publisher over a shared producer.
func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) *KafkaEventPublisher {
	if topic == "" {
		topic = "insights.generated"
	}
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) PublishInsight(ctx context.Context, ev *models.InsightEvent) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(ev.Fingerprint), ev); err != nil {
		return fmt.Errorf("publish insight event: %w", err)
	}
	return nil
}

// PublishMessage lets the publisher double as a sink for aggregated log
// batches (logger.Publisher).
func (p *KafkaEventPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}

var _ drepo.EventPublisher = (*KafkaEventPublisher)(nil)
