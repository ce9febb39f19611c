// Package kafka publishes quality-check results to a Kafka topic.
//
// Delivery is best effort by policy: the pipeline records and logs the
// result either way, and a publish failure must never fail the run.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/gsod-etl-service/internal/domain"
)

// Publisher produces quality results to the quality events topic.
// It implements pipeline.QualityPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the quality events topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes and produces one quality result.
func (p *Publisher) Publish(ctx context.Context, result domain.QualityResult) error {
	msg, err := serializeToMessage(result)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a QualityResult into a Kafka message keyed by
// its context label so per-job results stay in one partition.
func serializeToMessage(result domain.QualityResult) (kafkago.Message, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize quality result: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(result.Context),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "rule", Value: []byte(result.Rule)},
			{Key: "evaluated_at", Value: []byte(result.EvaluatedAt.Format(time.RFC3339))},
		},
	}, nil
}
