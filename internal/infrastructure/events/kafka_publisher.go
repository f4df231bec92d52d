// Package events publishes sync run lifecycle events to Kafka
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"
)

// SchemaVersion is the current run event schema version
const SchemaVersion = "1.0"

// MessageWriter is the subset of *kafka.Writer the publisher needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig holds Kafka producer configuration
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	Compression  string
}

// KafkaPublisher writes run events keyed by shop domain, so one shop's
// events stay ordered within a partition
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
	logger zerolog.Logger
}

var _ ports.RunEventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher backed by a kafka.Writer
func NewKafkaPublisher(cfg KafkaConfig, logger zerolog.Logger) *KafkaPublisher {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 50 * time.Millisecond
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           batchTimeout,
		RequiredAcks:           kafka.RequireOne,
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}
	return NewKafkaPublisherWithWriter(writer, cfg.Topic, logger)
}

// NewKafkaPublisherWithWriter creates a publisher over any MessageWriter.
// The topic is set on each message, so a writer with its own Topic must not be used.
func NewKafkaPublisherWithWriter(writer MessageWriter, topic string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic, logger: logger}
}

// PublishRunEvent publishes one run event
func (p *KafkaPublisher) PublishRunEvent(ctx context.Context, event domain.RunEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal run event: %w", err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.ShopDomain),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "entity_type", Value: []byte(event.EntityType)},
			{Key: "run_id", Value: []byte(strconv.FormatInt(event.RunID, 10))},
			{Key: "schema_version", Value: []byte(SchemaVersion)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error().Err(err).
			Str("shop", event.ShopDomain).
			Int64("runId", event.RunID).
			Msg("Failed to publish run event")
		return fmt.Errorf("failed to publish run event: %w", err)
	}

	p.logger.Debug().
		Str("type", string(event.Type)).
		Str("shop", event.ShopDomain).
		Int64("runId", event.RunID).
		Msg("Published run event")
	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
