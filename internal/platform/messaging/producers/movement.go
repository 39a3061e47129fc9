// Package producers publishes ledger events to Kafka. The movement producer
// is the engine's notifier: it fans committed movements out to the archive
// topic without ever failing or delaying the originating operation.
package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/wallet-ledger-engine/internal/config"
	"github.com/wallet-ledger-engine/internal/engine"
)

type MovementProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// Creates a new movement producer and ensures the topic exists
func NewMovementProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*MovementProducer, error) {
	if cfg.MovementTopic == "" {
		return nil, fmt.Errorf("kafka movement topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for movement producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.MovementTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure movement topic %s exists: %w", cfg.MovementTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.MovementTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Using async for high throughput
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages asynchronously", "topic", cfg.MovementTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote messages asynchronously", "topic", cfg.MovementTopic, "count", len(messages))
			}
		},
	}

	return &MovementProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.MovementTopic,
	}, nil
}

// MovementCommitted publishes a committed movement keyed by its reference.
// Publish failures are logged and swallowed: the postgres log already holds
// the movement and the archive can be rebuilt from it.
func (p *MovementProducer) MovementCommitted(ctx context.Context, movement *engine.Movement) {
	if err := p.Publish(ctx, movement.Reference.String(), movement); err != nil {
		p.logger.Error("Failed to publish committed movement",
			"reference", movement.Reference.String(),
			"purpose", string(movement.Purpose),
			"error", err,
		)
	}
}

func (p *MovementProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message value for movement producer: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message via movement producer",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s via movement producer: %w", p.topic, err)
	}

	p.logger.Debug("Published message via movement producer",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *MovementProducer) Close() error {
	p.logger.Info("Closing movement Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
