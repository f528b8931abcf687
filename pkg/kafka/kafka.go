// Package kafka publishes back-office events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"backoffice/pkg/logger"
)

// Config holds producer settings
type Config struct {
	Brokers    []string
	Topic      string
	MaxRetries int
}

// Producer writes JSON messages keyed by routing key
type Producer struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// NewProducer creates a producer. kafka-go connects lazily on first write.
func NewProducer(cfg Config, log *logger.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	attempts := cfg.MaxRetries
	if attempts <= 0 {
		attempts = 3
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            attempts,
		WriteBackoffMin:        100 * time.Millisecond,
		WriteBackoffMax:        time.Second,
	}

	log.Info("kafka producer created", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return &Producer{writer: writer, log: log}, nil
}

// Publish implements events.Bus. The routing key is the message key and an event-type header.
func (p *Producer) Publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	traceID := logger.GetTraceID(ctx)
	msg := kafka.Message{
		Key:   []byte(routingKey),
		Value: body,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(routingKey)},
			{Key: "x-trace-id", Value: []byte(traceID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	p.log.WithContext(ctx).Debug("message published", zap.String("routing_key", routingKey))
	return nil
}

// Close flushes and closes the writer
func (p *Producer) Close() error {
	return p.writer.Close()
}
