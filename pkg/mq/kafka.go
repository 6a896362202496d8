// Package mq wraps github.com/segmentio/kafka-go behind a small
// JSON-message producer, used to publish backtest domain events to a
// downstream archival or notification consumer.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/wyfcoding/optionwheel/pkg/logger"
)

// ProducerConfig configures a KafkaProducer.
type ProducerConfig struct {
	Brokers      []string
	MaxRetries   int
	RetryBackoff int // milliseconds
}

// KafkaProducer publishes JSON-encoded messages to a topic.
type KafkaProducer struct {
	writer *kafka.Writer
	config ProducerConfig
}

// NewProducer builds a producer backed by kafka-go's batching writer.
func NewProducer(cfg ProducerConfig) (*KafkaProducer, error) {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		AllowAutoTopicCreation: true,
		Compression:            kafka.Gzip,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            cfg.MaxRetries,
		WriteBackoffMin:        time.Duration(cfg.RetryBackoff) * time.Millisecond,
		WriteBackoffMax:        time.Duration(cfg.RetryBackoff*10) * time.Millisecond,
	}

	logger.Info(context.Background(), "kafka producer created", "brokers", cfg.Brokers)
	return &KafkaProducer{writer: writer, config: cfg}, nil
}

// SendMessage marshals value as JSON and publishes it to topic under key.
func (kp *KafkaProducer) SendMessage(ctx context.Context, topic, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	msg := kafka.Message{Topic: topic, Key: []byte(key), Value: data}
	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error(ctx, "failed to send kafka message", "topic", topic, "key", key, "error", err)
		return err
	}

	logger.Debug(ctx, "kafka message sent", "topic", topic, "key", key)
	return nil
}

// Close flushes and closes the underlying writer.
func (kp *KafkaProducer) Close() error {
	return kp.writer.Close()
}
