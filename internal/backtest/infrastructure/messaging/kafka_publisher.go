// Package messaging provides a Kafka-backed implementation of
// domain.EventPublisher for a host process that wants RunCompletedEvent
// and InsightsGeneratedEvent archived or relayed to a UI. The core itself
// never imports this package.
package messaging

import (
	"context"
	"strconv"
	"time"

	"github.com/wyfcoding/optionwheel/internal/backtest/domain"
	"github.com/wyfcoding/optionwheel/pkg/mq"
)

const (
	runCompletedTopic     = "backtest.run_completed"
	insightsGeneratedTopic = "backtest.insights_generated"
)

// KafkaEventPublisher implements domain.EventPublisher over a
// mq.KafkaProducer.
type KafkaEventPublisher struct {
	producer *mq.KafkaProducer
	timeout  time.Duration
}

// NewKafkaEventPublisher wraps an already-constructed producer.
func NewKafkaEventPublisher(producer *mq.KafkaProducer) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, timeout: 5 * time.Second}
}

func (p *KafkaEventPublisher) PublishRunCompleted(ev domain.RunCompletedEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	key := strconv.FormatInt(ev.OccurredOn.UnixNano(), 10)
	return p.producer.SendMessage(ctx, runCompletedTopic, key, ev)
}

func (p *KafkaEventPublisher) PublishInsightsGenerated(ev domain.InsightsGeneratedEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	key := strconv.FormatInt(ev.OccurredOn.UnixNano(), 10)
	return p.producer.SendMessage(ctx, insightsGeneratedTopic, key, ev)
}
