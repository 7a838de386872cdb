package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"go-shop/pkg/logger"
)

// Publisher writes JSON messages to a single topic
type Publisher struct {
	writer *kafka.Writer
	topic  string
	log    *logger.Logger
}

// NewPublisher creates a publisher for topic on brokers. Messages with the
// same key land on the same partition.
func NewPublisher(brokers []string, topic string, log *logger.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
		topic: topic,
		log:   log,
	}, nil
}

// Publish writes message under key with the trace id as a header
func (p *Publisher) Publish(ctx context.Context, key string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	traceID := logger.GetTraceID(ctx)
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: body,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "x-trace-id", Value: []byte(traceID)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	p.log.WithContext(ctx).Debug("message published",
		zap.String("topic", p.topic),
		zap.String("key", key),
	)
	return nil
}

// Close flushes pending writes
func (p *Publisher) Close() error {
	return p.writer.Close()
}
