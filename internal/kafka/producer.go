package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"ms-verify/internal/logger"
	"ms-verify/internal/models"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	Writer messageWriter
	Topic  string
}

// NewProducer returns an async producer: WriteMessages only enqueues, and
// delivery failures are reported through the logger.
func NewProducer(brokers []string, topic string, logger *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("KAFKA", fmt.Sprintf("Failed to deliver %d message(s) to %s: %v", len(messages), topic, err))
			}
		},
	}
	return &Producer{Writer: writer, Topic: topic}
}

// PublishVerification streams a completed wallet check, keyed by wallet so
// a wallet's history stays on one partition.
func (p *Producer) PublishVerification(ctx context.Context, event models.VerificationEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal verification event: %w", err)
	}

	return p.Writer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(event.WalletAddress),
			Value: msgBytes,
			Time:  event.CheckedAt,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
