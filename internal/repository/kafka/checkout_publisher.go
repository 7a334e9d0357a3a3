package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"hortifood/domain"
	"time"

	"github.com/segmentio/kafka-go"
)

type CheckoutPublisher struct {
	writer *kafka.Writer
}

func NewCheckoutPublisher(brokers []string, topic string) *CheckoutPublisher {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	})
	w.AllowAutoTopicCreation = true

	return &CheckoutPublisher{writer: w}
}

func (p *CheckoutPublisher) Topic() string {
	return p.writer.Topic
}

// PublishCheckout keys the message by user so one user's checkouts stay on
// one partition.
func (p *CheckoutPublisher) PublishCheckout(ctx context.Context, event domain.CheckoutEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID.String()),
		Value: payload,
		Time:  event.CheckedOutAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("cart.checked_out")},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish checkout event: %w", err)
	}

	return nil
}

func (p *CheckoutPublisher) Close() error {
	return p.writer.Close()
}
