package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"equiprent-backend/internal/logger"
)

// Publisher delivers an event payload to a named queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, payload any) error
}

// NoopPublisher drops every event. Used when no broker is configured and in
// tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, queue string, payload any) error {
	return nil
}

// AMQPPublisher publishes JSON messages to RabbitMQ. Each publish dials a
// fresh connection, which keeps the publisher stateless at the cost of
// per-message latency; event volume here is a handful per booking.
type AMQPPublisher struct {
	url string
}

func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url}
}

func (p *AMQPPublisher) Publish(ctx context.Context, queue string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		logger.ErrorContext(ctx, "failed to connect to broker", "queue", queue, "error", err)
		return fmt.Errorf("connect to broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}

	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to publish event", "queue", queue, "error", err)
		return fmt.Errorf("publish to %s: %w", queue, err)
	}

	logger.Debug("event published", "queue", queue)
	return nil
}
