package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher writes events to RabbitMQ. Each publish dials a fresh
// connection; notification volume is a handful of messages per minute,
// and a short-lived connection keeps failure handling trivial. Errors
// are logged and returned so callers can ignore them without
// interrupting the guest-facing flow.
type Publisher struct {
	url string
	log *zap.Logger
}

// NewPublisher returns a publisher for the given AMQP URL. An empty
// URL yields a nil publisher, which callers treat as "no broker".
func NewPublisher(url string, log *zap.Logger) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url, log: log}
}

// Publish marshals the payload and sends it to the named durable
// queue with persistent delivery.
func (p *Publisher) Publish(ctx context.Context, queueName string, payload interface{}) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Error("rabbitmq dial failed", zap.Error(err))
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error("rabbitmq channel open failed", zap.Error(err))
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		p.log.Error("rabbitmq queue declare failed", zap.String("queue", queueName), zap.Error(err))
		return fmt.Errorf("queue declare: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.log.Error("rabbitmq publish failed", zap.String("queue", queueName), zap.Error(err))
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
