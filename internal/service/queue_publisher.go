package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/volunteer-credits/internal/queue"
)

// EventPublisher emits ledger events after a balance change commits.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.LedgerEvent) error
}

// NopPublisher drops every event.  It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.LedgerEvent) error { return nil }

// RabbitPublisher publishes events to a durable RabbitMQ queue through the
// default exchange.  Each call dials its own connection, which keeps the
// publisher stateless at the cost of a handshake per event.
type RabbitPublisher struct {
	url   string
	queue string
	log   logrus.FieldLogger
}

func NewRabbitPublisher(url, queueName string, log logrus.FieldLogger) *RabbitPublisher {
	return &RabbitPublisher{url: url, queue: queueName, log: log}
}

// Publish marshals ev and sends it as a persistent message.  Errors are
// logged and returned so the caller can choose to ignore them.
func (p *RabbitPublisher) Publish(ctx context.Context, ev queue.LedgerEvent) error {
	log := p.log.WithFields(logrus.Fields{"queue": p.queue, "type": ev.Type, "user_id": ev.UserID})

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
	if err != nil {
		log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}
