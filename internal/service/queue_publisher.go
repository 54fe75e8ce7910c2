package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/Diyorbek0204/dern-support/internal/queue"
)

// AMQPPublisher publishes workflow events to RabbitMQ. Each publish opens
// its own connection; ticket traffic is human-paced so there is no pooled
// channel to keep healthy.
type AMQPPublisher struct {
	URL         string
	DialTimeout time.Duration
}

// NewAMQPPublisher returns a publisher for url with a 2s dial timeout.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{URL: url, DialTimeout: 2 * time.Second}
}

// PublishTicketStatusChanged publishes ev to the ticket.status_changed
// queue. Messages are marked as persistent.
func (p *AMQPPublisher) PublishTicketStatusChanged(ctx context.Context, ev q.TicketStatusChanged) error {
	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.DialTimeout)})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.TicketStatusQueue, // name
		true,                // durable
		false,               // autoDelete
		false,               // exclusive
		false,               // noWait
		nil,                 // args
	); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",                  // default exchange
		q.TicketStatusQueue, // routing key = queue name
		false,               // mandatory
		false,               // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishTicketStatusChanged(context.Context, q.TicketStatusChanged) error {
	return nil
}
