// Package queue contains the background consumer that listens to the
// ticket.status_changed queue and appends an audit line per event to a log
// file.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer drains TicketStatusQueue into LogPath.
type Consumer struct {
	URL     string
	LogPath string
	Logger  *slog.Logger
}

// NewConsumer returns a consumer writing to logs/tickets.log.
func NewConsumer(url string, logger *slog.Logger) *Consumer {
	return &Consumer{URL: url, LogPath: filepath.Join("logs", "tickets.log"), Logger: logger}
}

// Run connects to RabbitMQ, declares the durable queue and consumes until
// ctx is cancelled. Broken connections are redialled with exponential
// backoff capped at 30s; malformed messages are rejected without requeue.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Logger.Warn("ticket-consumer: dial failed", "err", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Logger.Warn("ticket-consumer: consume loop ended, reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Logger.Warn("ticket-consumer: set QoS failed", "err", err)
	}
	if _, err := ch.QueueDeclare(TicketStatusQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(TicketStatusQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.HandleMessage(d.Body); err != nil {
				c.Logger.Error("ticket-consumer: handle message failed", "err", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one event and appends it to the audit log.
func (c *Consumer) HandleMessage(body []byte) error {
	var ev TicketStatusChanged
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.TicketID == "" {
		return errors.New("event without ticket_id")
	}
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single human-friendly log line.
func FormatLine(ev TicketStatusChanged) string {
	from := ev.FromStatus
	if from == "" {
		from = "-"
	}
	return fmt.Sprintf("[%s] Ticket status changed | ticket_id=%s | user_id=%s | actor=%s(%s) | %s -> %s\n",
		ev.ChangedAt, ev.TicketID, ev.UserID, ev.ActorID, ev.ActorRole, from, ev.ToStatus)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
