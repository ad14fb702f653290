package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// AuditConsumer listens to the domain event queues and appends one line per
// event to an audit log file.
type AuditConsumer struct {
	url  string
	path string
	log  zerolog.Logger

	mu sync.Mutex // serialises file appends
}

func NewAuditConsumer(url, path string, log zerolog.Logger) *AuditConsumer {
	return &AuditConsumer{url: url, path: path, log: log.With().Str("component", "audit-consumer").Logger()}
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with exponential backoff (capped at 30s).  It returns
// ctx.Err() on shutdown.
func (c *AuditConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn().Err(err).Msg("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *AuditConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("set QoS failed")
	}

	users, err := c.subscribe(ch, UserRegisteredQueue)
	if err != nil {
		return err
	}
	prefs, err := c.subscribe(ch, PreferenceUpdatedQueue)
	if err != nil {
		return err
	}

	for {
		var d amqp.Delivery
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-users:
		case d, ok = <-prefs:
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := c.handleMessage(d.RoutingKey, d.Body); err != nil {
			c.log.Error().Err(err).Str("queue", d.RoutingKey).Msg("handle message failed")
			_ = d.Nack(false, false) // do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
}

func (c *AuditConsumer) subscribe(ch *amqp.Channel, queue string) (<-chan amqp.Delivery, error) {
	if err := declare(ch, queue); err != nil {
		return nil, fmt.Errorf("queue declare %s: %w", queue, err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("queue consume %s: %w", queue, err)
	}
	return msgs, nil
}

// handleMessage formats the event on queue and appends it to the audit log.
func (c *AuditConsumer) handleMessage(queue string, body []byte) error {
	var line string
	switch queue {
	case UserRegisteredQueue:
		var ev UserRegisteredEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		line = fmt.Sprintf("[%s] User registered | event_id=%s | user_id=%d | email=%q | locale=%s\n",
			ev.OccurredAt, ev.EventID, ev.UserID, ev.Email, ev.Locale)
	case PreferenceUpdatedQueue:
		var ev PreferenceUpdatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		line = fmt.Sprintf("[%s] Preference updated | event_id=%s | user_id=%d | type=%s | enabled=%t\n",
			ev.OccurredAt, ev.EventID, ev.UserID, ev.NotificationTypeKey, ev.Enabled)
	default:
		return fmt.Errorf("unexpected queue %q", queue)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// sleep waits for d or until ctx is done; it reports whether d elapsed.
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
