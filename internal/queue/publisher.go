package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher sends domain events to RabbitMQ.  A connection is dialed per
// publish; event volume is one message per registration or preference write.
// Errors are logged and returned so callers can choose to ignore them.
type Publisher struct {
	url string
	log zerolog.Logger
}

func NewPublisher(url string, log zerolog.Logger) *Publisher {
	return &Publisher{url: url, log: log.With().Str("component", "publisher").Logger()}
}

func (p *Publisher) PublishUserRegistered(ctx context.Context, ev UserRegisteredEvent) error {
	return p.publish(ctx, UserRegisteredQueue, ev.EventID, ev)
}

func (p *Publisher) PublishPreferenceUpdated(ctx context.Context, ev PreferenceUpdatedEvent) error {
	return p.publish(ctx, PreferenceUpdatedQueue, ev.EventID, ev)
}

func (p *Publisher) publish(ctx context.Context, queue, id string, event any) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn().Err(err).Str("queue", queue).Msg("dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn().Err(err).Str("queue", queue).Msg("channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch, queue); err != nil {
		p.log.Warn().Err(err).Str("queue", queue).Msg("queue declare failed")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    id,
		Type:         queue,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		p.log.Warn().Err(err).Str("queue", queue).Msg("publish failed")
		return err
	}
	p.log.Debug().Str("queue", queue).Str("event_id", id).Msg("event published")
	return nil
}

// declare makes sure the durable queue exists (idempotent).
func declare(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	return err
}

// NoopPublisher drops every event.  It is used when EVENTS_ENABLED is false.
type NoopPublisher struct{}

func (NoopPublisher) PublishUserRegistered(context.Context, UserRegisteredEvent) error { return nil }

func (NoopPublisher) PublishPreferenceUpdated(context.Context, PreferenceUpdatedEvent) error {
	return nil
}
