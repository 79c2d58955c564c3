package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends domain events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// NopPublisher drops every event. It is used when no broker URL is set.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// RabbitPublisher publishes each event as a persistent JSON message to a
// durable queue on the default exchange, dialing once per publish.
type RabbitPublisher struct {
	URL   string
	Queue string
	Log   *zap.Logger

	// DialTimeout bounds connecting and the AMQP handshake. The context
	// deadline wins when it is sooner.
	DialTimeout time.Duration
}

// DefaultDialTimeout applies when DialTimeout is unset.
const DefaultDialTimeout = 2 * time.Second

// NewRabbitPublisher returns a publisher for queue on the broker at url.
func NewRabbitPublisher(url, queue string, log *zap.Logger) *RabbitPublisher {
	return &RabbitPublisher{URL: url, Queue: queue, Log: log, DialTimeout: DefaultDialTimeout}
}

func (p *RabbitPublisher) dial(ctx context.Context) (*amqp.Connection, error) {
	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	if dl, ok := ctx.Deadline(); ok {
		left := time.Until(dl)
		if left <= 0 {
			return nil, ctx.Err()
		}
		if left < timeout {
			timeout = left
		}
	}
	return amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// Encode renders ev as the message published to the broker.
func Encode(ev Event) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}

// Publish returns the first error hit; callers treat a failed publish as
// non fatal.
func (p *RabbitPublisher) Publish(ctx context.Context, ev Event) error {
	msg, err := Encode(ev)
	if err != nil {
		return err
	}
	conn, err := p.dial(ctx)
	if err != nil {
		p.Log.Warn("rabbitmq dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Warn("rabbitmq channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.Queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		p.Log.Warn("rabbitmq queue declare failed", zap.String("queue", p.Queue), zap.Error(err))
		return err
	}

	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, msg); err != nil {
		p.Log.Warn("rabbitmq publish failed", zap.String("type", ev.Type), zap.Error(err))
		return err
	}
	p.Log.Debug("event published", zap.String("type", ev.Type), zap.Uint64("entity_id", ev.EntityID))
	return nil
}
