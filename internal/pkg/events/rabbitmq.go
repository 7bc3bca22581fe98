package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// RabbitPublisher publishes events to the topic exchange
type RabbitPublisher struct {
	conn *amqp.Connection

	mu sync.Mutex // amqp channels are not safe for concurrent publishing
	ch *amqp.Channel
}

// NewRabbitPublisher dials the broker and declares the exchange
func NewRabbitPublisher(url string) (*RabbitPublisher, error) {
	conn, ch, err := dial(url)
	if err != nil {
		return nil, err
	}
	log.Info().Str("exchange", Exchange).Msg("Connected to RabbitMQ publisher")
	return &RabbitPublisher{conn: conn, ch: ch}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	ev, err := New(eventType, payload)
	if err != nil {
		return err
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, Exchange, eventType, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Timestamp:    ev.OccurredAt,
		Type:         eventType,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq publish %s: %w", eventType, err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// RabbitConsumer reads events from a durable queue bound to the exchange
type RabbitConsumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewRabbitConsumer declares queue and binds it to each routing key
func NewRabbitConsumer(url, queue string, keys []string) (*RabbitConsumer, error) {
	conn, ch, err := dial(url)
	if err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	for _, key := range keys {
		if err := ch.QueueBind(q.Name, key, Exchange, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("rabbitmq bind %s: %w", key, err)
		}
	}
	if err := ch.Qos(10, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq qos: %w", err)
	}

	return &RabbitConsumer{conn: conn, ch: ch, queue: q.Name}, nil
}

// Run consumes until ctx is cancelled or the delivery channel closes.
// Deliveries are acked after the handler succeeds; a failed delivery is
// requeued once and dropped on its second failure.
func (c *RabbitConsumer) Run(ctx context.Context, handle Handler) error {
	deliveries, err := c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq consume: %w", err)
	}
	log.Info().Str("queue", c.queue).Msg("Consuming events")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("rabbitmq delivery channel closed")
			}
			c.handleDelivery(ctx, d, handle)
		}
	}
}

func (c *RabbitConsumer) handleDelivery(ctx context.Context, d amqp.Delivery, handle Handler) {
	var ev Event
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		log.Error().Err(err).Str("routing_key", d.RoutingKey).Msg("Dropping undecodable event")
		_ = d.Nack(false, false)
		return
	}

	if err := handle(ctx, ev); err != nil {
		requeue := !d.Redelivered
		log.Error().Err(err).
			Str("event_type", ev.Type).
			Str("event_id", ev.ID).
			Bool("requeue", requeue).
			Msg("Event handler failed")
		_ = d.Nack(false, requeue)
		return
	}
	_ = d.Ack(false)
}

func (c *RabbitConsumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func dial(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}
	return conn, ch, nil
}
