package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// AMQPEmitter publishes events to a durable topic exchange on RabbitMQ.
// Routing keys follow "<entity_type>.<action>" (e.g. "claim.submitted") so
// downstream audit and notification consumers can bind selectively.
type AMQPEmitter struct {
	conn     *amqp091.Connection
	exchange string
	logger   zerolog.Logger

	mu      sync.Mutex // guards channel, including the reopen in Emit
	channel *amqp091.Channel
}

// NewAMQPEmitter dials the broker, opens a channel, and declares the exchange.
// The dial is bounded so startup does not hang on an unreachable broker.
func NewAMQPEmitter(amqpURL, exchange string, logger zerolog.Logger) (*AMQPEmitter, error) {
	conn, err := amqp091.DialConfig(amqpURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPEmitter{conn: conn, channel: ch, exchange: exchange, logger: logger}, nil
}

// Emit publishes the event. Failures are logged and swallowed; the caller's
// mutation is authoritative regardless of the side-channel outcome.
func (e *AMQPEmitter) Emit(ctx context.Context, ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(ev)
	if err != nil {
		e.logger.Error().Err(err).Str("action", ev.Action).Msg("marshal event")
		return
	}

	routingKey := ev.EntityType + "." + ev.Action
	e.mu.Lock()
	err = e.channel.PublishWithContext(ctx,
		e.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   ev.OccurredAt,
			Body:        body,
		},
	)
	if err != nil {
		// One-shot retry on a fresh channel; broker hiccups are common
		// across connection recycling.
		if ch, chErr := e.conn.Channel(); chErr == nil {
			e.channel = ch
			if exErr := ch.ExchangeDeclare(e.exchange, "topic", true, false, false, false, nil); exErr == nil {
				err = ch.PublishWithContext(ctx, e.exchange, routingKey, false, false, amqp091.Publishing{
					ContentType: "application/json",
					Timestamp:   ev.OccurredAt,
					Body:        body,
				})
			}
		}
	}
	e.mu.Unlock()
	if err != nil {
		e.logger.Warn().Err(err).
			Str("routing_key", routingKey).
			Str("entity_id", ev.EntityID).
			Msg("event publish failed")
	}
}

func (e *AMQPEmitter) Close() {
	e.mu.Lock()
	if e.channel != nil {
		e.channel.Close()
	}
	e.mu.Unlock()
	if e.conn != nil {
		e.conn.Close()
	}
}
