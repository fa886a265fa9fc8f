package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Exchange is the topic exchange events are published to. The routing key
// is the event type, e.g. "order.placed".
const Exchange = "hoteza.events"

const publishTimeout = 5 * time.Second

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQ publishes events to a durable topic exchange. A failed publish is
// logged and dropped.
type RabbitMQ struct {
	conn    *amqp.Connection
	channel amqpChannel
	log     *zap.SugaredLogger
	mu      sync.Mutex
}

func DialRabbitMQ(url string, log *zap.SugaredLogger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", Exchange, err)
	}

	return &RabbitMQ{conn: conn, channel: ch, log: log}, nil
}

func (r *RabbitMQ) Publish(ctx context.Context, e Event) {
	body, err := json.Marshal(e)
	if err != nil {
		r.log.Errorw("failed to encode event", "type", e.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.channel.PublishWithContext(
		ctx,
		Exchange, // exchange
		e.Type,   // routing key
		false,    // mandatory
		false,    // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    e.ID,
			Type:         e.Type,
			Timestamp:    e.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		r.log.Errorw("failed to publish event", "type", e.Type, "id", e.ID, "error", err)
	}
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
