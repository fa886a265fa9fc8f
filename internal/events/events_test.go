package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func TestFanout(t *testing.T) {
	var got []string
	record := func(name string) Publisher {
		return PublisherFunc(func(_ context.Context, e Event) {
			got = append(got, name+":"+e.Type)
		})
	}

	f := Fanout{record("a"), nil, record("b")}
	f.Publish(context.Background(), New("order.placed", nil))

	if len(got) != 2 || got[0] != "a:order.placed" || got[1] != "b:order.placed" {
		t.Fatalf("unexpected deliveries: %v", got)
	}
}

func TestNew(t *testing.T) {
	e := New("order.paid", map[string]string{"id": "ORD-1"})
	if e.ID == "" {
		t.Fatal("expected event id")
	}
	if e.OccurredAt.IsZero() {
		t.Fatal("expected timestamp")
	}
}

type mockChannel struct {
	publishFn func(exchange, key string, msg amqp.Publishing) error
	closed    bool
}

func (m *mockChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	return m.publishFn(exchange, key, msg)
}

func (m *mockChannel) Close() error {
	m.closed = true
	return nil
}

func TestRabbitMQ_Publish(t *testing.T) {
	var (
		gotExchange, gotKey string
		gotMsg              amqp.Publishing
	)
	ch := &mockChannel{publishFn: func(exchange, key string, msg amqp.Publishing) error {
		gotExchange, gotKey, gotMsg = exchange, key, msg
		return nil
	}}
	r := &RabbitMQ{channel: ch, log: zap.NewNop().Sugar()}

	e := New("order.placed", map[string]string{"id": "ORD-000001"})
	r.Publish(context.Background(), e)

	if gotExchange != Exchange {
		t.Errorf("expected exchange %s, got %s", Exchange, gotExchange)
	}
	if gotKey != "order.placed" {
		t.Errorf("expected routing key order.placed, got %s", gotKey)
	}
	if gotMsg.DeliveryMode != amqp.Persistent {
		t.Error("expected persistent delivery")
	}

	var decoded Event
	if err := json.Unmarshal(gotMsg.Body, &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded.ID != e.ID {
		t.Errorf("expected id %s, got %s", e.ID, decoded.ID)
	}
}

func TestRabbitMQ_PublishErrorIsSwallowed(t *testing.T) {
	ch := &mockChannel{publishFn: func(string, string, amqp.Publishing) error {
		return errors.New("channel closed")
	}}
	r := &RabbitMQ{channel: ch, log: zap.NewNop().Sugar()}

	r.Publish(context.Background(), New("order.paid", nil))

	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !ch.closed {
		t.Fatal("expected channel closed")
	}
}
