package queue

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// DeliveryTopic carries campaign message IDs awaiting delivery.
const DeliveryTopic = "campaign_deliveries"

// Queue is the publish/subscribe seam between the send fan-out and the
// delivery pipeline.
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue delivers jobs to in-process subscribers with bounded
// retry. Used when no AMQP broker is configured.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

type job struct {
	payload    any
	retryCount int
	maxRetries int
}

func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	j := job{payload: payload, maxRetries: 3}
	for _, handler := range handlers {
		go q.process(handler, j)
	}
	return nil
}

// process retries with linear backoff, then drops the job. Delivery
// status in the store is what callers observe, not queue internals.
func (q *InMemoryQueue) process(handler func(payload any) error, j job) {
	for j.retryCount <= j.maxRetries {
		if err := handler(j.payload); err == nil {
			return
		}
		j.retryCount++
		if j.retryCount > j.maxRetries {
			return
		}
		time.Sleep(time.Duration(j.retryCount*500) * time.Millisecond)
	}
}

func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// AMQPQueue publishes jobs to a durable broker queue consumed by
// cmd/worker. Payloads are JSON envelopes carrying the message ID.
type AMQPQueue struct {
	Channel *amqp.Channel
}

// Envelope is the wire format for delivery jobs.
type Envelope struct {
	MessageID string `json:"message_id"`
}

func NewAMQPQueue(url string) (*AMQPQueue, func(), error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	cleanup := func() {
		ch.Close()
		conn.Close()
	}
	return &AMQPQueue{Channel: ch}, cleanup, nil
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	id, ok := payload.(string)
	if !ok {
		return fmt.Errorf("amqp publish: payload must be a message ID string")
	}
	if _, err := q.Channel.QueueDeclare(topic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	body, err := json.Marshal(Envelope{MessageID: id})
	if err != nil {
		return err
	}
	return q.Channel.Publish("", topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Subscribe is not supported on the publisher side; cmd/worker consumes
// the broker queue directly.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	return fmt.Errorf("amqp queue: subscribe is handled by the worker process")
}

var (
	_ Queue = (*InMemoryQueue)(nil)
	_ Queue = (*AMQPQueue)(nil)
)
