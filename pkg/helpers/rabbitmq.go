package helpers

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// dialQueue opens a connection and channel and declares queue as durable.
func dialQueue(url, queue string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

func closeQueue(conn *amqp.Connection, ch *amqp.Channel) {
	if ch != nil {
		_ = ch.Close()
	}
	if conn != nil {
		_ = conn.Close()
	}
}

// RabbitPublisher publishes JSON messages to a single durable queue.
type RabbitPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, ch, err := dialQueue(url, queue)
	if err != nil {
		return nil, err
	}
	return &RabbitPublisher{conn: conn, ch: ch, Queue: queue}, nil
}

func (p *RabbitPublisher) Close() {
	if p == nil {
		return
	}
	closeQueue(p.conn, p.ch)
}

// PublishJSON publishes a JSON-encoded persistent message to the queue.
func (p *RabbitPublisher) PublishJSON(ctx context.Context, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         b,
		},
	)
}

// RabbitConsumer reads deliveries from a durable queue with manual acks.
type RabbitConsumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

// NewRabbitConsumer dials the broker and sets the prefetch window for fair dispatch.
func NewRabbitConsumer(url, queue string, prefetch int) (*RabbitConsumer, error) {
	conn, ch, err := dialQueue(url, queue)
	if err != nil {
		return nil, err
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		closeQueue(conn, ch)
		return nil, err
	}
	return &RabbitConsumer{conn: conn, ch: ch, Queue: queue}, nil
}

func (c *RabbitConsumer) Deliveries() (<-chan amqp.Delivery, error) {
	return c.ch.Consume(c.Queue, "", false, false, false, false, nil)
}

func (c *RabbitConsumer) Close() {
	if c == nil {
		return
	}
	closeQueue(c.conn, c.ch)
}
