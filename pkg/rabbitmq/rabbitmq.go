package rabbitmq

import (
	"fmt"
	"log"

	amqp "github.com/streadway/amqp"
)

const (
	// ModerationExchange carries events for the out-of-process moderation
	// workflow (suspect triage, bans).
	ModerationExchange = "moderation"
	// ModerationQueue is the queue the moderation consumer reads from.
	ModerationQueue = "moderation_queue"

	// KeySuspectCreated is published once per failed verification attempt.
	KeySuspectCreated = "moderation.suspect.created"
	// KeyReviewVerified is published after a successful ledger commit.
	KeyReviewVerified = "moderation.review.verified"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient creates a new RabbitMQ client. It connects, opens a channel
// and declares the moderation exchange, queue and binding upfront.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close() // Close connection if channel creation fails
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		ModerationExchange, // name
		"topic",            // type
		true,               // durable
		false,              // auto-deleted
		false,              // internal
		false,              // no-wait
		nil,                // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s exchange: %w", ModerationExchange, err)
	}

	if _, err := ch.QueueDeclare(
		ModerationQueue, // name
		true,            // durable (persists messages across broker restarts)
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		nil,             // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", ModerationQueue, err)
	}

	if err := ch.QueueBind(ModerationQueue, "moderation.*", ModerationExchange, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind %s: %w", ModerationQueue, err)
	}

	log.Println("RabbitMQ client connected and moderation_queue declared.")

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

// Publish sends a persistent JSON message to the moderation exchange.
func (c *Client) Publish(routingKey string, body []byte) error {
	err := c.channel.Publish(
		ModerationExchange, // exchange
		routingKey,         // routing key
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

// ConsumeModerationEvents delivers moderation messages to the handler.
// The handler's error return decides between ack and requeue.
func (c *Client) ConsumeModerationEvents(handler func(msg amqp.Delivery) error) error {
	msgs, err := c.channel.Consume(
		ModerationQueue, // queue
		"",              // consumer tag (auto-generated)
		false,           // auto-ack off, we ack manually below
		false,           // exclusive
		false,           // no-local
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to register moderation consumer: %w", err)
	}

	for msg := range msgs {
		if err := handler(msg); err != nil {
			log.Printf("Moderation handler failed (tag %d), requeueing: %v", msg.DeliveryTag, err)
			msg.Nack(false, true)
			continue
		}
		msg.Ack(false)
	}
	return nil
}

// Close shuts down the channel and connection.
func (c *Client) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
