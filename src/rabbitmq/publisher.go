package rabbitmq

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"
)

// Publisher is the broker surface the mirror sink and alert evaluator
// write through.
type Publisher interface {
	Publish(exchange string, body []byte) error
}

// AMQPPublisher publishes JSON messages to durable fanout exchanges.
// A single channel is shared between publishers, so every channel
// operation goes through the mutex.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel

	mu       sync.Mutex
	declared map[string]bool
}

// NewAMQPPublisher connects to RabbitMQ and declares the given fanout
// exchanges up front, so a broker misconfiguration surfaces at startup
// instead of on the first publish.
func NewAMQPPublisher(amqpURL string, exchanges ...string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p := &AMQPPublisher{conn: conn, channel: ch, declared: make(map[string]bool)}
	for _, exchange := range exchanges {
		if err := p.declare(exchange); err != nil {
			p.Close()
			return nil, err
		}
	}
	return p, nil
}

func (p *AMQPPublisher) declare(exchange string) error {
	if p.declared[exchange] {
		return nil
	}
	err := p.channel.ExchangeDeclare(
		exchange,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	p.declared[exchange] = true
	return nil
}

// Publish sends one message to a fanout exchange. An exchange not
// declared at construction is declared on first use.
func (p *AMQPPublisher) Publish(exchange string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.declare(exchange); err != nil {
		return err
	}
	err := p.channel.Publish(
		exchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to exchange %s: %w", exchange, err)
	}
	return nil
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			slog.Error("Failed to close RabbitMQ channel", "error", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			slog.Error("Failed to close RabbitMQ connection", "error", err)
		}
	}
}
