package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gminsights/roadmap-api/internal/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher forwards events to a durable topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
	log      *zap.Logger
}

func NewAMQPPublisher(url, exchange string, log *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log = logger.OrNop(log)
	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange, log: log}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) {
	body, err := json.Marshal(e)
	if err != nil {
		p.log.Warn("amqp marshal failed", zap.Error(err))
		return
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, e.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		p.log.Warn("amqp publish failed", zap.String("routing_key", e.RoutingKey()), zap.Error(err))
	}
}

func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
