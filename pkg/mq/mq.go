// Package mq publishes and consumes JSON messages on a RabbitMQ topic
// exchange. The console uses it for its audit trail: every confirmed
// mutation is published as an event, and `libadmin audit` tails them.
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xiebiao/libadmin/pkg/logger"
	"github.com/xiebiao/libadmin/pkg/metrics"
)

// ExchangeTopic is the exchange kind used for routing keys such as
// "book.created".
const ExchangeTopic = "topic"

// publishChannel is the part of *amqp.Channel the publisher needs.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends messages to one exchange. Safe for concurrent use.
type Publisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	channel  publishChannel
	exchange string
	appID    string
	log      *zap.Logger
}

// NewPublisher dials url and declares a durable exchange.
func NewPublisher(url, exchange, appID string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareExchange(ch, exchange); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	log = logger.OrNop(log)
	log.Info("audit publisher ready", zap.String("exchange", exchange))

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		appID:    appID,
		log:      log,
	}, nil
}

func declareExchange(ch *amqp.Channel, exchange string) error {
	err := ch.ExchangeDeclare(
		exchange,
		ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return nil
}

// Publish marshals message as JSON and sends it persistently under
// routingKey. Each message gets a fresh id.
func (p *Publisher) Publish(ctx context.Context, routingKey string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		AppId:        p.appID,
		Timestamp:    time.Now(),
	}

	p.mu.Lock()
	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{
		"exchange":    p.exchange,
		"routing_key": routingKey,
	})
	p.log.Debug("message published", zap.String("routing_key", routingKey), zap.String("message_id", msg.MessageId))
	return nil
}

// Close releases the channel and the connection.
func (p *Publisher) Close() error {
	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

// Delivery is a received message.
type Delivery struct {
	MessageID  string
	RoutingKey string
	Timestamp  time.Time
	Body       []byte
}

// Handler processes one delivery. An error requeues the message once; a
// message that fails again after redelivery is dropped.
type Handler func(ctx context.Context, d Delivery) error

// Consumer reads from a durable queue bound to an exchange.
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *zap.Logger
}

// NewConsumer declares exchange and queue and binds queue with every
// routing key pattern in keys.
func NewConsumer(url, exchange, queue string, keys []string, log *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	fail := func(err error) (*Consumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	if err := declareExchange(ch, exchange); err != nil {
		return fail(err)
	}

	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fail(fmt.Errorf("declare queue %s: %w", queue, err))
	}

	for _, key := range keys {
		if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			return fail(fmt.Errorf("bind %s to %s: %w", key, queue, err))
		}
	}

	return &Consumer{conn: conn, channel: ch, queue: q.Name, log: logger.OrNop(log)}, nil
}

// Consume delivers messages to handler one at a time until ctx is done.
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := c.channel.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	c.log.Info("consuming", zap.String("queue", c.queue))
	return c.loop(ctx, msgs, handler)
}

func (c *Consumer) loop(ctx context.Context, msgs <-chan amqp.Delivery, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("delivery channel closed")
			}
			c.dispatch(ctx, msg, handler)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, msg amqp.Delivery, handler Handler) {
	d := Delivery{
		MessageID:  msg.MessageId,
		RoutingKey: msg.RoutingKey,
		Timestamp:  msg.Timestamp,
		Body:       msg.Body,
	}

	if err := handler(ctx, d); err != nil {
		requeue := !msg.Redelivered
		c.log.Warn("message handling failed",
			zap.String("routing_key", msg.RoutingKey),
			zap.Bool("requeue", requeue),
			zap.Error(err))
		_ = msg.Nack(false, requeue)
		return
	}
	_ = msg.Ack(false)
}

// Close releases the channel and the connection.
func (c *Consumer) Close() error {
	var errs []error
	if c.channel != nil {
		errs = append(errs, c.channel.Close())
	}
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
	}
	return errors.Join(errs...)
}
