package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"backoffice/pkg/logger"
)

const (
	headerTraceID = "x-trace-id"
	deadSuffix    = ".dlx"
	defaultQoS    = 16
)

// DeadLetterExchange returns the exchange that receives rejected messages of exchange
func DeadLetterExchange(exchange string) string {
	return exchange + deadSuffix
}

// DeadLetterQueue returns the queue parked messages of queue end up in
func DeadLetterQueue(queue string) string {
	return queue + deadSuffix
}

// Connection holds one AMQP connection and a shared channel
type Connection struct {
	url     string
	appID   string
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *logger.Logger
	mu      sync.RWMutex
}

// NewConnection dials RabbitMQ and opens a channel. appID is stamped on every published message.
func NewConnection(url, appID string, log *logger.Logger) (*Connection, error) {
	c := &Connection{
		url:   url,
		appID: appID,
		log:   log,
	}

	if err := c.connect(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Connection) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	c.conn = conn
	c.channel = ch

	c.log.Info("connected to RabbitMQ", zap.String("app_id", c.appID))
	return nil
}

// Channel returns the current channel
func (c *Connection) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// Close closes the channel and the connection
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// declareExchange declares a durable topic exchange together with its dead-letter exchange
func declareExchange(ch *amqp.Channel, exchange string) error {
	for _, name := range []string{exchange, DeadLetterExchange(exchange)} {
		if err := ch.ExchangeDeclare(name, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", name, err)
		}
	}
	return nil
}

// Publisher publishes JSON events to a topic exchange
type Publisher struct {
	conn     *Connection
	exchange string
	log      *logger.Logger
}

// NewPublisher declares the exchange and returns a publisher bound to it
func NewPublisher(conn *Connection, exchange string, log *logger.Logger) (*Publisher, error) {
	if err := declareExchange(conn.Channel(), exchange); err != nil {
		return nil, err
	}

	return &Publisher{
		conn:     conn,
		exchange: exchange,
		log:      log,
	}, nil
}

// Publish marshals message and publishes it persistently under routingKey
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	traceID := logger.GetTraceID(ctx)
	messageID := uuid.NewString()

	err = p.conn.Channel().PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			Body:          body,
			DeliveryMode:  amqp.Persistent,
			Timestamp:     time.Now().UTC(),
			MessageId:     messageID,
			Type:          routingKey,
			AppId:         p.conn.appID,
			CorrelationId: traceID,
			Headers:       amqp.Table{headerTraceID: traceID},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	p.log.WithContext(ctx).Debug("event published",
		zap.String("exchange", p.exchange),
		zap.String("routing_key", routingKey),
		zap.String("message_id", messageID),
	)

	return nil
}

// Consumer consumes events from a queue bound to an exchange.
// Rejected events are parked in the queue's dead-letter queue.
type Consumer struct {
	conn        *Connection
	queue       string
	routingKeys []string
	log         *logger.Logger
}

// NewConsumer declares the queue, its dead-letter queue and the bindings for each routing key
func NewConsumer(conn *Connection, queue, exchange string, routingKeys []string, log *logger.Logger) (*Consumer, error) {
	ch := conn.Channel()

	if err := declareExchange(ch, exchange); err != nil {
		return nil, err
	}

	dlq := DeadLetterQueue(queue)
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare dead-letter queue: %w", err)
	}
	if err := ch.QueueBind(dlq, "#", DeadLetterExchange(exchange), false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind dead-letter queue: %w", err)
	}

	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		amqp.Table{"x-dead-letter-exchange": DeadLetterExchange(exchange)},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range routingKeys {
		if err := ch.QueueBind(queue, key, exchange, false, nil); err != nil {
			return nil, fmt.Errorf("failed to bind queue to %s: %w", key, err)
		}
	}

	if err := ch.Qos(defaultQoS, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set prefetch: %w", err)
	}

	return &Consumer{
		conn:        conn,
		queue:       queue,
		routingKeys: routingKeys,
		log:         log,
	}, nil
}

// MessageHandler handles one event body
type MessageHandler func(ctx context.Context, body []byte) error

// Consume starts consuming messages until ctx is done.
// A message that fails twice is dead-lettered instead of requeued again.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	msgs, err := c.conn.Channel().Consume(
		c.queue,
		c.conn.appID, // consumer tag
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					c.log.Warn("delivery channel closed", zap.String("queue", c.queue))
					return
				}
				c.handle(ctx, msg, handler)
			}
		}
	}()

	c.log.Info("consumer started",
		zap.String("queue", c.queue),
		zap.Strings("routing_keys", c.routingKeys),
	)

	return nil
}

func (c *Consumer) handle(ctx context.Context, msg amqp.Delivery, handler MessageHandler) {
	traceID, _ := msg.Headers[headerTraceID].(string)
	msgCtx := logger.WithTraceIDContext(ctx, traceID)

	c.log.WithContext(msgCtx).Debug("event received",
		zap.String("queue", c.queue),
		zap.String("routing_key", msg.RoutingKey),
		zap.String("message_id", msg.MessageId),
	)

	if err := handler(msgCtx, msg.Body); err != nil {
		requeue := !msg.Redelivered
		c.log.WithContext(msgCtx).Error("failed to handle event",
			zap.Error(err),
			zap.String("queue", c.queue),
			zap.String("message_id", msg.MessageId),
			zap.Bool("requeue", requeue),
		)
		msg.Nack(false, requeue)
		return
	}
	msg.Ack(false)
}
