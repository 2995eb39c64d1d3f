package amqp

import (
	"context"
	"fmt"
	"time"

	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/models"

	"github.com/rabbitmq/amqp091-go"
)

// Client publishes and consumes confirmation messages on one durable queue
// bound to a direct exchange.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	logger       logging.Logger
}

// NewClient dials url and declares the exchange, the queue and their binding.
func NewClient(url, exchangeName, queueName string, logger logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger,
	}

	if err := client.setup(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Direct exchange: the routing key is the queue name.
	err = c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// Confirm publishes a confirmation. It makes Client usable as the ledger's
// confirmation sink.
func (c *Client) Confirm(ctx context.Context, conf models.Confirmation) error {
	body, err := NewConfirmationMessage(conf).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			MessageId:    conf.ExpenseID,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	c.logger.WithFields(
		logging.Field{Key: logging.FieldExpenseID, Value: conf.ExpenseID},
		logging.Field{Key: "exchange", Value: c.exchangeName},
		logging.Field{Key: "queue", Value: c.queueName},
	).Debug("Published confirmation message")
	return nil
}

// Handler processes one confirmation.
type Handler func(ctx context.Context, conf models.Confirmation) error

// Consume delivers messages to handler until ctx is done or the channel
// closes.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.WithField("queue", c.queueName).Info("Started consuming confirmation messages")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Stopping message consumption")
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			switch handleDelivery(ctx, delivery.Body, delivery.Redelivered, handler, c.logger) {
			case ack:
				_ = delivery.Ack(false)
			case requeue:
				_ = delivery.Nack(false, true)
			case drop:
				_ = delivery.Nack(false, false)
			}
		}
	}
}

type action int

const (
	ack action = iota
	requeue
	drop
)

// handleDelivery decodes and handles one message body. Failed messages are
// retried once, then dropped.
func handleDelivery(ctx context.Context, body []byte, redelivered bool, handler Handler, logger logging.Logger) action {
	msg, err := ConfirmationMessageFromJSON(body)
	if err != nil {
		logger.WithError(err).Error("Failed to decode confirmation message")
		return drop
	}

	log := logger.WithFields(
		logging.Field{Key: logging.FieldExpenseID, Value: msg.ExpenseID},
		logging.Field{Key: logging.FieldUserID, Value: msg.UserID},
	)
	if err := handler(ctx, msg.Confirmation); err != nil {
		if redelivered {
			log.WithError(err).Error("Failed to handle redelivered confirmation, dropping")
			return drop
		}
		log.WithError(err).Warn("Failed to handle confirmation, requeueing")
		return requeue
	}
	log.Debug("Processed confirmation message")
	return ack
}

// Close closes the channel and the connection.
func (c *Client) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
