package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"go-restaurant-printing/config"
	"go-restaurant-printing/database"
	"go-restaurant-printing/models"
	"go-restaurant-printing/printer"
)

var (
	ErrRequeue = errors.New("requeue")     // nack(requeue=true)
	ErrDLQ     = errors.New("dead_letter") // nack(requeue=false)
)

const statusRoutingKey = "order.status.*"

// StatusChange is published whenever an order moves between states.
type StatusChange struct {
	OrderID   string             `json:"order_id"`
	OldStatus models.OrderStatus `json:"old_status"`
	NewStatus models.OrderStatus `json:"new_status"`
}

type OrderFinder interface {
	FindOrder(ctx context.Context, orderID string) (models.Order, []models.OrderItem, error)
}

// Consumer prints the kitchen ticket when an order starts preparing and
// the customer receipt when it is paid.
type Consumer struct {
	orders     OrderFinder
	dispatcher printer.Dispatcher
	cfg        config.Events
	prefetch   int
	logger     *slog.Logger
}

func NewConsumer(orders OrderFinder, dispatcher printer.Dispatcher, cfg config.Events, logger *slog.Logger) *Consumer {
	return &Consumer{orders: orders, dispatcher: dispatcher, cfg: cfg, prefetch: 4, logger: logger}
}

// Handle processes one message body. A nil return means ack.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var msg StatusChange
	if err := json.Unmarshal(body, &msg); err != nil {
		c.logger.Warn("status_change_malformed", "error", err)
		return fmt.Errorf("%w: %v", ErrDLQ, err)
	}
	if msg.OrderID == "" {
		c.logger.Warn("status_change_malformed", "error", "missing order_id")
		return fmt.Errorf("%w: missing order_id", ErrDLQ)
	}

	var kind models.TicketKind
	switch msg.NewStatus {
	case models.StatusPreparing:
		kind = models.TicketKitchen
	case models.StatusPaid:
		kind = models.TicketReceipt
	default:
		return nil
	}
	if msg.OldStatus == msg.NewStatus {
		return nil
	}

	order, items, err := c.orders.FindOrder(ctx, msg.OrderID)
	if errors.Is(err, database.ErrOrderNotFound) {
		c.logger.Warn("status_change_order_missing", "order_id", msg.OrderID)
		return fmt.Errorf("%w: order %s not found", ErrDLQ, msg.OrderID)
	}
	if err != nil {
		c.logger.Error("order_lookup_failed", "order_id", msg.OrderID, "error", err)
		return fmt.Errorf("%w: %v", ErrRequeue, err)
	}
	if len(items) == 0 {
		c.logger.Warn("order_without_items", "order", order.OrderNumber)
		return nil
	}

	// a failed print is logged by the dispatcher and not retried
	_, err = printer.Print(ctx, c.dispatcher, kind, order, items)
	return err
}

// Run consumes status changes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	conn, err := amqp.Dial(c.cfg.AMQPURL)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(c.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", c.cfg.Exchange, err)
	}
	if _, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare %s: %w", c.cfg.Queue, err)
	}
	if err := ch.QueueBind(c.cfg.Queue, statusRoutingKey, c.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind %s: %w", c.cfg.Queue, err)
	}
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return err
	}

	msgs, err := ch.Consume(c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.cfg.Queue, err)
	}
	c.logger.Info("consumer_started", "queue", c.cfg.Queue, "exchange", c.cfg.Exchange)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer_stopped", "queue", c.cfg.Queue)
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.settle(d, c.Handle(ctx, d.Body))
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Consumer) settle(d acknowledger, err error) {
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrDLQ):
		_ = d.Nack(false, false)
	default:
		_ = d.Nack(false, true)
	}
}
