package adapters

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"backoffice/pkg/events"
	"backoffice/pkg/logger"
	"backoffice/pkg/rabbitmq"
)

// StockAlertQueue is the queue bound to stock.reconciled
const StockAlertQueue = "backoffice.stock-alerts"

// StockAlertConsumer warns about oversold and low-stock products
type StockAlertConsumer struct {
	consumer  *rabbitmq.Consumer
	threshold int
	log       *logger.Logger
}

// NewStockAlertConsumer creates a consumer for stock.reconciled events
func NewStockAlertConsumer(conn *rabbitmq.Connection, threshold int, log *logger.Logger) (*StockAlertConsumer, error) {
	consumer, err := rabbitmq.NewConsumer(
		conn,
		StockAlertQueue,
		events.Exchange,
		[]string{events.RoutingKeyStockReconciled},
		log,
	)
	if err != nil {
		return nil, err
	}

	return &StockAlertConsumer{
		consumer:  consumer,
		threshold: threshold,
		log:       log,
	}, nil
}

// Start starts consuming stock.reconciled events
func (c *StockAlertConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.HandleMessage)
}

// HandleMessage processes one stock.reconciled event
func (c *StockAlertConsumer) HandleMessage(ctx context.Context, body []byte) error {
	var event events.StockReconciledEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.log.WithContext(ctx).Error("failed to unmarshal StockReconciledEvent", zap.Error(err))
		return err
	}

	p := event.Payload
	fields := []zap.Field{
		zap.String("product_id", p.ProductID),
		zap.String("product_name", p.ProductName),
		zap.Int("available_quantity", p.AvailableQuantity),
		zap.String("event_trace_id", event.TraceID),
	}

	switch {
	case p.Oversold || p.AvailableQuantity < 0:
		c.log.WithContext(ctx).Warn("stock alert: product oversold", fields...)
	case p.AvailableQuantity <= c.threshold:
		c.log.WithContext(ctx).Warn("stock alert: low stock", append(fields, zap.Int("threshold", c.threshold))...)
	default:
		c.log.WithContext(ctx).Debug("stock level ok", fields...)
	}

	return nil
}
