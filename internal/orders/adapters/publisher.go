package adapters

import (
	"context"

	"backoffice/internal/orders/domain"
	"backoffice/pkg/events"
	"backoffice/pkg/logger"
	"backoffice/pkg/metrics"
)

// EventPublisher implements ports.EventPublisher on top of the RabbitMQ or Kafka bus
type EventPublisher struct {
	bus     events.Bus
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewEventPublisher creates a new order event publisher
func NewEventPublisher(bus events.Bus, m *metrics.Metrics, log *logger.Logger) *EventPublisher {
	return &EventPublisher{
		bus:     bus,
		metrics: m,
		log:     log,
	}
}

// PublishOrderCreated publishes an order.created event
func (p *EventPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, events.RoutingKeyOrderCreated, order)
}

// PublishOrderUpdated publishes an order.updated event
func (p *EventPublisher) PublishOrderUpdated(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, events.RoutingKeyOrderUpdated, order)
}

// PublishOrderDeleted publishes an order.deleted event
func (p *EventPublisher) PublishOrderDeleted(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, events.RoutingKeyOrderDeleted, order)
}

func (p *EventPublisher) publish(ctx context.Context, routingKey string, order *domain.Order) error {
	traceID := logger.GetTraceID(ctx)

	event := events.NewOrderEvent(routingKey, events.OrderPayload{
		ID:            order.ID,
		CustomerName:  order.Customer.Name,
		TotalAmount:   order.TotalAmount.StringFixed(2),
		OrderStatus:   string(order.OrderStatus),
		PaymentStatus: string(order.PaymentStatus),
		ProductIDs:    order.ProductIDs(),
	}, traceID)

	err := p.bus.Publish(ctx, routingKey, event)
	p.metrics.ObservePublish(routingKey, err)
	return err
}
