package adapters

import (
	"context"

	"backoffice/pkg/events"
	"backoffice/pkg/logger"
	"backoffice/pkg/metrics"
)

// StockPublisher publishes stock.reconciled events on the event bus
type StockPublisher struct {
	bus     events.Bus
	metrics *metrics.Metrics
}

// NewStockPublisher creates a new stock event publisher
func NewStockPublisher(bus events.Bus, m *metrics.Metrics) *StockPublisher {
	return &StockPublisher{bus: bus, metrics: m}
}

// PublishStockReconciled publishes a stock.reconciled event
func (p *StockPublisher) PublishStockReconciled(ctx context.Context, payload events.StockPayload) error {
	event := events.NewStockReconciledEvent(payload, logger.GetTraceID(ctx))
	err := p.bus.Publish(ctx, events.RoutingKeyStockReconciled, event)
	p.metrics.ObservePublish(events.RoutingKeyStockReconciled, err)
	return err
}
