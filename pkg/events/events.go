package events

import (
	"context"
	"time"
)

// Exchange (RabbitMQ) and topic (Kafka) carrying every back-office event
const Exchange = "backoffice.events"

// Routing keys
const (
	RoutingKeyOrderCreated    = "order.created"
	RoutingKeyOrderUpdated    = "order.updated"
	RoutingKeyOrderDeleted    = "order.deleted"
	RoutingKeyStockReconciled = "stock.reconciled"
)

const version = "1.0"

// Envelope wraps every event payload
type Envelope[T any] struct {
	Version   string    `json:"version"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	TraceID   string    `json:"trace_id"`
	Payload   T         `json:"payload"`
}

// OrderPayload describes an order mutation
type OrderPayload struct {
	ID            string   `json:"id"`
	CustomerName  string   `json:"customer_name"`
	TotalAmount   string   `json:"total_amount"`
	OrderStatus   string   `json:"order_status"`
	PaymentStatus string   `json:"payment_status"`
	ProductIDs    []string `json:"product_ids"`
}

// StockPayload describes one reconciliation result
type StockPayload struct {
	ProductID         string `json:"product_id"`
	ProductName       string `json:"product_name"`
	TotalQuantity     int    `json:"total_quantity"`
	ConsumedQuantity  int    `json:"consumed_quantity"`
	AvailableQuantity int    `json:"available_quantity"`
	Oversold          bool   `json:"oversold"`
}

// OrderEvent is published on order create, update and delete
type OrderEvent = Envelope[OrderPayload]

// StockReconciledEvent is published after every successful reconciliation
type StockReconciledEvent = Envelope[StockPayload]

// NewOrderEvent creates an order event for the given routing key
func NewOrderEvent(routingKey string, payload OrderPayload, traceID string) *OrderEvent {
	return &OrderEvent{
		Version:   version,
		EventType: routingKey,
		Timestamp: time.Now().UTC(),
		TraceID:   traceID,
		Payload:   payload,
	}
}

// NewStockReconciledEvent creates a stock.reconciled event
func NewStockReconciledEvent(payload StockPayload, traceID string) *StockReconciledEvent {
	return &StockReconciledEvent{
		Version:   version,
		EventType: RoutingKeyStockReconciled,
		Timestamp: time.Now().UTC(),
		TraceID:   traceID,
		Payload:   payload,
	}
}

// Bus is implemented by the RabbitMQ publisher and the Kafka producer
type Bus interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}
