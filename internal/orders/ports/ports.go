package ports

import (
	"context"

	"backoffice/internal/orders/domain"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create creates a new order and assigns its ID
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by ID
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns every order, newest first
	List(ctx context.Context) ([]*domain.Order, error)

	// Update replaces an existing order
	Update(ctx context.Context, order *domain.Order) error

	// Delete deletes an order by ID
	Delete(ctx context.Context, id string) error

	// ListFulfilledByProduct returns Delivered and Paid orders with a line for the product
	ListFulfilledByProduct(ctx context.Context, productID string) ([]*domain.Order, error)

	// CountByProduct counts orders of any status with a line for the product
	CountByProduct(ctx context.Context, productID string) (int64, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishOrderUpdated(ctx context.Context, order *domain.Order) error
	PublishOrderDeleted(ctx context.Context, order *domain.Order) error
}

// StockReconciler recomputes available quantities of the given products
type StockReconciler interface {
	ReconcileProducts(ctx context.Context, productIDs ...string) error
}
