package ports

import (
	"context"

	catalog "backoffice/internal/catalog/domain"
	orders "backoffice/internal/orders/domain"
	"backoffice/pkg/events"
)

// ProductStore is the part of the product repository the reconciler and dashboard need
type ProductStore interface {
	GetByID(ctx context.Context, id string) (*catalog.Product, error)
	List(ctx context.Context) ([]*catalog.Product, error)
	SetAvailableQuantity(ctx context.Context, id string, quantity int) error
}

// OrderStore is the part of the order repository the reconciler and dashboard need
type OrderStore interface {
	List(ctx context.Context) ([]*orders.Order, error)
	ListFulfilledByProduct(ctx context.Context, productID string) ([]*orders.Order, error)
}

// StockPublisher announces reconciliation results
type StockPublisher interface {
	PublishStockReconciled(ctx context.Context, payload events.StockPayload) error
}
