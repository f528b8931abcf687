package ports

import (
	"context"

	"backoffice/internal/catalog/domain"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// Create stores a new category and assigns its ID
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by ID
	GetByID(ctx context.Context, id string) (*domain.Category, error)

	// List returns every category
	List(ctx context.Context) ([]*domain.Category, error)

	// Update replaces the stored category
	Update(ctx context.Context, category *domain.Category) error

	// Delete deletes a category by ID
	Delete(ctx context.Context, id string) error
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)

	// Update replaces the stored product except its available quantity
	Update(ctx context.Context, product *domain.Product) error

	Delete(ctx context.Context, id string) error

	// SetAvailableQuantity writes the derived quantity only
	SetAvailableQuantity(ctx context.Context, id string, quantity int) error

	// CountByCategory counts products referencing the category
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
}

// OrderReferences reports whether orders still point at a product
type OrderReferences interface {
	CountByProduct(ctx context.Context, productID string) (int64, error)
}

// StockReconciler recomputes available quantities after a product change
type StockReconciler interface {
	ReconcileProducts(ctx context.Context, productIDs ...string) error
}
