package adapters

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"backoffice/internal/orders/domain"
)

// MemoryOrderRepository implements OrderRepository with an in-process map
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// NewMemoryOrderRepository creates an empty in-memory order repository
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]domain.Order)}
}

// Create stores a new order
func (r *MemoryOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	for i, item := range order.Items {
		if _, err := uuid.Parse(item.ProductID); err != nil {
			return domain.NewInvalidProductRef(i, item.ProductID)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = uuid.New().String()
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// GetByID retrieves an order by ID
func (r *MemoryOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewInvalidOrderID(id)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.NewOrderNotFound(id)
	}
	o := cloneOrder(order)
	return &o, nil
}

// List returns every order, newest first
func (r *MemoryOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		o := cloneOrder(o)
		result = append(result, &o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedDate.After(result[j].CreatedDate) })
	return result, nil
}

// Update replaces an existing order
func (r *MemoryOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	for i, item := range order.Items {
		if _, err := uuid.Parse(item.ProductID); err != nil {
			return domain.NewInvalidProductRef(i, item.ProductID)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; !ok {
		return domain.NewOrderNotFound(order.ID)
	}
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// Delete deletes an order by ID
func (r *MemoryOrderRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return domain.NewOrderNotFound(id)
	}
	delete(r.orders, id)
	return nil
}

// ListFulfilledByProduct returns Delivered and Paid orders with a line for the product
func (r *MemoryOrderRepository) ListFulfilledByProduct(ctx context.Context, productID string) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Order
	for _, o := range r.orders {
		if o.Fulfilled() && o.QuantityOf(productID) > 0 {
			o := cloneOrder(o)
			result = append(result, &o)
		}
	}
	return result, nil
}

// CountByProduct counts orders of any status with a line for the product
func (r *MemoryOrderRepository) CountByProduct(ctx context.Context, productID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, o := range r.orders {
		for _, item := range o.Items {
			if item.ProductID == productID {
				n++
				break
			}
		}
	}
	return n, nil
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.Item(nil), o.Items...)
	return o
}
