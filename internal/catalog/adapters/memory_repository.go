package adapters

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"backoffice/internal/catalog/domain"
)

// MemoryCategoryRepository implements CategoryRepository with an in-process map
type MemoryCategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]domain.Category
}

// NewMemoryCategoryRepository creates an empty in-memory category repository
func NewMemoryCategoryRepository() *MemoryCategoryRepository {
	return &MemoryCategoryRepository{categories: make(map[string]domain.Category)}
}

// Create stores a new category
func (r *MemoryCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	category.ID = uuid.New().String()
	r.categories[category.ID] = *category
	return nil
}

// GetByID retrieves a category by ID
func (r *MemoryCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewInvalidID("category", id)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[id]
	if !ok {
		return nil, domain.NewCategoryNotFound(id)
	}
	return &category, nil
}

// List returns every category ordered by creation time
func (r *MemoryCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		c := c
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// Update replaces the stored category
func (r *MemoryCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[category.ID]; !ok {
		return domain.NewCategoryNotFound(category.ID)
	}
	r.categories[category.ID] = *category
	return nil
}

// Delete deletes a category by ID
func (r *MemoryCategoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return domain.NewCategoryNotFound(id)
	}
	delete(r.categories, id)
	return nil
}

// MemoryProductRepository implements ProductRepository with an in-process map
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

// NewMemoryProductRepository creates an empty in-memory product repository
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: make(map[string]domain.Product)}
}

// Create stores a new product
func (r *MemoryProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = uuid.New().String()
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

// GetByID retrieves a product by ID
func (r *MemoryProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewInvalidID("product", id)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, domain.NewProductNotFound(id)
	}
	p := cloneProduct(product)
	return &p, nil
}

// List returns every product ordered by creation time
func (r *MemoryProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		p := cloneProduct(p)
		result = append(result, &p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// Update replaces the stored product, keeping the stored available quantity
func (r *MemoryProductRepository) Update(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[product.ID]
	if !ok {
		return domain.NewProductNotFound(product.ID)
	}
	updated := cloneProduct(*product)
	updated.AvailableQuantity = stored.AvailableQuantity
	r.products[product.ID] = updated
	return nil
}

// Delete deletes a product by ID
func (r *MemoryProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return domain.NewProductNotFound(id)
	}
	delete(r.products, id)
	return nil
}

// SetAvailableQuantity writes the derived quantity only
func (r *MemoryProductRepository) SetAvailableQuantity(ctx context.Context, id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return domain.NewProductNotFound(id)
	}
	product.AvailableQuantity = quantity
	r.products[id] = product
	return nil
}

// CountByCategory counts products referencing the category
func (r *MemoryProductRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, p := range r.products {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func cloneProduct(p domain.Product) domain.Product {
	p.Images = append([]string(nil), p.Images...)
	p.Variants = append([]domain.Variant(nil), p.Variants...)
	return p
}
