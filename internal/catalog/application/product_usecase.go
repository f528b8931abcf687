package application

import (
	"context"

	"go.uber.org/zap"

	"backoffice/internal/catalog/domain"
	"backoffice/internal/catalog/ports"
	"backoffice/pkg/errors"
	"backoffice/pkg/logger"
)

// ProductUseCase handles product business logic
type ProductUseCase struct {
	repo       ports.ProductRepository
	categories ports.CategoryRepository
	orders     ports.OrderReferences
	reconciler ports.StockReconciler
	log        *logger.Logger
}

// NewProductUseCase creates a new product use case
func NewProductUseCase(
	repo ports.ProductRepository,
	categories ports.CategoryRepository,
	orders ports.OrderReferences,
	reconciler ports.StockReconciler,
	log *logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		repo:       repo,
		categories: categories,
		orders:     orders,
		reconciler: reconciler,
		log:        log,
	}
}

// ProductView is a product with its category resolved
type ProductView struct {
	Product  *domain.Product
	Category *domain.Category
}

// ProductOutput is returned by product mutations.
// ReconcileErr is set when the product was stored but its stock could not be recomputed.
type ProductOutput struct {
	Product      *domain.Product
	ReconcileErr error
}

// CreateProduct validates and stores a new product
func (uc *ProductUseCase) CreateProduct(ctx context.Context, input domain.NewProductInput) (*ProductOutput, error) {
	product, err := domain.NewProduct(input)
	if err != nil {
		return nil, err
	}

	if err := uc.ensureCategory(ctx, product.CategoryID); err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, errors.Wrap(err, "failed to create product")
	}

	uc.log.WithContext(ctx).Info("product created",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Int("available_quantity", product.AvailableQuantity),
	)

	return &ProductOutput{Product: product}, nil
}

// ListProducts returns every product with its category populated.
// A product whose category no longer exists is listed with a nil category.
func (uc *ProductUseCase) ListProducts(ctx context.Context) ([]ProductView, error) {
	products, err := uc.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	categories, err := uc.categories.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}
	byID := make(map[string]*domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = ProductView{Product: p, Category: byID[p.CategoryID]}
	}
	return views, nil
}

// GetProduct retrieves a product by ID
func (uc *ProductUseCase) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return uc.repo.GetByID(ctx, id)
}

// UpdateProductInput represents a partial product update
type UpdateProductInput struct {
	ID    string
	Patch domain.ProductPatch
}

// UpdateProduct merges the patch, validates the result, stores it and reconciles the product
func (uc *ProductUseCase) UpdateProduct(ctx context.Context, input UpdateProductInput) (*ProductOutput, error) {
	product, err := uc.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	product.Apply(input.Patch)
	if err := product.Validate(); err != nil {
		return nil, err
	}

	if input.Patch.CategoryID != nil {
		if err := uc.ensureCategory(ctx, product.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, errors.Wrap(err, "failed to update product")
	}

	uc.log.WithContext(ctx).Info("product updated",
		zap.String("product_id", product.ID),
		zap.Bool("variants_changed", input.Patch.VariantsChanged()),
	)

	output := &ProductOutput{Product: product}
	if uc.reconciler != nil {
		if err := uc.reconciler.ReconcileProducts(ctx, product.ID); err != nil {
			output.ReconcileErr = err
			return output, nil
		}
		// Re-read so the response carries the reconciled quantity
		if fresh, err := uc.repo.GetByID(ctx, product.ID); err == nil {
			output.Product = fresh
		}
	}

	return output, nil
}

// DeleteProduct deletes a product that no order references
func (uc *ProductUseCase) DeleteProduct(ctx context.Context, id string) error {
	if _, err := uc.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if uc.orders != nil {
		refs, err := uc.orders.CountByProduct(ctx, id)
		if err != nil {
			return errors.Wrap(err, "failed to check product references")
		}
		if refs > 0 {
			return domain.ErrProductInUse
		}
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	uc.log.WithContext(ctx).Info("product deleted", zap.String("product_id", id))
	return nil
}

func (uc *ProductUseCase) ensureCategory(ctx context.Context, categoryID string) error {
	_, err := uc.categories.GetByID(ctx, categoryID)
	if err == nil {
		return nil
	}
	if errors.Is(err, errors.CodeNotFound) || errors.Is(err, errors.CodeValidation) {
		return errors.NewFieldValidation(errors.FieldErrors{
			"category": "category '" + categoryID + "' does not exist",
		})
	}
	return errors.Wrap(err, "failed to load category")
}
