package application

import (
	"context"

	"go.uber.org/zap"

	"backoffice/internal/catalog/domain"
	"backoffice/internal/catalog/ports"
	"backoffice/pkg/errors"
	"backoffice/pkg/logger"
)

// CategoryUseCase handles category business logic
type CategoryUseCase struct {
	repo     ports.CategoryRepository
	products ports.ProductRepository
	log      *logger.Logger
}

// NewCategoryUseCase creates a new category use case
func NewCategoryUseCase(repo ports.CategoryRepository, products ports.ProductRepository, log *logger.Logger) *CategoryUseCase {
	return &CategoryUseCase{
		repo:     repo,
		products: products,
		log:      log,
	}
}

// CreateCategoryInput represents the input for creating a category
type CreateCategoryInput struct {
	Name        string
	Description string
}

// CreateCategory creates a new category
func (uc *CategoryUseCase) CreateCategory(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	category, err := domain.NewCategory(input.Name, input.Description)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, category); err != nil {
		return nil, errors.Wrap(err, "failed to create category")
	}

	uc.log.WithContext(ctx).Info("category created",
		zap.String("category_id", category.ID),
		zap.String("name", category.Name),
	)

	return category, nil
}

// ListCategories returns every category
func (uc *CategoryUseCase) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := uc.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}
	return categories, nil
}

// UpdateCategoryInput represents a partial category update
type UpdateCategoryInput struct {
	ID    string
	Patch domain.CategoryPatch
}

// UpdateCategory merges the patch onto the stored category
func (uc *CategoryUseCase) UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*domain.Category, error) {
	category, err := uc.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	category.Apply(input.Patch)
	if err := category.Validate(); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, category); err != nil {
		return nil, errors.Wrap(err, "failed to update category")
	}

	uc.log.WithContext(ctx).Info("category updated", zap.String("category_id", category.ID))
	return category, nil
}

// DeleteCategory deletes a category that no product references
func (uc *CategoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	if _, err := uc.repo.GetByID(ctx, id); err != nil {
		return err
	}

	inUse, err := uc.products.CountByCategory(ctx, id)
	if err != nil {
		return errors.Wrap(err, "failed to check category references")
	}
	if inUse > 0 {
		return domain.ErrCategoryInUse
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	uc.log.WithContext(ctx).Info("category deleted", zap.String("category_id", id))
	return nil
}
