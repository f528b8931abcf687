package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"backoffice/internal/catalog/domain"
	apperrors "backoffice/pkg/errors"
)

// CategoryModel is the GORM model for categories
type CategoryModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"size:255;not null"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ProductModel is the GORM model for products. Images and variants are JSON columns.
type ProductModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name              string          `gorm:"size:255;not null"`
	Description       string          `gorm:"type:text;not null"`
	CategoryID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	CostPrice         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	SellingPrice      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Images            []string        `gorm:"serializer:json"`
	Variants          []VariantColumn `gorm:"serializer:json"`
	AvailableQuantity int             `gorm:"not null;default:0"`
	CreatedAt         time.Time       `gorm:"autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// VariantColumn is the JSON shape of a variant
type VariantColumn struct {
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
	SKU      string `json:"sku"`
}

// PostgresCategoryRepository implements CategoryRepository using PostgreSQL
type PostgresCategoryRepository struct {
	db *gorm.DB
}

// NewPostgresCategoryRepository creates a new PostgreSQL category repository
func NewPostgresCategoryRepository(db *gorm.DB) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

// Migrate runs auto-migration for the category model
func (r *PostgresCategoryRepository) Migrate() error {
	return r.db.AutoMigrate(&CategoryModel{})
}

// Create creates a new category
func (r *PostgresCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	model := &CategoryModel{
		ID:          uuid.New(),
		Name:        category.Name,
		Description: category.Description,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.NewInternal("failed to create category", err)
	}

	category.ID = model.ID.String()
	category.CreatedAt = model.CreatedAt
	category.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a category by ID
func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.NewInvalidID("category", id)
	}

	var model CategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewCategoryNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get category", err)
	}

	return categoryModelToDomain(&model), nil
}

// List returns every category
func (r *PostgresCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	var models []CategoryModel
	if err := r.db.WithContext(ctx).Order("created_at").Find(&models).Error; err != nil {
		return nil, apperrors.NewInternal("failed to list categories", err)
	}

	categories := make([]*domain.Category, len(models))
	for i := range models {
		categories[i] = categoryModelToDomain(&models[i])
	}
	return categories, nil
}

// Update sets the mutable fields of the category
func (r *PostgresCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	uid, err := uuid.Parse(category.ID)
	if err != nil {
		return domain.NewInvalidID("category", category.ID)
	}

	result := r.db.WithContext(ctx).Model(&CategoryModel{}).Where("id = ?", uid).Updates(map[string]interface{}{
		"name":        category.Name,
		"description": category.Description,
	})
	if result.Error != nil {
		return apperrors.NewInternal("failed to update category", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewCategoryNotFound(category.ID)
	}
	return nil
}

// Delete deletes a category by ID
func (r *PostgresCategoryRepository) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.NewInvalidID("category", id)
	}

	result := r.db.WithContext(ctx).Delete(&CategoryModel{}, "id = ?", uid)
	if result.Error != nil {
		return apperrors.NewInternal("failed to delete category", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewCategoryNotFound(id)
	}
	return nil
}

// PostgresProductRepository implements ProductRepository using PostgreSQL
type PostgresProductRepository struct {
	db *gorm.DB
}

// NewPostgresProductRepository creates a new PostgreSQL product repository
func NewPostgresProductRepository(db *gorm.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

// Migrate runs auto-migration for the product model
func (r *PostgresProductRepository) Migrate() error {
	return r.db.AutoMigrate(&ProductModel{})
}

// Create creates a new product
func (r *PostgresProductRepository) Create(ctx context.Context, product *domain.Product) error {
	model, err := productToModel(product)
	if err != nil {
		return err
	}
	model.ID = uuid.New()

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.NewInternal("failed to create product", err)
	}

	product.ID = model.ID.String()
	product.CreatedAt = model.CreatedAt
	product.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a product by ID
func (r *PostgresProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.NewInvalidID("product", id)
	}

	var model ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewProductNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get product", err)
	}

	return productModelToDomain(&model), nil
}

// List returns every product
func (r *PostgresProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	var models []ProductModel
	if err := r.db.WithContext(ctx).Order("created_at").Find(&models).Error; err != nil {
		return nil, apperrors.NewInternal("failed to list products", err)
	}

	products := make([]*domain.Product, len(models))
	for i := range models {
		products[i] = productModelToDomain(&models[i])
	}
	return products, nil
}

// Update saves every column except the derived available quantity
func (r *PostgresProductRepository) Update(ctx context.Context, product *domain.Product) error {
	model, err := productToModel(product)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(model).
		Select("name", "description", "category_id", "cost_price", "selling_price", "images", "variants", "updated_at").
		Updates(model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to update product", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewProductNotFound(product.ID)
	}
	return nil
}

// Delete deletes a product by ID
func (r *PostgresProductRepository) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.NewInvalidID("product", id)
	}

	result := r.db.WithContext(ctx).Delete(&ProductModel{}, "id = ?", uid)
	if result.Error != nil {
		return apperrors.NewInternal("failed to delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewProductNotFound(id)
	}
	return nil
}

// SetAvailableQuantity writes the derived quantity only
func (r *PostgresProductRepository) SetAvailableQuantity(ctx context.Context, id string, quantity int) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.NewInvalidID("product", id)
	}

	result := r.db.WithContext(ctx).Model(&ProductModel{}).Where("id = ?", uid).
		UpdateColumn("available_quantity", quantity)
	if result.Error != nil {
		return apperrors.NewInternal("failed to set available quantity", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewProductNotFound(id)
	}
	return nil
}

// CountByCategory counts products referencing the category
func (r *PostgresProductRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	uid, err := uuid.Parse(categoryID)
	if err != nil {
		return 0, domain.NewInvalidID("category", categoryID)
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&ProductModel{}).Where("category_id = ?", uid).Count(&n).Error; err != nil {
		return 0, apperrors.NewInternal("failed to count products", err)
	}
	return n, nil
}

// categoryModelToDomain converts a GORM model to a domain entity
func categoryModelToDomain(model *CategoryModel) *domain.Category {
	return &domain.Category{
		ID:          model.ID.String(),
		Name:        model.Name,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// productToModel converts a domain entity to a GORM model
func productToModel(p *domain.Product) (*ProductModel, error) {
	model := &ProductModel{
		Name:              p.Name,
		Description:       p.Description,
		CostPrice:         p.CostPrice,
		SellingPrice:      p.SellingPrice,
		Images:            p.Images,
		AvailableQuantity: p.AvailableQuantity,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}

	if p.ID != "" {
		uid, err := uuid.Parse(p.ID)
		if err != nil {
			return nil, domain.NewInvalidID("product", p.ID)
		}
		model.ID = uid
	}

	categoryID, err := uuid.Parse(p.CategoryID)
	if err != nil {
		return nil, domain.NewInvalidID("category", p.CategoryID)
	}
	model.CategoryID = categoryID

	model.Variants = make([]VariantColumn, len(p.Variants))
	for i, v := range p.Variants {
		model.Variants[i] = VariantColumn{Size: v.Size, Color: v.Color, Quantity: v.Quantity, SKU: v.SKU}
	}
	return model, nil
}

// productModelToDomain converts a GORM model to a domain entity
func productModelToDomain(model *ProductModel) *domain.Product {
	variants := make([]domain.Variant, len(model.Variants))
	for i, v := range model.Variants {
		variants[i] = domain.Variant{Size: v.Size, Color: v.Color, Quantity: v.Quantity, SKU: v.SKU}
	}

	return &domain.Product{
		ID:                model.ID.String(),
		Name:              model.Name,
		Description:       model.Description,
		CategoryID:        model.CategoryID.String(),
		CostPrice:         model.CostPrice,
		SellingPrice:      model.SellingPrice,
		Images:            model.Images,
		Variants:          variants,
		AvailableQuantity: model.AvailableQuantity,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}
