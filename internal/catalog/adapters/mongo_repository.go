package adapters

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backoffice/internal/catalog/domain"
	apperrors "backoffice/pkg/errors"
	"backoffice/pkg/mongodb"
)

// CategoryDocument is the MongoDB document for categories
type CategoryDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// VariantDocument is embedded in ProductDocument
type VariantDocument struct {
	Size     string `bson:"size"`
	Color    string `bson:"color"`
	Quantity int    `bson:"quantity"`
	SKU      string `bson:"sku"`
}

// ProductDocument is the MongoDB document for products
type ProductDocument struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty"`
	Name              string               `bson:"name"`
	Description       string               `bson:"description"`
	Category          primitive.ObjectID   `bson:"category"`
	CostPrice         primitive.Decimal128 `bson:"cost_price"`
	SellingPrice      primitive.Decimal128 `bson:"selling_price"`
	Images            []string             `bson:"images"`
	Variants          []VariantDocument    `bson:"variants"`
	AvailableQuantity int                  `bson:"availableQuantity"`
	CreatedAt         time.Time            `bson:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt"`
}

// MongoCategoryRepository implements CategoryRepository using MongoDB
type MongoCategoryRepository struct {
	coll *mongo.Collection
}

// NewMongoCategoryRepository creates a new MongoDB category repository
func NewMongoCategoryRepository(client *mongodb.Client) *MongoCategoryRepository {
	return &MongoCategoryRepository{coll: client.Collection(mongodb.CollectionCategories)}
}

// Create creates a new category
func (r *MongoCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	doc := CategoryDocument{
		Name:        category.Name,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return apperrors.NewInternal("failed to create category", err)
	}

	category.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

// GetByID retrieves a category by ID
func (r *MongoCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.NewInvalidID("category", id)
	}

	var doc CategoryDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NewCategoryNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get category", err)
	}

	return categoryToDomain(&doc), nil
}

// List returns every category
func (r *MongoCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, apperrors.NewInternal("failed to list categories", err)
	}

	var docs []CategoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.NewInternal("failed to decode categories", err)
	}

	categories := make([]*domain.Category, len(docs))
	for i := range docs {
		categories[i] = categoryToDomain(&docs[i])
	}
	return categories, nil
}

// Update sets the mutable fields of the category
func (r *MongoCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	oid, err := primitive.ObjectIDFromHex(category.ID)
	if err != nil {
		return domain.NewInvalidID("category", category.ID)
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":        category.Name,
		"description": category.Description,
		"updatedAt":   category.UpdatedAt,
	}})
	if err != nil {
		return apperrors.NewInternal("failed to update category", err)
	}
	if res.MatchedCount == 0 {
		return domain.NewCategoryNotFound(category.ID)
	}
	return nil
}

// Delete deletes a category by ID
func (r *MongoCategoryRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.NewInvalidID("category", id)
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperrors.NewInternal("failed to delete category", err)
	}
	if res.DeletedCount == 0 {
		return domain.NewCategoryNotFound(id)
	}
	return nil
}

// MongoProductRepository implements ProductRepository using MongoDB
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a new MongoDB product repository
func NewMongoProductRepository(client *mongodb.Client) *MongoProductRepository {
	return &MongoProductRepository{coll: client.Collection(mongodb.CollectionProducts)}
}

// EnsureIndexes creates the category index used by the delete restriction
func (r *MongoProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}},
	})
	return err
}

// Create creates a new product
func (r *MongoProductRepository) Create(ctx context.Context, product *domain.Product) error {
	doc, err := productToDocument(product)
	if err != nil {
		return err
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return apperrors.NewInternal("failed to create product", err)
	}

	product.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

// GetByID retrieves a product by ID
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.NewInvalidID("product", id)
	}

	var doc ProductDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NewProductNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get product", err)
	}

	return productToDomain(&doc)
}

// List returns every product
func (r *MongoProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, apperrors.NewInternal("failed to list products", err)
	}

	var docs []ProductDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.NewInternal("failed to decode products", err)
	}

	products := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		p, err := productToDomain(&docs[i])
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// Update sets every field except the derived available quantity
func (r *MongoProductRepository) Update(ctx context.Context, product *domain.Product) error {
	doc, err := productToDocument(product)
	if err != nil {
		return err
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": bson.M{
		"name":          doc.Name,
		"description":   doc.Description,
		"category":      doc.Category,
		"cost_price":    doc.CostPrice,
		"selling_price": doc.SellingPrice,
		"images":        doc.Images,
		"variants":      doc.Variants,
		"updatedAt":     doc.UpdatedAt,
	}})
	if err != nil {
		return apperrors.NewInternal("failed to update product", err)
	}
	if res.MatchedCount == 0 {
		return domain.NewProductNotFound(product.ID)
	}
	return nil
}

// Delete deletes a product by ID
func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.NewInvalidID("product", id)
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperrors.NewInternal("failed to delete product", err)
	}
	if res.DeletedCount == 0 {
		return domain.NewProductNotFound(id)
	}
	return nil
}

// SetAvailableQuantity writes the derived quantity only
func (r *MongoProductRepository) SetAvailableQuantity(ctx context.Context, id string, quantity int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.NewInvalidID("product", id)
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"availableQuantity": quantity,
	}})
	if err != nil {
		return apperrors.NewInternal("failed to set available quantity", err)
	}
	if res.MatchedCount == 0 {
		return domain.NewProductNotFound(id)
	}
	return nil
}

// CountByCategory counts products referencing the category
func (r *MongoProductRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(categoryID)
	if err != nil {
		return 0, domain.NewInvalidID("category", categoryID)
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"category": oid})
	if err != nil {
		return 0, apperrors.NewInternal("failed to count products", err)
	}
	return n, nil
}

func categoryToDomain(doc *CategoryDocument) *domain.Category {
	return &domain.Category{
		ID:          doc.ID.Hex(),
		Name:        doc.Name,
		Description: doc.Description,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func productToDocument(p *domain.Product) (*ProductDocument, error) {
	doc := &ProductDocument{
		Name:              p.Name,
		Description:       p.Description,
		Images:            p.Images,
		AvailableQuantity: p.AvailableQuantity,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}

	if p.ID != "" {
		oid, err := primitive.ObjectIDFromHex(p.ID)
		if err != nil {
			return nil, domain.NewInvalidID("product", p.ID)
		}
		doc.ID = oid
	}

	category, err := primitive.ObjectIDFromHex(p.CategoryID)
	if err != nil {
		return nil, domain.NewInvalidID("category", p.CategoryID)
	}
	doc.Category = category

	if doc.CostPrice, err = mongodb.ToDecimal128(p.CostPrice); err != nil {
		return nil, apperrors.NewInternal("failed to encode cost price", err)
	}
	if doc.SellingPrice, err = mongodb.ToDecimal128(p.SellingPrice); err != nil {
		return nil, apperrors.NewInternal("failed to encode selling price", err)
	}

	doc.Variants = make([]VariantDocument, len(p.Variants))
	for i, v := range p.Variants {
		doc.Variants[i] = VariantDocument{Size: v.Size, Color: v.Color, Quantity: v.Quantity, SKU: v.SKU}
	}
	return doc, nil
}

func productToDomain(doc *ProductDocument) (*domain.Product, error) {
	cost, err := mongodb.FromDecimal128(doc.CostPrice)
	if err != nil {
		return nil, apperrors.NewInternal("failed to decode cost price", err)
	}
	selling, err := mongodb.FromDecimal128(doc.SellingPrice)
	if err != nil {
		return nil, apperrors.NewInternal("failed to decode selling price", err)
	}

	variants := make([]domain.Variant, len(doc.Variants))
	for i, v := range doc.Variants {
		variants[i] = domain.Variant{Size: v.Size, Color: v.Color, Quantity: v.Quantity, SKU: v.SKU}
	}

	return &domain.Product{
		ID:                doc.ID.Hex(),
		Name:              doc.Name,
		Description:       doc.Description,
		CategoryID:        doc.Category.Hex(),
		CostPrice:         cost,
		SellingPrice:      selling,
		Images:            doc.Images,
		Variants:          variants,
		AvailableQuantity: doc.AvailableQuantity,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}, nil
}
