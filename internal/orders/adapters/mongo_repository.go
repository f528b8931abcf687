package adapters

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backoffice/internal/orders/domain"
	apperrors "backoffice/pkg/errors"
	"backoffice/pkg/mongodb"
)

// CustomerDocument is embedded in OrderDocument
type CustomerDocument struct {
	Name     string `bson:"name"`
	Email    string `bson:"email"`
	Phone    string `bson:"phone"`
	Province string `bson:"province,omitempty"`
	City     string `bson:"city,omitempty"`
	Address  string `bson:"address,omitempty"`
	Landmark string `bson:"landmark,omitempty"`
}

// ItemDocument is one order line; product references the products collection
type ItemDocument struct {
	Product  primitive.ObjectID   `bson:"product"`
	Quantity int                  `bson:"quantity"`
	Price    primitive.Decimal128 `bson:"price"`
}

// OrderDocument is the MongoDB document for orders
type OrderDocument struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	Customer        CustomerDocument     `bson:"customer"`
	Items           []ItemDocument       `bson:"items"`
	TotalAmount     primitive.Decimal128 `bson:"totalAmount"`
	Discount        primitive.Decimal128 `bson:"discount"`
	AdditionalPrice primitive.Decimal128 `bson:"additionalPrice"`
	OrderStatus     string               `bson:"orderStatus"`
	PaymentStatus   string               `bson:"paymentStatus"`
	PaymentMethod   string               `bson:"paymentMethod"`
	OrderNote       string               `bson:"orderNote,omitempty"`
	CreatedDate     time.Time            `bson:"createdDate"`
	ModifiedDate    time.Time            `bson:"modifiedDate"`
}

// MongoOrderRepository implements OrderRepository using MongoDB
type MongoOrderRepository struct {
	coll *mongo.Collection
}

// NewMongoOrderRepository creates a new MongoDB order repository
func NewMongoOrderRepository(client *mongodb.Client) *MongoOrderRepository {
	return &MongoOrderRepository{coll: client.Collection(mongodb.CollectionOrders)}
}

// EnsureIndexes creates the indexes used by the reconciler and the dashboard
func (r *MongoOrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "items.product", Value: 1}, {Key: "orderStatus", Value: 1}, {Key: "paymentStatus", Value: 1}}},
		{Keys: bson.D{{Key: "createdDate", Value: -1}}},
	})
	return err
}

// Create creates a new order
func (r *MongoOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	doc, err := orderToDocument(order)
	if err != nil {
		return err
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return apperrors.NewInternal("failed to create order", err)
	}

	order.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

// GetByID retrieves an order by ID
func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.NewInvalidOrderID(id)
	}

	var doc OrderDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NewOrderNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get order", err)
	}

	return orderToDomain(&doc)
}

// List returns every order, newest first
func (r *MongoOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdDate", Value: -1}}))
}

// Update replaces an existing order
func (r *MongoOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	doc, err := orderToDocument(order)
	if err != nil {
		return err
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return apperrors.NewInternal("failed to update order", err)
	}
	if res.MatchedCount == 0 {
		return domain.NewOrderNotFound(order.ID)
	}
	return nil
}

// Delete deletes an order by ID
func (r *MongoOrderRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.NewInvalidOrderID(id)
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperrors.NewInternal("failed to delete order", err)
	}
	if res.DeletedCount == 0 {
		return domain.NewOrderNotFound(id)
	}
	return nil
}

// ListFulfilledByProduct returns Delivered and Paid orders with a line for the product
func (r *MongoOrderRepository) ListFulfilledByProduct(ctx context.Context, productID string) ([]*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, apperrors.NewValidation("invalid product id", apperrors.FieldErrors{"id": productID})
	}

	return r.find(ctx, bson.M{
		"items.product": oid,
		"orderStatus":   string(domain.OrderStatusDelivered),
		"paymentStatus": string(domain.PaymentStatusPaid),
	})
}

// CountByProduct counts orders of any status with a line for the product
func (r *MongoOrderRepository) CountByProduct(ctx context.Context, productID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return 0, apperrors.NewValidation("invalid product id", apperrors.FieldErrors{"id": productID})
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"items.product": oid})
	if err != nil {
		return 0, apperrors.NewInternal("failed to count orders", err)
	}
	return n, nil
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*domain.Order, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, apperrors.NewInternal("failed to find orders", err)
	}

	var docs []OrderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.NewInternal("failed to decode orders", err)
	}

	orders := make([]*domain.Order, 0, len(docs))
	for i := range docs {
		o, err := orderToDomain(&docs[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func orderToDocument(o *domain.Order) (*OrderDocument, error) {
	doc := &OrderDocument{
		Customer: CustomerDocument{
			Name:     o.Customer.Name,
			Email:    o.Customer.Email,
			Phone:    o.Customer.Phone,
			Province: o.Customer.Province,
			City:     o.Customer.City,
			Address:  o.Customer.Address,
			Landmark: o.Customer.Landmark,
		},
		Items:         make([]ItemDocument, len(o.Items)),
		OrderStatus:   string(o.OrderStatus),
		PaymentStatus: string(o.PaymentStatus),
		PaymentMethod: string(o.PaymentMethod),
		OrderNote:     o.OrderNote,
		CreatedDate:   o.CreatedDate,
		ModifiedDate:  o.ModifiedDate,
	}

	if o.ID != "" {
		oid, err := primitive.ObjectIDFromHex(o.ID)
		if err != nil {
			return nil, domain.NewInvalidOrderID(o.ID)
		}
		doc.ID = oid
	}

	for i, item := range o.Items {
		product, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, domain.NewInvalidProductRef(i, item.ProductID)
		}
		price, err := mongodb.ToDecimal128(item.Price)
		if err != nil {
			return nil, apperrors.NewInternal("failed to encode item price", err)
		}
		doc.Items[i] = ItemDocument{Product: product, Quantity: item.Quantity, Price: price}
	}

	var err error
	if doc.TotalAmount, err = mongodb.ToDecimal128(o.TotalAmount); err != nil {
		return nil, apperrors.NewInternal("failed to encode total amount", err)
	}
	if doc.Discount, err = mongodb.ToDecimal128(o.Discount); err != nil {
		return nil, apperrors.NewInternal("failed to encode discount", err)
	}
	if doc.AdditionalPrice, err = mongodb.ToDecimal128(o.AdditionalPrice); err != nil {
		return nil, apperrors.NewInternal("failed to encode additional price", err)
	}
	return doc, nil
}

func orderToDomain(doc *OrderDocument) (*domain.Order, error) {
	order := &domain.Order{
		ID: doc.ID.Hex(),
		Customer: domain.Customer{
			Name:     doc.Customer.Name,
			Email:    doc.Customer.Email,
			Phone:    doc.Customer.Phone,
			Province: doc.Customer.Province,
			City:     doc.Customer.City,
			Address:  doc.Customer.Address,
			Landmark: doc.Customer.Landmark,
		},
		Items:         make([]domain.Item, len(doc.Items)),
		OrderStatus:   domain.OrderStatus(doc.OrderStatus),
		PaymentStatus: domain.PaymentStatus(doc.PaymentStatus),
		PaymentMethod: domain.PaymentMethod(doc.PaymentMethod),
		OrderNote:     doc.OrderNote,
		CreatedDate:   doc.CreatedDate,
		ModifiedDate:  doc.ModifiedDate,
	}

	for i, item := range doc.Items {
		price, err := mongodb.FromDecimal128(item.Price)
		if err != nil {
			return nil, apperrors.NewInternal("failed to decode item price", err)
		}
		order.Items[i] = domain.Item{ProductID: item.Product.Hex(), Quantity: item.Quantity, Price: price}
	}

	var err error
	if order.TotalAmount, err = mongodb.FromDecimal128(doc.TotalAmount); err != nil {
		return nil, apperrors.NewInternal("failed to decode total amount", err)
	}
	if order.Discount, err = mongodb.FromDecimal128(doc.Discount); err != nil {
		return nil, apperrors.NewInternal("failed to decode discount", err)
	}
	if order.AdditionalPrice, err = mongodb.FromDecimal128(doc.AdditionalPrice); err != nil {
		return nil, apperrors.NewInternal("failed to decode additional price", err)
	}
	return order, nil
}
