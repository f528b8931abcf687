package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"backoffice/internal/orders/domain"
	apperrors "backoffice/pkg/errors"
)

// OrderModel is the GORM model for orders (persistence layer).
// Customer and items are stored as jsonb so line lookups can use containment.
type OrderModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Customer        CustomerColumn  `gorm:"type:jsonb;serializer:json"`
	Items           []ItemColumn    `gorm:"type:jsonb;serializer:json"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Discount        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	AdditionalPrice decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	OrderStatus     string          `gorm:"size:20;not null;default:'Pending';index:idx_orders_status"`
	PaymentStatus   string          `gorm:"size:20;not null;default:'Unpaid';index:idx_orders_status"`
	PaymentMethod   string          `gorm:"size:20;not null"`
	OrderNote       string          `gorm:"type:text"`
	CreatedDate     time.Time       `gorm:"autoCreateTime;index"`
	ModifiedDate    time.Time       `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// CustomerColumn is the JSON shape of the customer
type CustomerColumn struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Province string `json:"province,omitempty"`
	City     string `json:"city,omitempty"`
	Address  string `json:"address,omitempty"`
	Landmark string `json:"landmark,omitempty"`
}

// ItemColumn is the JSON shape of an order line
type ItemColumn struct {
	Product  string          `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// PostgresOrderRepository implements OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db *gorm.DB
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository
func NewPostgresOrderRepository(db *gorm.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// Migrate runs auto-migration for the order model
func (r *PostgresOrderRepository) Migrate() error {
	if err := r.db.AutoMigrate(&OrderModel{}); err != nil {
		return err
	}
	return r.db.Exec("CREATE INDEX IF NOT EXISTS idx_orders_items ON orders USING GIN (items jsonb_path_ops)").Error
}

// Create creates a new order
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model, err := toModel(order)
	if err != nil {
		return err
	}
	model.ID = uuid.New()

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.NewInternal("failed to create order", err)
	}

	// Update domain entity with generated ID
	order.ID = model.ID.String()
	order.CreatedDate = model.CreatedDate
	order.ModifiedDate = model.ModifiedDate
	return nil
}

// GetByID retrieves an order by ID
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.NewInvalidOrderID(id)
	}

	var model OrderModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", uid)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get order", result.Error)
	}

	return toDomain(&model), nil
}

// List returns every order, newest first
func (r *PostgresOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	var models []OrderModel
	if err := r.db.WithContext(ctx).Order("created_date DESC").Find(&models).Error; err != nil {
		return nil, apperrors.NewInternal("failed to list orders", err)
	}
	return toDomainList(models), nil
}

// Update updates an existing order
func (r *PostgresOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	model, err := toModel(order)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(model).Select("*").Omit("created_date").Updates(model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to update order", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewOrderNotFound(order.ID)
	}

	order.ModifiedDate = model.ModifiedDate
	return nil
}

// Delete deletes an order by ID
func (r *PostgresOrderRepository) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.NewInvalidOrderID(id)
	}

	result := r.db.WithContext(ctx).Delete(&OrderModel{}, "id = ?", uid)
	if result.Error != nil {
		return apperrors.NewInternal("failed to delete order", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewOrderNotFound(id)
	}
	return nil
}

// ListFulfilledByProduct returns Delivered and Paid orders with a line for the product
func (r *PostgresOrderRepository) ListFulfilledByProduct(ctx context.Context, productID string) ([]*domain.Order, error) {
	containment, err := itemContainment(productID)
	if err != nil {
		return nil, err
	}

	var models []OrderModel
	result := r.db.WithContext(ctx).
		Where("items @> ?::jsonb", containment).
		Where("order_status = ? AND payment_status = ?", domain.OrderStatusDelivered, domain.PaymentStatusPaid).
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to find fulfilled orders", result.Error)
	}
	return toDomainList(models), nil
}

// CountByProduct counts orders of any status with a line for the product
func (r *PostgresOrderRepository) CountByProduct(ctx context.Context, productID string) (int64, error) {
	containment, err := itemContainment(productID)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&OrderModel{}).Where("items @> ?::jsonb", containment).Count(&n).Error; err != nil {
		return 0, apperrors.NewInternal("failed to count orders", err)
	}
	return n, nil
}

// itemContainment builds the jsonb value matching any line of the product
func itemContainment(productID string) (string, error) {
	body, err := json.Marshal([]map[string]string{{"product": productID}})
	if err != nil {
		return "", apperrors.NewInternal("failed to encode item filter", err)
	}
	return string(body), nil
}

// toModel converts a domain entity to a GORM model
func toModel(order *domain.Order) (*OrderModel, error) {
	model := &OrderModel{
		Customer: CustomerColumn{
			Name:     order.Customer.Name,
			Email:    order.Customer.Email,
			Phone:    order.Customer.Phone,
			Province: order.Customer.Province,
			City:     order.Customer.City,
			Address:  order.Customer.Address,
			Landmark: order.Customer.Landmark,
		},
		Items:           make([]ItemColumn, len(order.Items)),
		TotalAmount:     order.TotalAmount,
		Discount:        order.Discount,
		AdditionalPrice: order.AdditionalPrice,
		OrderStatus:     string(order.OrderStatus),
		PaymentStatus:   string(order.PaymentStatus),
		PaymentMethod:   string(order.PaymentMethod),
		OrderNote:       order.OrderNote,
		CreatedDate:     order.CreatedDate,
		ModifiedDate:    order.ModifiedDate,
	}

	if order.ID != "" {
		uid, err := uuid.Parse(order.ID)
		if err != nil {
			return nil, domain.NewInvalidOrderID(order.ID)
		}
		model.ID = uid
	}

	for i, item := range order.Items {
		if _, err := uuid.Parse(item.ProductID); err != nil {
			return nil, domain.NewInvalidProductRef(i, item.ProductID)
		}
		model.Items[i] = ItemColumn{Product: item.ProductID, Quantity: item.Quantity, Price: item.Price}
	}
	return model, nil
}

// toDomain converts a GORM model to a domain entity
func toDomain(model *OrderModel) *domain.Order {
	order := &domain.Order{
		ID: model.ID.String(),
		Customer: domain.Customer{
			Name:     model.Customer.Name,
			Email:    model.Customer.Email,
			Phone:    model.Customer.Phone,
			Province: model.Customer.Province,
			City:     model.Customer.City,
			Address:  model.Customer.Address,
			Landmark: model.Customer.Landmark,
		},
		Items:           make([]domain.Item, len(model.Items)),
		TotalAmount:     model.TotalAmount,
		Discount:        model.Discount,
		AdditionalPrice: model.AdditionalPrice,
		OrderStatus:     domain.OrderStatus(model.OrderStatus),
		PaymentStatus:   domain.PaymentStatus(model.PaymentStatus),
		PaymentMethod:   domain.PaymentMethod(model.PaymentMethod),
		OrderNote:       model.OrderNote,
		CreatedDate:     model.CreatedDate,
		ModifiedDate:    model.ModifiedDate,
	}
	for i, item := range model.Items {
		order.Items[i] = domain.Item{ProductID: item.Product, Quantity: item.Quantity, Price: item.Price}
	}
	return order
}

func toDomainList(models []OrderModel) []*domain.Order {
	orders := make([]*domain.Order, len(models))
	for i := range models {
		orders[i] = toDomain(&models[i])
	}
	return orders
}
