package application

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/shopspring/decimal"

	"backoffice/internal/orders/domain"
	"backoffice/pkg/errors"
	"backoffice/pkg/logger"
)

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	orders    map[string]*domain.Order
	nextID    int
	updateErr error
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]*domain.Order),
		nextID: 1,
	}
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	order.ID = fmt.Sprintf("order-%d", m.nextID)
	m.nextID++
	stored := *order
	m.orders[order.ID] = &stored
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, domain.NewOrderNotFound(id)
	}
	copied := *order
	return &copied, nil
}

func (m *MockOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	result := make([]*domain.Order, 0, len(m.orders))
	for _, order := range m.orders {
		result = append(result, order)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedDate.After(result[j].CreatedDate) })
	return result, nil
}

func (m *MockOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored := *order
	m.orders[order.ID] = &stored
	return nil
}

func (m *MockOrderRepository) Delete(ctx context.Context, id string) error {
	delete(m.orders, id)
	return nil
}

func (m *MockOrderRepository) ListFulfilledByProduct(ctx context.Context, productID string) ([]*domain.Order, error) {
	var result []*domain.Order
	for _, order := range m.orders {
		if order.Fulfilled() && order.QuantityOf(productID) > 0 {
			result = append(result, order)
		}
	}
	return result, nil
}

func (m *MockOrderRepository) CountByProduct(ctx context.Context, productID string) (int64, error) {
	var n int64
	for _, order := range m.orders {
		if order.QuantityOf(productID) > 0 {
			n++
		}
	}
	return n, nil
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	events []string
	err    error
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	m.events = append(m.events, "created:"+order.ID)
	return m.err
}

func (m *MockEventPublisher) PublishOrderUpdated(ctx context.Context, order *domain.Order) error {
	m.events = append(m.events, "updated:"+order.ID)
	return m.err
}

func (m *MockEventPublisher) PublishOrderDeleted(ctx context.Context, order *domain.Order) error {
	m.events = append(m.events, "deleted:"+order.ID)
	return m.err
}

// MockReconciler records the products it was asked to reconcile
type MockReconciler struct {
	calls [][]string
	err   error
}

func (m *MockReconciler) ReconcileProducts(ctx context.Context, productIDs ...string) error {
	m.calls = append(m.calls, productIDs)
	return m.err
}

func validInput() domain.NewOrderInput {
	return domain.NewOrderInput{
		Customer: domain.Customer{
			Name:  "Asha",
			Email: "asha@example.com",
			Phone: "9800000000",
		},
		Items: []domain.Item{
			{ProductID: "p1", Quantity: 2, Price: decimal.NewFromInt(500)},
			{ProductID: "p2", Quantity: 1, Price: decimal.NewFromInt(600)},
		},
		Discount:        decimal.NewFromInt(100),
		AdditionalPrice: decimal.NewFromInt(50),
		PaymentMethod:   domain.PaymentMethodCOD,
	}
}

func newUseCase() (*OrderUseCase, *MockOrderRepository, *MockEventPublisher, *MockReconciler) {
	repo := NewMockOrderRepository()
	publisher := &MockEventPublisher{}
	reconciler := &MockReconciler{}
	return NewOrderUseCase(repo, publisher, reconciler, logger.NewNop()), repo, publisher, reconciler
}

func TestCreateOrder_Success(t *testing.T) {
	// Arrange
	useCase, _, publisher, reconciler := newUseCase()

	// Act
	output, err := useCase.CreateOrder(context.Background(), validInput())

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output.Order.ID != "order-1" {
		t.Errorf("expected ID order-1, got %s", output.Order.ID)
	}

	if !output.Order.TotalAmount.Equal(decimal.NewFromInt(1550)) {
		t.Errorf("expected total 1550, got %s", output.Order.TotalAmount)
	}

	if output.Order.OrderStatus != domain.OrderStatusPending {
		t.Errorf("expected status Pending, got %s", output.Order.OrderStatus)
	}

	if output.Order.PaymentStatus != domain.PaymentStatusUnpaid {
		t.Errorf("expected payment Unpaid, got %s", output.Order.PaymentStatus)
	}

	if len(reconciler.calls) != 1 || len(reconciler.calls[0]) != 2 {
		t.Errorf("expected one reconcile call for 2 products, got %v", reconciler.calls)
	}

	if len(publisher.events) != 1 || publisher.events[0] != "created:order-1" {
		t.Errorf("expected 1 created event, got %v", publisher.events)
	}
}

func TestCreateOrder_InvalidPhone(t *testing.T) {
	// Arrange
	useCase, repo, publisher, reconciler := newUseCase()
	input := validInput()
	input.Customer.Phone = "12345"

	// Act
	_, err := useCase.CreateOrder(context.Background(), input)

	// Assert
	if !errors.Is(err, errors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	fields := appErr.Details.(errors.FieldErrors)
	if _, ok := fields["customer.phone"]; !ok {
		t.Errorf("expected customer.phone field error, got %v", fields)
	}

	if len(repo.orders) != 0 {
		t.Errorf("expected nothing stored, got %d orders", len(repo.orders))
	}
	if len(reconciler.calls) != 0 || len(publisher.events) != 0 {
		t.Error("expected no reconciliation and no event on rejected order")
	}
}

func TestCreateOrder_ReconcileFailureKeepsOrder(t *testing.T) {
	// Arrange
	useCase, repo, _, reconciler := newUseCase()
	reconciler.err = errors.NewReconciliation("p1", errors.NewInternal("store down", nil))

	// Act
	output, err := useCase.CreateOrder(context.Background(), validInput())

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output.ReconcileErr == nil {
		t.Error("expected reconcile error to be reported")
	}

	if len(repo.orders) != 1 {
		t.Errorf("expected order stored, got %d", len(repo.orders))
	}
}

func TestCreateOrder_PublishFailureIgnored(t *testing.T) {
	// Arrange
	useCase, _, publisher, _ := newUseCase()
	publisher.err = fmt.Errorf("broker unavailable")

	// Act
	_, err := useCase.CreateOrder(context.Background(), validInput())

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestGetOrder_Success(t *testing.T) {
	// Arrange
	useCase, _, _, _ := newUseCase()
	created, _ := useCase.CreateOrder(context.Background(), validInput())

	// Act
	order, err := useCase.GetOrder(context.Background(), created.Order.ID)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if order.Customer.Name != "Asha" {
		t.Errorf("expected customer Asha, got %s", order.Customer.Name)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	// Arrange
	useCase, _, _, _ := newUseCase()

	// Act
	_, err := useCase.GetOrder(context.Background(), "missing")

	// Assert
	if !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestUpdateOrder_ReconcilesOldAndNewProducts(t *testing.T) {
	// Arrange
	useCase, _, publisher, reconciler := newUseCase()
	created, _ := useCase.CreateOrder(context.Background(), validInput())

	items := []domain.Item{{ProductID: "p3", Quantity: 1, Price: decimal.NewFromInt(200)}}
	delivered := domain.OrderStatusDelivered

	// Act
	output, err := useCase.UpdateOrder(context.Background(), UpdateOrderInput{
		ID:    created.Order.ID,
		Patch: domain.OrderPatch{Items: &items, OrderStatus: &delivered},
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !output.Order.TotalAmount.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected total 150, got %s", output.Order.TotalAmount)
	}

	last := reconciler.calls[len(reconciler.calls)-1]
	want := map[string]bool{"p1": true, "p2": true, "p3": true}
	for _, id := range last {
		delete(want, id)
	}
	if len(want) != 0 {
		t.Errorf("expected p1, p2 and p3 reconciled, got %v", last)
	}

	if publisher.events[len(publisher.events)-1] != "updated:"+created.Order.ID {
		t.Errorf("expected updated event, got %v", publisher.events)
	}
}

func TestUpdateOrder_InvalidStatus(t *testing.T) {
	// Arrange
	useCase, repo, _, _ := newUseCase()
	created, _ := useCase.CreateOrder(context.Background(), validInput())
	status := domain.OrderStatus("Shipped")

	// Act
	_, err := useCase.UpdateOrder(context.Background(), UpdateOrderInput{
		ID:    created.Order.ID,
		Patch: domain.OrderPatch{OrderStatus: &status},
	})

	// Assert
	if !errors.Is(err, errors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if repo.orders[created.Order.ID].OrderStatus != domain.OrderStatusPending {
		t.Error("expected stored order unchanged")
	}
}

func TestUpdateOrder_StoreFailure(t *testing.T) {
	// Arrange
	useCase, repo, _, reconciler := newUseCase()
	created, _ := useCase.CreateOrder(context.Background(), validInput())
	repo.updateErr = errors.NewInternal("write failed", nil)
	calls := len(reconciler.calls)
	note := "gift wrap"

	// Act
	_, err := useCase.UpdateOrder(context.Background(), UpdateOrderInput{
		ID:    created.Order.ID,
		Patch: domain.OrderPatch{OrderNote: &note},
	})

	// Assert
	if !errors.Is(err, errors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if len(reconciler.calls) != calls {
		t.Error("expected no reconciliation after failed update")
	}
}

func TestDeleteOrder_Success(t *testing.T) {
	// Arrange
	useCase, repo, publisher, reconciler := newUseCase()
	created, _ := useCase.CreateOrder(context.Background(), validInput())

	// Act
	output, err := useCase.DeleteOrder(context.Background(), created.Order.ID)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output.Order.ID != created.Order.ID {
		t.Errorf("expected deleted order %s, got %s", created.Order.ID, output.Order.ID)
	}

	if len(repo.orders) != 0 {
		t.Errorf("expected order removed, got %d", len(repo.orders))
	}

	if len(reconciler.calls) != 2 {
		t.Errorf("expected reconciliation on create and delete, got %d calls", len(reconciler.calls))
	}

	if publisher.events[len(publisher.events)-1] != "deleted:"+created.Order.ID {
		t.Errorf("expected deleted event, got %v", publisher.events)
	}
}

func TestDeleteOrder_NotFound(t *testing.T) {
	// Arrange
	useCase, _, _, reconciler := newUseCase()

	// Act
	_, err := useCase.DeleteOrder(context.Background(), "missing")

	// Assert
	if !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
	if len(reconciler.calls) != 0 {
		t.Error("expected no reconciliation")
	}
}
