package application

import (
	"context"

	"go.uber.org/zap"

	"backoffice/internal/orders/domain"
	"backoffice/internal/orders/ports"
	"backoffice/pkg/errors"
	"backoffice/pkg/logger"
)

// OrderUseCase handles order business logic
type OrderUseCase struct {
	repo       ports.OrderRepository
	publisher  ports.EventPublisher
	reconciler ports.StockReconciler
	log        *logger.Logger
}

// NewOrderUseCase creates a new order use case
func NewOrderUseCase(
	repo ports.OrderRepository,
	publisher ports.EventPublisher,
	reconciler ports.StockReconciler,
	log *logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		repo:       repo,
		publisher:  publisher,
		reconciler: reconciler,
		log:        log,
	}
}

// OrderOutput represents the output of an order mutation.
// ReconcileErr is set when the order was stored but stock could not be recomputed for some product.
type OrderOutput struct {
	Order        *domain.Order
	ReconcileErr error
}

// CreateOrder validates and stores a new order, then reconciles every referenced product
func (uc *OrderUseCase) CreateOrder(ctx context.Context, input domain.NewOrderInput) (*OrderOutput, error) {
	order, err := domain.NewOrder(input)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, order); err != nil {
		return nil, errors.Wrap(err, "failed to create order")
	}

	uc.log.WithContext(ctx).Info("order created",
		zap.String("order_id", order.ID),
		zap.String("total_amount", order.TotalAmount.String()),
		zap.String("order_status", string(order.OrderStatus)),
		zap.String("payment_status", string(order.PaymentStatus)),
	)

	output := &OrderOutput{Order: order}
	output.ReconcileErr = uc.reconcile(ctx, order.ProductIDs()...)

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderCreated(ctx, order); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order created event",
				zap.Error(err),
				zap.String("order_id", order.ID),
			)
		}
	}

	return output, nil
}

// GetOrder retrieves an order by ID
func (uc *OrderUseCase) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return uc.repo.GetByID(ctx, id)
}

// ListOrders returns every order
func (uc *OrderUseCase) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	orders, err := uc.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}
	return orders, nil
}

// UpdateOrderInput represents a partial order update
type UpdateOrderInput struct {
	ID    string
	Patch domain.OrderPatch
}

// UpdateOrder merges the patch onto the stored order, validates and stores the result,
// then reconciles every product referenced before or after the change.
func (uc *OrderUseCase) UpdateOrder(ctx context.Context, input UpdateOrderInput) (*OrderOutput, error) {
	order, err := uc.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	before := order.ProductIDs()
	previousStatus, previousPayment := order.OrderStatus, order.PaymentStatus

	order.Apply(input.Patch)
	if err := domain.Validate(order); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, order); err != nil {
		return nil, errors.Wrap(err, "failed to update order")
	}

	uc.log.WithContext(ctx).Info("order updated",
		zap.String("order_id", order.ID),
		zap.String("from_status", string(previousStatus)),
		zap.String("to_status", string(order.OrderStatus)),
		zap.String("from_payment", string(previousPayment)),
		zap.String("to_payment", string(order.PaymentStatus)),
	)

	output := &OrderOutput{Order: order}
	output.ReconcileErr = uc.reconcile(ctx, append(before, order.ProductIDs()...)...)

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderUpdated(ctx, order); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order updated event",
				zap.Error(err),
				zap.String("order_id", order.ID),
			)
		}
	}

	return output, nil
}

// DeleteOrder deletes an order and reconciles the products it referenced
func (uc *OrderUseCase) DeleteOrder(ctx context.Context, id string) (*OrderOutput, error) {
	order, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Info("order deleted", zap.String("order_id", id))

	output := &OrderOutput{Order: order}
	output.ReconcileErr = uc.reconcile(ctx, order.ProductIDs()...)

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderDeleted(ctx, order); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order deleted event",
				zap.Error(err),
				zap.String("order_id", id),
			)
		}
	}

	return output, nil
}

// reconcile never fails the caller; the reconciler logs each product failure itself
func (uc *OrderUseCase) reconcile(ctx context.Context, productIDs ...string) error {
	if uc.reconciler == nil || len(productIDs) == 0 {
		return nil
	}
	return uc.reconciler.ReconcileProducts(ctx, productIDs...)
}
