package application

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"backoffice/internal/inventory/ports"
	"backoffice/pkg/errors"
	"backoffice/pkg/events"
	"backoffice/pkg/lock"
	"backoffice/pkg/logger"
	"backoffice/pkg/metrics"
)

const lockPrefix = "inventory:lock:"

// Reconciler recomputes a product's available quantity:
// sum of variant quantities minus the quantities of every Delivered and Paid order line for it.
// The result is stored as is, negative values included.
type Reconciler struct {
	products  ports.ProductStore
	orders    ports.OrderStore
	locker    lock.Locker
	publisher ports.StockPublisher
	metrics   *metrics.Metrics
	log       *logger.Logger
}

// NewReconciler creates a reconciler. publisher and m may be nil.
func NewReconciler(
	products ports.ProductStore,
	orders ports.OrderStore,
	locker lock.Locker,
	publisher ports.StockPublisher,
	m *metrics.Metrics,
	log *logger.Logger,
) *Reconciler {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	return &Reconciler{
		products:  products,
		orders:    orders,
		locker:    locker,
		publisher: publisher,
		metrics:   m,
		log:       log,
	}
}

// Result describes one reconciliation
type Result struct {
	ProductID         string
	ProductName       string
	TotalQuantity     int
	ConsumedQuantity  int
	AvailableQuantity int
}

// Oversold reports whether more was delivered than the variants hold
func (r Result) Oversold() bool {
	return r.AvailableQuantity < 0
}

// Reconcile recomputes and persists the available quantity of one product.
// A missing product is a NotFound error; every other failure is a persistence error.
func (rc *Reconciler) Reconcile(ctx context.Context, productID string) (*Result, error) {
	unlock, err := rc.locker.Lock(ctx, lockPrefix+productID)
	if err != nil {
		return nil, errors.NewInternal("failed to lock product for reconciliation", err)
	}
	defer unlock()

	product, err := rc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	fulfilled, err := rc.orders.ListFulfilledByProduct(ctx, productID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load fulfilled orders")
	}

	consumed := 0
	for _, order := range fulfilled {
		consumed += order.QuantityOf(productID)
	}

	result := &Result{
		ProductID:        product.ID,
		ProductName:      product.Name,
		TotalQuantity:    product.TotalVariantQuantity(),
		ConsumedQuantity: consumed,
	}
	result.AvailableQuantity = result.TotalQuantity - consumed

	if err := rc.products.SetAvailableQuantity(ctx, productID, result.AvailableQuantity); err != nil {
		return nil, errors.Wrap(err, "failed to store available quantity")
	}

	return result, nil
}

// ReconcileProduct reconciles one product, recording the outcome in logs, metrics and events.
// The error is returned as produced by Reconcile.
func (rc *Reconciler) ReconcileProduct(ctx context.Context, productID string) (*Result, error) {
	result, err := rc.Reconcile(ctx, productID)
	if err != nil {
		rc.metrics.ObserveReconciliation(productID, 0, err)
		if errors.Is(err, errors.CodeNotFound) {
			rc.metrics.ForgetProduct(productID)
		}
		rc.log.WithContext(ctx).Error("reconciliation_failed",
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return nil, err
	}

	rc.observe(ctx, result)
	return result, nil
}

// ReconcileProducts reconciles each distinct product independently.
// A failure does not stop the batch; failures are combined and each is a ReconciliationError.
func (rc *Reconciler) ReconcileProducts(ctx context.Context, productIDs ...string) error {
	var errs error
	seen := make(map[string]struct{}, len(productIDs))

	for _, id := range productIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		if _, err := rc.ReconcileProduct(ctx, id); err != nil {
			errs = multierr.Append(errs, errors.NewReconciliation(id, err))
		}
	}

	return errs
}

func (rc *Reconciler) observe(ctx context.Context, result *Result) {
	rc.metrics.ObserveReconciliation(result.ProductID, result.AvailableQuantity, nil)

	fields := []zap.Field{
		zap.String("product_id", result.ProductID),
		zap.Int("total_quantity", result.TotalQuantity),
		zap.Int("consumed_quantity", result.ConsumedQuantity),
		zap.Int("available_quantity", result.AvailableQuantity),
	}
	if result.Oversold() {
		rc.log.WithContext(ctx).Warn("oversold", fields...)
	} else {
		rc.log.WithContext(ctx).Debug("stock reconciled", fields...)
	}

	if rc.publisher == nil {
		return
	}
	err := rc.publisher.PublishStockReconciled(ctx, events.StockPayload{
		ProductID:         result.ProductID,
		ProductName:       result.ProductName,
		TotalQuantity:     result.TotalQuantity,
		ConsumedQuantity:  result.ConsumedQuantity,
		AvailableQuantity: result.AvailableQuantity,
		Oversold:          result.Oversold(),
	})
	if err != nil {
		rc.log.WithContext(ctx).Error("failed to publish stock reconciled event",
			zap.Error(err),
			zap.String("product_id", result.ProductID),
		)
	}
}
