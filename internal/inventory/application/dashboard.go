package application

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	catalog "backoffice/internal/catalog/domain"
	"backoffice/internal/inventory/ports"
	orders "backoffice/internal/orders/domain"
	"backoffice/pkg/errors"
)

const recentOrdersLimit = 5

// Dashboard summarises revenue, orders and stock
type Dashboard struct {
	TotalRevenue     decimal.Decimal
	OrdersCount      int
	AvailableStock   int
	OrdersByStatus   map[orders.OrderStatus]int
	OversoldProducts []OversoldProduct
	RecentOrders     []RecentOrder
}

// OversoldProduct is a product whose fulfilled orders exceed its variants
type OversoldProduct struct {
	ID                string
	Name              string
	AvailableQuantity int
}

// RecentOrder is a short view of one of the newest orders
type RecentOrder struct {
	ID           string
	CustomerName string
	TotalAmount  decimal.Decimal
	OrderStatus  orders.OrderStatus
	CreatedDate  time.Time
}

// DashboardUseCase computes the dashboard from full scans of orders and products
type DashboardUseCase struct {
	products ports.ProductStore
	orders   ports.OrderStore
}

// NewDashboardUseCase creates a new dashboard use case
func NewDashboardUseCase(products ports.ProductStore, orders ports.OrderStore) *DashboardUseCase {
	return &DashboardUseCase{products: products, orders: orders}
}

// GetDashboard loads orders and products concurrently and aggregates them
func (uc *DashboardUseCase) GetDashboard(ctx context.Context) (*Dashboard, error) {
	var (
		allOrders   []*orders.Order
		allProducts []*catalog.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		allOrders, err = uc.orders.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		allProducts, err = uc.products.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "failed to load dashboard data")
	}

	return Aggregate(allOrders, allProducts), nil
}

// Aggregate computes the dashboard figures.
// Revenue counts Delivered and Paid orders only; available stock is the raw variant total.
func Aggregate(allOrders []*orders.Order, allProducts []*catalog.Product) *Dashboard {
	d := &Dashboard{
		TotalRevenue:     decimal.Zero,
		OrdersCount:      len(allOrders),
		OrdersByStatus:   make(map[orders.OrderStatus]int, len(orders.OrderStatuses)),
		OversoldProducts: []OversoldProduct{},
		RecentOrders:     []RecentOrder{},
	}
	for _, s := range orders.OrderStatuses {
		d.OrdersByStatus[s] = 0
	}

	for _, o := range allOrders {
		d.OrdersByStatus[o.OrderStatus]++
		if o.Fulfilled() {
			d.TotalRevenue = d.TotalRevenue.Add(o.TotalAmount)
		}
	}

	for _, p := range allProducts {
		d.AvailableStock += p.TotalVariantQuantity()
		if p.Oversold() {
			d.OversoldProducts = append(d.OversoldProducts, OversoldProduct{
				ID:                p.ID,
				Name:              p.Name,
				AvailableQuantity: p.AvailableQuantity,
			})
		}
	}

	d.RecentOrders = recent(allOrders, recentOrdersLimit)
	return d
}

// recent returns the newest orders without relying on the store's sort order
func recent(allOrders []*orders.Order, limit int) []RecentOrder {
	sorted := append([]*orders.Order(nil), allOrders...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedDate.After(sorted[j].CreatedDate)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]RecentOrder, len(sorted))
	for i, o := range sorted {
		out[i] = RecentOrder{
			ID:           o.ID,
			CustomerName: o.Customer.Name,
			TotalAmount:  o.TotalAmount,
			OrderStatus:  o.OrderStatus,
			CreatedDate:  o.CreatedDate,
		}
	}
	return out
}
