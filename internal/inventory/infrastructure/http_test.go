package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	catalogadapters "backoffice/internal/catalog/adapters"
	catalog "backoffice/internal/catalog/domain"
	"backoffice/internal/inventory/application"
	ordersadapters "backoffice/internal/orders/adapters"
	orders "backoffice/internal/orders/domain"
	"backoffice/pkg/errors"
	"backoffice/pkg/logger"
	"backoffice/pkg/middleware"
)

type inventoryFixture struct {
	router    *gin.Engine
	grpc      *GRPCServer
	products  *catalogadapters.MemoryProductRepository
	orders    *ordersadapters.MemoryOrderRepository
	productID string
}

func newInventoryFixture(t *testing.T) *inventoryFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	ctx := context.Background()

	products := catalogadapters.NewMemoryProductRepository()
	orderRepo := ordersadapters.NewMemoryOrderRepository()

	p, err := catalog.NewProduct(catalog.NewProductInput{
		Name:         "Saree",
		Description:  "Silk saree",
		CategoryID:   "c1",
		SellingPrice: decimal.NewFromInt(3000),
		Images:       []string{"saree.jpg"},
		Variants:     []catalog.Variant{{Size: "Free", Color: "Green", Quantity: 2, SKU: "SR-F-G"}},
	})
	require.NoError(t, err)
	require.NoError(t, products.Create(ctx, p))

	o, err := orders.NewOrder(orders.NewOrderInput{
		Customer:      orders.Customer{Name: "Lata", Email: "lata@example.com", Phone: "9833333333"},
		Items:         []orders.Item{{ProductID: p.ID, Quantity: 3, Price: decimal.NewFromInt(3000)}},
		OrderStatus:   orders.OrderStatusDelivered,
		PaymentStatus: orders.PaymentStatusPaid,
		PaymentMethod: orders.PaymentMethodBank,
	})
	require.NoError(t, err)
	require.NoError(t, orderRepo.Create(ctx, o))

	reconciler := application.NewReconciler(products, orderRepo, nil, nil, nil, log)
	dashboard := application.NewDashboardUseCase(products, orderRepo)

	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.ErrorHandler(log))
	NewHTTPHandler(dashboard, reconciler).RegisterRoutes(router.Group("/api/v1"))

	return &inventoryFixture{
		router:    router,
		grpc:      NewGRPCServer(dashboard, reconciler),
		products:  products,
		orders:    orderRepo,
		productID: p.ID,
	}
}

func (f *inventoryFixture) request(t *testing.T, method, path string) (int, errors.Response, json.RawMessage) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))

	var raw struct {
		Data json.RawMessage `json:"data"`
	}
	var resp errors.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	return rec.Code, resp, raw.Data
}

func TestReconcileEndpoint_Oversold(t *testing.T) {
	f := newInventoryFixture(t)

	code, resp, data := f.request(t, http.MethodPost, "/api/v1/inventory/reconcile?id="+f.productID)

	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)

	var result ReconcileResponse
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, -1, result.AvailableQuantity)
	assert.True(t, result.Oversold)
}

func TestReconcileEndpoint_Errors(t *testing.T) {
	f := newInventoryFixture(t)

	code, resp, _ := f.request(t, http.MethodPost, "/api/v1/inventory/reconcile")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Product ID is required", resp.Message)

	code, _, _ = f.request(t, http.MethodPost, "/api/v1/inventory/reconcile?id=6a1b57a8-62a3-4b5e-9d0c-bd2e3f3b2f10")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDashboardEndpoint(t *testing.T) {
	f := newInventoryFixture(t)

	code, _, data := f.request(t, http.MethodGet, "/api/v1/dashboard")

	require.Equal(t, http.StatusOK, code)
	var d DashboardResponse
	require.NoError(t, json.Unmarshal(data, &d))
	assert.Equal(t, 9000.0, d.TotalRevenue)
	assert.Equal(t, 1, d.OrdersCount)
	assert.Equal(t, 2, d.AvailableStock)
	assert.Equal(t, 1, d.OrdersByStatus["Delivered"])
	require.Len(t, d.RecentOrders, 1)
	assert.Equal(t, "Lata", d.RecentOrders[0].CustomerName)
}

func TestGRPCReconcileProduct(t *testing.T) {
	f := newInventoryFixture(t)

	resp, err := f.grpc.ReconcileProduct(context.Background(), wrapperspb.String(f.productID))

	require.NoError(t, err)
	assert.Equal(t, int64(-1), resp.GetValue())

	_, err = f.grpc.ReconcileProduct(context.Background(), wrapperspb.String(""))
	assert.True(t, errors.Is(err, errors.CodeValidation))
	st, _ := status.FromError(errors.GRPCStatus(err))
	assert.Equal(t, codes.InvalidArgument, st.Code())
}

func TestGRPCGetDashboard(t *testing.T) {
	f := newInventoryFixture(t)

	out, err := f.grpc.GetDashboard(context.Background(), &emptypb.Empty{})

	require.NoError(t, err)
	fields := out.AsMap()
	assert.Equal(t, 9000.0, fields["totalRevenue"])
	assert.Equal(t, 1.0, fields["ordersCount"])
	assert.Equal(t, 2.0, fields["availableStock"])
}
