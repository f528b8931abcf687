package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogadapters "backoffice/internal/catalog/adapters"
	catalog "backoffice/internal/catalog/domain"
	inventory "backoffice/internal/inventory/application"
	"backoffice/internal/orders/adapters"
	"backoffice/internal/orders/application"
	"backoffice/pkg/logger"
	"backoffice/pkg/middleware"
)

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
	TraceID string            `json:"trace_id"`
}

type server struct {
	router   *gin.Engine
	products *catalogadapters.MemoryProductRepository
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	products := catalogadapters.NewMemoryProductRepository()
	orders := adapters.NewMemoryOrderRepository()
	reconciler := inventory.NewReconciler(products, orders, nil, nil, nil, log)
	useCase := application.NewOrderUseCase(orders, nil, reconciler, log)

	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.ErrorHandler(log))
	NewHTTPHandler(useCase).RegisterRoutes(router.Group("/api/v1"))

	return &server{router: router, products: products}
}

func (s *server) product(t *testing.T, quantity int) string {
	t.Helper()
	p, err := catalog.NewProduct(catalog.NewProductInput{
		Name:         "Kurta",
		Description:  "Cotton kurta",
		CategoryID:   "c1",
		SellingPrice: decimal.NewFromInt(500),
		Images:       []string{"kurta.jpg"},
		Variants:     []catalog.Variant{{Size: "M", Color: "Red", Quantity: quantity, SKU: "K-M-R"}},
	})
	require.NoError(t, err)
	require.NoError(t, s.products.Create(context.Background(), p))
	return p.ID
}

func (s *server) available(t *testing.T, id string) int {
	t.Helper()
	p, err := s.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.AvailableQuantity
}

func (s *server) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func orderBody(productID string, quantity int) map[string]interface{} {
	return map[string]interface{}{
		"customer": map[string]interface{}{
			"name":  "Meera",
			"email": "meera@example.com",
			"phone": "9822222222",
		},
		"items": []map[string]interface{}{
			{"product": productID, "quantity": quantity, "price": 500},
		},
		"discount":        100,
		"additionalPrice": 50,
		"paymentMethod":   "COD",
	}
}

func TestCreateOrder_Created(t *testing.T) {
	s := newServer(t)
	productID := s.product(t, 10)

	code, env := s.do(t, http.MethodPost, "/api/v1/orders", orderBody(productID, 3))

	require.Equal(t, http.StatusCreated, code)
	assert.True(t, env.Success)
	assert.Equal(t, "Order created successfully", env.Message)
	assert.NotEmpty(t, env.TraceID)

	var order OrderResponse
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, 1450.0, order.TotalAmount)
	assert.Equal(t, "Pending", order.OrderStatus)
	assert.Equal(t, "Unpaid", order.PaymentStatus)

	// Pending orders do not consume stock
	assert.Equal(t, 10, s.available(t, productID))
}

func TestCreateOrder_ValidationErrors(t *testing.T) {
	s := newServer(t)
	body := orderBody(s.product(t, 10), 1)
	body["customer"] = map[string]interface{}{"name": "Meera", "email": "meera@example.com", "phone": "12345"}
	body["orderStatus"] = "Shipped"

	code, env := s.do(t, http.MethodPost, "/api/v1/orders", body)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Errors, "customer.phone")
	assert.Contains(t, env.Errors, "orderStatus")
}

func TestCreateOrder_MalformedBody(t *testing.T) {
	s := newServer(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/orders", "not an order")

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "body")
}

func TestOrderLifecycle_ReconcilesStock(t *testing.T) {
	s := newServer(t)
	productID := s.product(t, 10)

	code, env := s.do(t, http.MethodPost, "/api/v1/orders", orderBody(productID, 4))
	require.Equal(t, http.StatusCreated, code)
	var created OrderResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))

	code, env = s.do(t, http.MethodPut, "/api/v1/orders?id="+created.ID, map[string]interface{}{
		"orderStatus":   "Delivered",
		"paymentStatus": "Paid",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "Order updated successfully", env.Message)
	assert.Equal(t, 6, s.available(t, productID))

	code, _ = s.do(t, http.MethodDelete, "/api/v1/orders?id="+created.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 10, s.available(t, productID))

	code, _ = s.do(t, http.MethodGet, "/api/v1/orders/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCreateOrder_UnknownProductStillCreated(t *testing.T) {
	s := newServer(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/orders", orderBody("6a1b57a8-62a3-4b5e-9d0c-bd2e3f3b2f10", 1))

	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Order created successfully; stock reconciliation failed", env.Message)
}

func TestUpdateOrder_MissingID(t *testing.T) {
	s := newServer(t)

	code, env := s.do(t, http.MethodPut, "/api/v1/orders", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Order ID is required", env.Message)
}

func TestGetOrder_MalformedID(t *testing.T) {
	s := newServer(t)

	code, env := s.do(t, http.MethodGet, "/api/v1/orders/abc", nil)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
}

func TestListOrders_NewestFirst(t *testing.T) {
	s := newServer(t)
	productID := s.product(t, 10)
	for i := 1; i <= 2; i++ {
		code, _ := s.do(t, http.MethodPost, "/api/v1/orders", orderBody(productID, i))
		require.Equal(t, http.StatusCreated, code)
	}

	code, env := s.do(t, http.MethodGet, "/api/v1/orders", nil)

	require.Equal(t, http.StatusOK, code)
	var list []OrderResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	assert.False(t, list[0].CreatedDate.Before(list[1].CreatedDate))
}
