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

	"backoffice/internal/catalog/adapters"
	"backoffice/internal/catalog/application"
	inventory "backoffice/internal/inventory/application"
	ordersadapters "backoffice/internal/orders/adapters"
	orders "backoffice/internal/orders/domain"
	"backoffice/pkg/logger"
	"backoffice/pkg/middleware"
)

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

type catalogServer struct {
	router *gin.Engine
	orders *ordersadapters.MemoryOrderRepository
}

func newCatalogServer(t *testing.T) *catalogServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	categoryRepo := adapters.NewMemoryCategoryRepository()
	productRepo := adapters.NewMemoryProductRepository()
	orderRepo := ordersadapters.NewMemoryOrderRepository()
	reconciler := inventory.NewReconciler(productRepo, orderRepo, nil, nil, nil, log)

	handler := NewHTTPHandler(
		application.NewCategoryUseCase(categoryRepo, productRepo, log),
		application.NewProductUseCase(productRepo, categoryRepo, orderRepo, reconciler, log),
	)

	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.ErrorHandler(log))
	handler.RegisterRoutes(router.Group("/api/v1"))

	return &catalogServer{router: router, orders: orderRepo}
}

func (s *catalogServer) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
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

func (s *catalogServer) category(t *testing.T) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/v1/categories", CategoryRequest{Name: "Kurtas"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var c CategoryResponse
	require.NoError(t, json.Unmarshal(env.Data, &c))
	return c.ID
}

func (s *catalogServer) product(t *testing.T, categoryID string) ProductResponse {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":          "Cotton Kurta",
		"description":   "Everyday kurta",
		"category":      categoryID,
		"cost_price":    400,
		"selling_price": 650,
		"images":        []string{"kurta.jpg"},
		"variants": []map[string]interface{}{
			{"size": "M", "color": "Blue", "quantity": 6, "sku": "CK-M-B"},
			{"size": "L", "color": "Blue", "quantity": 4, "sku": "CK-L-B"},
		},
		"availableQuantity": 999,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var p ProductResponse
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p
}

func TestCreateProduct_IgnoresClientAvailability(t *testing.T) {
	s := newCatalogServer(t)

	p := s.product(t, s.category(t))

	assert.Equal(t, 10, p.AvailableQuantity)
	assert.Equal(t, 650.0, p.SellingPrice)
}

func TestCreateProduct_ValidationErrors(t *testing.T) {
	s := newCatalogServer(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/products", map[string]interface{}{"name": "Kurta"})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "description")
	assert.Contains(t, env.Errors, "variants")
	assert.Contains(t, env.Errors, "images")
}

func TestListProducts_PopulatesCategory(t *testing.T) {
	s := newCatalogServer(t)
	s.product(t, s.category(t))

	code, env := s.do(t, http.MethodGet, "/api/v1/products", nil)

	require.Equal(t, http.StatusOK, code)
	var list []ProductResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Category)
	assert.Equal(t, "Kurtas", list[0].Category.Name)
}

func TestUpdateProduct_RecomputesAvailability(t *testing.T) {
	s := newCatalogServer(t)
	p := s.product(t, s.category(t))

	o, err := orders.NewOrder(orders.NewOrderInput{
		Customer:      orders.Customer{Name: "Asha", Email: "asha@example.com", Phone: "9811111111"},
		Items:         []orders.Item{{ProductID: p.ID, Quantity: 3, Price: decimal.NewFromInt(650)}},
		OrderStatus:   orders.OrderStatusDelivered,
		PaymentStatus: orders.PaymentStatusPaid,
		PaymentMethod: orders.PaymentMethodCOD,
	})
	require.NoError(t, err)
	require.NoError(t, s.orders.Create(context.Background(), o))

	code, env := s.do(t, http.MethodPut, "/api/v1/products?id="+p.ID, map[string]interface{}{
		"variants": []map[string]interface{}{
			{"size": "M", "color": "Blue", "quantity": 20, "sku": "CK-M-B"},
		},
	})

	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "Product updated successfully", env.Message)
	var updated ProductResponse
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 17, updated.AvailableQuantity)
	assert.Equal(t, "Cotton Kurta", updated.Name)

	code, env = s.do(t, http.MethodDelete, "/api/v1/products?id="+p.ID, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)
}

func TestDeleteCategory_Conflicts(t *testing.T) {
	s := newCatalogServer(t)
	categoryID := s.category(t)
	s.product(t, categoryID)

	code, _ := s.do(t, http.MethodDelete, "/api/v1/categories?id="+categoryID, nil)

	assert.Equal(t, http.StatusConflict, code)
}

func TestUpdateCategory_MissingID(t *testing.T) {
	s := newCatalogServer(t)

	code, env := s.do(t, http.MethodPut, "/api/v1/categories", map[string]interface{}{"name": "Sarees"})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Category ID is required", env.Message)
}
