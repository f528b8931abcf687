package infrastructure

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"backoffice/internal/inventory/application"
	"backoffice/pkg/middleware"
)

// HTTPHandler serves the dashboard and manual reconciliation
type HTTPHandler struct {
	dashboard  *application.DashboardUseCase
	reconciler *application.Reconciler
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(dashboard *application.DashboardUseCase, reconciler *application.Reconciler) *HTTPHandler {
	return &HTTPHandler{dashboard: dashboard, reconciler: reconciler}
}

// RegisterRoutes registers the dashboard and inventory routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.GetDashboard)
	r.POST("/inventory/reconcile", h.Reconcile)
}

// DashboardResponse is the response body of GET /dashboard
type DashboardResponse struct {
	TotalRevenue     float64            `json:"totalRevenue"`
	OrdersCount      int                `json:"ordersCount"`
	AvailableStock   int                `json:"availableStock"`
	OrdersByStatus   map[string]int     `json:"ordersByStatus"`
	OversoldProducts []OversoldResponse `json:"oversoldProducts"`
	RecentOrders     []RecentResponse   `json:"recentOrders"`
}

// OversoldResponse is a product with negative availability
type OversoldResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	AvailableQuantity int    `json:"availableQuantity"`
}

// RecentResponse is one of the newest orders
type RecentResponse struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customerName"`
	TotalAmount  float64   `json:"totalAmount"`
	OrderStatus  string    `json:"orderStatus"`
	CreatedDate  time.Time `json:"createdDate"`
}

// ReconcileResponse is the response body of POST /inventory/reconcile
type ReconcileResponse struct {
	ProductID         string `json:"productId"`
	TotalQuantity     int    `json:"totalQuantity"`
	ConsumedQuantity  int    `json:"consumedQuantity"`
	AvailableQuantity int    `json:"availableQuantity"`
	Oversold          bool   `json:"oversold"`
}

// GetDashboard godoc
// @Summary Dashboard figures
// @Description Revenue of Delivered and Paid orders, order count, raw variant stock and breakdowns
// @Tags dashboard
// @Produce json
// @Success 200 {object} errors.Response{data=DashboardResponse}
// @Failure 500 {object} errors.Response
// @Router /api/v1/dashboard [get]
func (h *HTTPHandler) GetDashboard(c *gin.Context) {
	d, err := h.dashboard.GetDashboard(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	middleware.Success(c, http.StatusOK, "", NewDashboardResponse(d))
}

// Reconcile godoc
// @Summary Recompute a product's available quantity
// @Tags inventory
// @Produce json
// @Param id query string true "Product ID"
// @Success 200 {object} errors.Response{data=ReconcileResponse}
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Failure 500 {object} errors.Response
// @Router /api/v1/inventory/reconcile [post]
func (h *HTTPHandler) Reconcile(c *gin.Context) {
	id, ok := middleware.QueryID(c, "Product")
	if !ok {
		return
	}

	result, err := h.reconciler.ReconcileProduct(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	middleware.Success(c, http.StatusOK, "Stock reconciled successfully", ReconcileResponse{
		ProductID:         result.ProductID,
		TotalQuantity:     result.TotalQuantity,
		ConsumedQuantity:  result.ConsumedQuantity,
		AvailableQuantity: result.AvailableQuantity,
		Oversold:          result.Oversold(),
	})
}

// NewDashboardResponse converts the aggregate to its JSON shape
func NewDashboardResponse(d *application.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		TotalRevenue:     d.TotalRevenue.InexactFloat64(),
		OrdersCount:      d.OrdersCount,
		AvailableStock:   d.AvailableStock,
		OrdersByStatus:   make(map[string]int, len(d.OrdersByStatus)),
		OversoldProducts: make([]OversoldResponse, len(d.OversoldProducts)),
		RecentOrders:     make([]RecentResponse, len(d.RecentOrders)),
	}
	for status, n := range d.OrdersByStatus {
		resp.OrdersByStatus[string(status)] = n
	}
	for i, p := range d.OversoldProducts {
		resp.OversoldProducts[i] = OversoldResponse{ID: p.ID, Name: p.Name, AvailableQuantity: p.AvailableQuantity}
	}
	for i, o := range d.RecentOrders {
		resp.RecentOrders[i] = RecentResponse{
			ID:           o.ID,
			CustomerName: o.CustomerName,
			TotalAmount:  o.TotalAmount.InexactFloat64(),
			OrderStatus:  string(o.OrderStatus),
			CreatedDate:  o.CreatedDate,
		}
	}
	return resp
}
