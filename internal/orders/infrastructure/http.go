package infrastructure

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"backoffice/internal/orders/application"
	"backoffice/internal/orders/domain"
	"backoffice/pkg/middleware"
)

// HTTPHandler handles HTTP requests for orders
type HTTPHandler struct {
	useCase *application.OrderUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.OrderUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the order routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("", h.CreateOrder)
		orders.PUT("", h.UpdateOrder)
		orders.DELETE("", h.DeleteOrder)
	}
}

// CustomerPayload is the customer in requests and responses
type CustomerPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Province string `json:"province,omitempty"`
	City     string `json:"city,omitempty"`
	Address  string `json:"address,omitempty"`
	Landmark string `json:"landmark,omitempty"`
}

// ItemRequest is an order line in requests
type ItemRequest struct {
	Product  string          `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price" swaggertype:"number"`
}

// CreateOrderRequest is the request body for creating an order.
// totalAmount is derived from the items and ignored when sent.
type CreateOrderRequest struct {
	Customer        CustomerPayload `json:"customer"`
	Items           []ItemRequest   `json:"items"`
	Discount        decimal.Decimal `json:"discount" swaggertype:"number"`
	AdditionalPrice decimal.Decimal `json:"additionalPrice" swaggertype:"number"`
	OrderStatus     string          `json:"orderStatus" example:"Pending"`
	PaymentStatus   string          `json:"paymentStatus" example:"Unpaid"`
	PaymentMethod   string          `json:"paymentMethod" example:"COD"`
	OrderNote       string          `json:"orderNote"`
}

// UpdateOrderRequest is the request body for updating an order
type UpdateOrderRequest struct {
	Customer        *CustomerPayload `json:"customer"`
	Items           *[]ItemRequest   `json:"items"`
	Discount        *decimal.Decimal `json:"discount" swaggertype:"number"`
	AdditionalPrice *decimal.Decimal `json:"additionalPrice" swaggertype:"number"`
	OrderStatus     *string          `json:"orderStatus"`
	PaymentStatus   *string          `json:"paymentStatus"`
	PaymentMethod   *string          `json:"paymentMethod"`
	OrderNote       *string          `json:"orderNote"`
}

// ItemResponse is an order line in responses
type ItemResponse struct {
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderResponse is the response body for order operations
type OrderResponse struct {
	ID              string          `json:"id"`
	Customer        CustomerPayload `json:"customer"`
	Items           []ItemResponse  `json:"items"`
	TotalAmount     float64         `json:"totalAmount"`
	Discount        float64         `json:"discount"`
	AdditionalPrice float64         `json:"additionalPrice"`
	OrderStatus     string          `json:"orderStatus"`
	PaymentStatus   string          `json:"paymentStatus"`
	PaymentMethod   string          `json:"paymentMethod"`
	OrderNote       string          `json:"orderNote,omitempty"`
	CreatedDate     time.Time       `json:"createdDate"`
	ModifiedDate    time.Time       `json:"modifiedDate"`
}

// ListOrders godoc
// @Summary List orders
// @Tags orders
// @Produce json
// @Success 200 {object} errors.Response{data=[]OrderResponse}
// @Failure 500 {object} errors.Response
// @Router /api/v1/orders [get]
func (h *HTTPHandler) ListOrders(c *gin.Context) {
	orders, err := h.useCase.ListOrders(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	data := make([]OrderResponse, len(orders))
	for i, o := range orders {
		data[i] = ToOrderResponse(o)
	}
	middleware.Success(c, http.StatusOK, "", data)
}

// GetOrder godoc
// @Summary Get an order by ID
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} errors.Response{data=OrderResponse}
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Failure 500 {object} errors.Response
// @Router /api/v1/orders/{id} [get]
func (h *HTTPHandler) GetOrder(c *gin.Context) {
	order, err := h.useCase.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	middleware.Success(c, http.StatusOK, "", ToOrderResponse(order))
}

// CreateOrder godoc
// @Summary Create an order
// @Description Validates every field, derives totalAmount and recomputes stock of the ordered products
// @Tags orders
// @Accept json
// @Produce json
// @Param request body CreateOrderRequest true "Order"
// @Success 201 {object} errors.Response{data=OrderResponse}
// @Failure 400 {object} errors.Response
// @Failure 500 {object} errors.Response
// @Router /api/v1/orders [post]
func (h *HTTPHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(middleware.BindError(err))
		return
	}

	output, err := h.useCase.CreateOrder(c.Request.Context(), domain.NewOrderInput{
		Customer:        toCustomer(req.Customer),
		Items:           toItems(req.Items),
		Discount:        req.Discount,
		AdditionalPrice: req.AdditionalPrice,
		OrderStatus:     domain.OrderStatus(req.OrderStatus),
		PaymentStatus:   domain.PaymentStatus(req.PaymentStatus),
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		OrderNote:       req.OrderNote,
	})
	if err != nil {
		c.Error(err)
		return
	}

	middleware.Success(c, http.StatusCreated, message("Order created successfully", output), ToOrderResponse(output.Order))
}

// UpdateOrder godoc
// @Summary Update an order
// @Description Merges the given fields, re-validates the order and recomputes stock of old and new products
// @Tags orders
// @Accept json
// @Produce json
// @Param id query string true "Order ID"
// @Param request body UpdateOrderRequest true "Fields to change"
// @Success 200 {object} errors.Response{data=OrderResponse}
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Failure 500 {object} errors.Response
// @Router /api/v1/orders [put]
func (h *HTTPHandler) UpdateOrder(c *gin.Context) {
	id, ok := middleware.QueryID(c, "Order")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(middleware.BindError(err))
		return
	}

	output, err := h.useCase.UpdateOrder(c.Request.Context(), application.UpdateOrderInput{
		ID:    id,
		Patch: toPatch(req),
	})
	if err != nil {
		c.Error(err)
		return
	}

	middleware.Success(c, http.StatusOK, message("Order updated successfully", output), ToOrderResponse(output.Order))
}

// DeleteOrder godoc
// @Summary Delete an order
// @Description Deletes the order and recomputes stock of its products
// @Tags orders
// @Produce json
// @Param id query string true "Order ID"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Failure 500 {object} errors.Response
// @Router /api/v1/orders [delete]
func (h *HTTPHandler) DeleteOrder(c *gin.Context) {
	id, ok := middleware.QueryID(c, "Order")
	if !ok {
		return
	}

	output, err := h.useCase.DeleteOrder(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	middleware.Success(c, http.StatusOK, message("Order deleted successfully", output), nil)
}

func message(base string, output *application.OrderOutput) string {
	if output.ReconcileErr != nil {
		return base + "; stock reconciliation failed"
	}
	return base
}

// ToOrderResponse converts a domain order to its JSON shape
func ToOrderResponse(o *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID: o.ID,
		Customer: CustomerPayload{
			Name:     o.Customer.Name,
			Email:    o.Customer.Email,
			Phone:    o.Customer.Phone,
			Province: o.Customer.Province,
			City:     o.Customer.City,
			Address:  o.Customer.Address,
			Landmark: o.Customer.Landmark,
		},
		Items:           make([]ItemResponse, len(o.Items)),
		TotalAmount:     o.TotalAmount.InexactFloat64(),
		Discount:        o.Discount.InexactFloat64(),
		AdditionalPrice: o.AdditionalPrice.InexactFloat64(),
		OrderStatus:     string(o.OrderStatus),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   string(o.PaymentMethod),
		OrderNote:       o.OrderNote,
		CreatedDate:     o.CreatedDate,
		ModifiedDate:    o.ModifiedDate,
	}
	for i, item := range o.Items {
		resp.Items[i] = ItemResponse{Product: item.ProductID, Quantity: item.Quantity, Price: item.Price.InexactFloat64()}
	}
	return resp
}

func toCustomer(p CustomerPayload) domain.Customer {
	return domain.Customer{
		Name:     p.Name,
		Email:    p.Email,
		Phone:    p.Phone,
		Province: p.Province,
		City:     p.City,
		Address:  p.Address,
		Landmark: p.Landmark,
	}
}

func toItems(req []ItemRequest) []domain.Item {
	items := make([]domain.Item, len(req))
	for i, item := range req {
		items[i] = domain.Item{ProductID: item.Product, Quantity: item.Quantity, Price: item.Price}
	}
	return items
}

func toPatch(req UpdateOrderRequest) domain.OrderPatch {
	patch := domain.OrderPatch{
		Discount:        req.Discount,
		AdditionalPrice: req.AdditionalPrice,
		OrderNote:       req.OrderNote,
	}
	if req.Customer != nil {
		customer := toCustomer(*req.Customer)
		patch.Customer = &customer
	}
	if req.Items != nil {
		items := toItems(*req.Items)
		patch.Items = &items
	}
	if req.OrderStatus != nil {
		s := domain.OrderStatus(*req.OrderStatus)
		patch.OrderStatus = &s
	}
	if req.PaymentStatus != nil {
		s := domain.PaymentStatus(*req.PaymentStatus)
		patch.PaymentStatus = &s
	}
	if req.PaymentMethod != nil {
		m := domain.PaymentMethod(*req.PaymentMethod)
		patch.PaymentMethod = &m
	}
	return patch
}
