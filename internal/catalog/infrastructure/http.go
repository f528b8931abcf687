package infrastructure

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"backoffice/internal/catalog/application"
	"backoffice/internal/catalog/domain"
	"backoffice/pkg/middleware"
)

const reconcileFailedSuffix = "; stock reconciliation failed"

// HTTPHandler handles HTTP requests for categories and products
type HTTPHandler struct {
	categories *application.CategoryUseCase
	products   *application.ProductUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(categories *application.CategoryUseCase, products *application.ProductUseCase) *HTTPHandler {
	return &HTTPHandler{categories: categories, products: products}
}

// RegisterRoutes registers the catalog routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	categories := r.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.POST("", h.CreateCategory)
		categories.PUT("", h.UpdateCategory)
		categories.DELETE("", h.DeleteCategory)
	}

	products := r.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.POST("", h.CreateProduct)
		products.PUT("", h.UpdateProduct)
		products.DELETE("", h.DeleteProduct)
	}
}

// CategoryRequest is the request body for creating a category
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoryPatchRequest is the request body for updating a category
type CategoryPatchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CategoryResponse is the response body for category operations
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// VariantPayload is a variant in requests and responses
type VariantPayload struct {
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
	SKU      string `json:"sku"`
}

// ProductRequest is the request body for creating a product.
// availableQuantity is not accepted from clients.
type ProductRequest struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Category     string           `json:"category"`
	CostPrice    decimal.Decimal  `json:"cost_price" swaggertype:"number"`
	SellingPrice decimal.Decimal  `json:"selling_price" swaggertype:"number"`
	Images       []string         `json:"images"`
	Variants     []VariantPayload `json:"variants"`
}

// ProductPatchRequest is the request body for updating a product
type ProductPatchRequest struct {
	Name         *string           `json:"name"`
	Description  *string           `json:"description"`
	Category     *string           `json:"category"`
	CostPrice    *decimal.Decimal  `json:"cost_price" swaggertype:"number"`
	SellingPrice *decimal.Decimal  `json:"selling_price" swaggertype:"number"`
	Images       *[]string         `json:"images"`
	Variants     *[]VariantPayload `json:"variants"`
}

// ProductResponse is the response body for product operations.
// Category is the populated category object when it still exists.
type ProductResponse struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	CategoryID        string            `json:"categoryId"`
	Category          *CategoryResponse `json:"category,omitempty"`
	CostPrice         float64           `json:"cost_price"`
	SellingPrice      float64           `json:"selling_price"`
	Images            []string          `json:"images"`
	Variants          []VariantPayload  `json:"variants"`
	AvailableQuantity int               `json:"availableQuantity"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// ListCategories godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} errors.Response{data=[]CategoryResponse}
// @Failure 500 {object} errors.Response
// @Router /api/v1/categories [get]
func (h *HTTPHandler) ListCategories(c *gin.Context) {
	categories, err := h.categories.ListCategories(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	data := make([]CategoryResponse, len(categories))
	for i, category := range categories {
		data[i] = toCategoryResponse(category)
	}
	middleware.Success(c, http.StatusOK, "", data)
}

// CreateCategory godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body CategoryRequest true "Category"
// @Success 201 {object} errors.Response{data=CategoryResponse}
// @Failure 400 {object} errors.Response
// @Failure 500 {object} errors.Response
// @Router /api/v1/categories [post]
func (h *HTTPHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(middleware.BindError(err))
		return
	}

	category, err := h.categories.CreateCategory(c.Request.Context(), application.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		c.Error(err)
		return
	}

	middleware.Success(c, http.StatusCreated, "Category created successfully", toCategoryResponse(category))
}

// UpdateCategory godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Param id query string true "Category ID"
// @Param request body CategoryPatchRequest true "Fields to change"
// @Success 200 {object} errors.Response{data=CategoryResponse}
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Failure 500 {object} errors.Response
// @Router /api/v1/categories [put]
func (h *HTTPHandler) UpdateCategory(c *gin.Context) {
	id, ok := middleware.QueryID(c, "Category")
	if !ok {
		return
	}

	var req CategoryPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(middleware.BindError(err))
		return
	}

	category, err := h.categories.UpdateCategory(c.Request.Context(), application.UpdateCategoryInput{
		ID:    id,
		Patch: domain.CategoryPatch{Name: req.Name, Description: req.Description},
	})
	if err != nil {
		c.Error(err)
		return
	}

	middleware.Success(c, http.StatusOK, "Category updated successfully", toCategoryResponse(category))
}

// DeleteCategory godoc
// @Summary Delete a category
// @Description Fails with 409 while products reference the category
// @Tags categories
// @Produce json
// @Param id query string true "Category ID"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Failure 409 {object} errors.Response
// @Failure 500 {object} errors.Response
// @Router /api/v1/categories [delete]
func (h *HTTPHandler) DeleteCategory(c *gin.Context) {
	id, ok := middleware.QueryID(c, "Category")
	if !ok {
		return
	}

	if err := h.categories.DeleteCategory(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	middleware.Success(c, http.StatusOK, "Category deleted successfully", nil)
}

// ListProducts godoc
// @Summary List products with their category
// @Tags products
// @Produce json
// @Success 200 {object} errors.Response{data=[]ProductResponse}
// @Failure 500 {object} errors.Response
// @Router /api/v1/products [get]
func (h *HTTPHandler) ListProducts(c *gin.Context) {
	views, err := h.products.ListProducts(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	data := make([]ProductResponse, len(views))
	for i, v := range views {
		data[i] = toProductResponse(v.Product, v.Category)
	}
	middleware.Success(c, http.StatusOK, "", data)
}

// CreateProduct godoc
// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Param request body ProductRequest true "Product"
// @Success 201 {object} errors.Response{data=ProductResponse}
// @Failure 400 {object} errors.Response
// @Failure 500 {object} errors.Response
// @Router /api/v1/products [post]
func (h *HTTPHandler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(middleware.BindError(err))
		return
	}

	output, err := h.products.CreateProduct(c.Request.Context(), domain.NewProductInput{
		Name:         req.Name,
		Description:  req.Description,
		CategoryID:   req.Category,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		Images:       req.Images,
		Variants:     toVariants(req.Variants),
	})
	if err != nil {
		c.Error(err)
		return
	}

	middleware.Success(c, http.StatusCreated, "Product created successfully", toProductResponse(output.Product, nil))
}

// UpdateProduct godoc
// @Summary Update a product
// @Description Merges the given fields, validates the result and recomputes availableQuantity
// @Tags products
// @Accept json
// @Produce json
// @Param id query string true "Product ID"
// @Param request body ProductPatchRequest true "Fields to change"
// @Success 200 {object} errors.Response{data=ProductResponse}
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Failure 500 {object} errors.Response
// @Router /api/v1/products [put]
func (h *HTTPHandler) UpdateProduct(c *gin.Context) {
	id, ok := middleware.QueryID(c, "Product")
	if !ok {
		return
	}

	var req ProductPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(middleware.BindError(err))
		return
	}

	patch := domain.ProductPatch{
		Name:         req.Name,
		Description:  req.Description,
		CategoryID:   req.Category,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		Images:       req.Images,
	}
	if req.Variants != nil {
		variants := toVariants(*req.Variants)
		patch.Variants = &variants
	}

	output, err := h.products.UpdateProduct(c.Request.Context(), application.UpdateProductInput{ID: id, Patch: patch})
	if err != nil {
		c.Error(err)
		return
	}

	message := "Product updated successfully"
	if output.ReconcileErr != nil {
		message += reconcileFailedSuffix
	}
	middleware.Success(c, http.StatusOK, message, toProductResponse(output.Product, nil))
}

// DeleteProduct godoc
// @Summary Delete a product
// @Description Fails with 409 while orders reference the product
// @Tags products
// @Produce json
// @Param id query string true "Product ID"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Failure 409 {object} errors.Response
// @Failure 500 {object} errors.Response
// @Router /api/v1/products [delete]
func (h *HTTPHandler) DeleteProduct(c *gin.Context) {
	id, ok := middleware.QueryID(c, "Product")
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	middleware.Success(c, http.StatusOK, "Product deleted successfully", nil)
}

func toCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

func toProductResponse(p *domain.Product, category *domain.Category) ProductResponse {
	resp := ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		CategoryID:        p.CategoryID,
		CostPrice:         p.CostPrice.InexactFloat64(),
		SellingPrice:      p.SellingPrice.InexactFloat64(),
		Images:            p.Images,
		Variants:          make([]VariantPayload, len(p.Variants)),
		AvailableQuantity: p.AvailableQuantity,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	for i, v := range p.Variants {
		resp.Variants[i] = VariantPayload{Size: v.Size, Color: v.Color, Quantity: v.Quantity, SKU: v.SKU}
	}
	if category != nil {
		cr := toCategoryResponse(category)
		resp.Category = &cr
	}
	return resp
}

func toVariants(payload []VariantPayload) []domain.Variant {
	variants := make([]domain.Variant, len(payload))
	for i, v := range payload {
		variants[i] = domain.Variant{Size: v.Size, Color: v.Color, Quantity: v.Quantity, SKU: v.SKU}
	}
	return variants
}
