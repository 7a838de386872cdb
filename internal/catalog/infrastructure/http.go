package infrastructure

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"go-shop/internal/catalog/application"
	"go-shop/internal/catalog/domain"
	"go-shop/pkg/errors"
	"go-shop/pkg/middleware"
)

// HTTPHandler handles HTTP requests for the catalog
type HTTPHandler struct {
	useCase *application.ProductUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.ProductUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the product routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	products := r.Group("/products")
	{
		products.POST("", h.RegisterProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.GET("/sku/:sku", h.GetProductBySKU)
		products.POST("/:id/restock", h.RestockProduct)
	}
}

// RegisterProductRequest is the request body for registering a product
type RegisterProductRequest struct {
	SKU         string          `json:"sku" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// RestockRequest is the request body for restocking a product
type RestockRequest struct {
	Quantity int `json:"quantity"`
}

// ProductResponse is the response body for product operations
type ProductResponse struct {
	ID          uint   `json:"id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// RegisterProduct handles POST /products
func (h *HTTPHandler) RegisterProduct(c *gin.Context) {
	var req RegisterProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	product, err := h.useCase.RegisterProduct(c.Request.Context(), application.RegisterProductInput{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":     toResponse(product),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// ListProducts handles GET /products?limit=&offset=
func (h *HTTPHandler) ListProducts(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		c.Error(err)
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		c.Error(err)
		return
	}

	products, err := h.useCase.ListProducts(c.Request.Context(), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	data := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		data = append(data, toResponse(p))
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     data,
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// GetProduct handles GET /products/:id
func (h *HTTPHandler) GetProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	product, err := h.useCase.GetProduct(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toResponse(product),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// GetProductBySKU handles GET /products/sku/:sku
func (h *HTTPHandler) GetProductBySKU(c *gin.Context) {
	product, err := h.useCase.GetProductBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toResponse(product),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// RestockProduct handles POST /products/:id/restock
func (h *HTTPHandler) RestockProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	product, err := h.useCase.RestockProduct(c.Request.Context(), id, req.Quantity)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toResponse(product),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.NewValidation("invalid product id", nil)
	}
	return uint(id), nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidation("invalid "+key, nil)
	}
	return v, nil
}

func toResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID(),
		SKU:         p.SKU(),
		Name:        p.Name(),
		Description: p.Description(),
		Price:       p.Price().StringFixed(2),
		Stock:       p.Stock(),
		CreatedAt:   p.CreatedAt().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt().Format(time.RFC3339),
	}
}
