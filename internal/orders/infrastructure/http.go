package infrastructure

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	orderspb "go-shop/api/orders/v1"
	"go-shop/internal/orders/application"
	"go-shop/internal/orders/domain"
	"go-shop/pkg/errors"
	"go-shop/pkg/middleware"
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
		orders.POST("", h.PlaceOrder)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/confirm", h.ConfirmOrder)
		orders.POST("/:id/ship", h.ShipOrder)
		orders.POST("/:id/deliver", h.DeliverOrder)
		orders.POST("/:id/cancel", h.CancelOrder)
	}
	r.GET("/customers/:id/orders", h.ListCustomerOrders)
}

// PlaceOrderRequest is the request body for placing an order. Field checks
// are left to the use case so every rejection carries its domain reason.
type PlaceOrderRequest struct {
	CustomerID uint             `json:"customer_id"`
	Items      []PlaceOrderLine `json:"items"`
}

// PlaceOrderLine is one requested line
type PlaceOrderLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// OrderResponse is the response body for order operations
type OrderResponse = orderspb.Order

type transitionFunc func(ctx context.Context, id uint) (*domain.Order, error)

// PlaceOrder handles POST /orders
func (h *HTTPHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	items := make([]application.PlaceOrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = application.PlaceOrderItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	order, err := h.useCase.PlaceOrder(c.Request.Context(), application.PlaceOrderInput{
		CustomerID: req.CustomerID,
		Items:      items,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":     toProto(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// GetOrder handles GET /orders/:id
func (h *HTTPHandler) GetOrder(c *gin.Context) {
	id, err := parseID(c, "order")
	if err != nil {
		c.Error(err)
		return
	}

	order, err := h.useCase.GetOrder(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toProto(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// ListCustomerOrders handles GET /customers/:id/orders
func (h *HTTPHandler) ListCustomerOrders(c *gin.Context) {
	id, err := parseID(c, "customer")
	if err != nil {
		c.Error(err)
		return
	}

	orders, err := h.useCase.ListCustomerOrders(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	data := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		data = append(data, toProto(o))
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     data,
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// ConfirmOrder handles POST /orders/:id/confirm
func (h *HTTPHandler) ConfirmOrder(c *gin.Context) {
	h.transition(c, h.useCase.ConfirmOrder)
}

// ShipOrder handles POST /orders/:id/ship
func (h *HTTPHandler) ShipOrder(c *gin.Context) {
	h.transition(c, h.useCase.ShipOrder)
}

// DeliverOrder handles POST /orders/:id/deliver
func (h *HTTPHandler) DeliverOrder(c *gin.Context) {
	h.transition(c, h.useCase.DeliverOrder)
}

// CancelOrder handles POST /orders/:id/cancel
func (h *HTTPHandler) CancelOrder(c *gin.Context) {
	h.transition(c, h.useCase.CancelOrder)
}

func (h *HTTPHandler) transition(c *gin.Context, apply transitionFunc) {
	id, err := parseID(c, "order")
	if err != nil {
		c.Error(err)
		return
	}

	order, err := apply(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toProto(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

func parseID(c *gin.Context, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.NewValidation("invalid "+what+" id", nil)
	}
	return uint(id), nil
}
