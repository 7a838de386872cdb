package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"

	orderspb "go-shop/api/orders/v1"
	"go-shop/pkg/errors"
	"go-shop/pkg/middleware"
)

// Handler handles all gateway HTTP requests
type Handler struct {
	ordersClient orderspb.OrderServiceClient
}

// NewHandler creates a new gateway handler
func NewHandler(ordersClient orderspb.OrderServiceClient) *Handler {
	return &Handler{ordersClient: ordersClient}
}

// RegisterRoutes registers all gateway routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
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

// =============================================================================
// Request/Response DTOs
// =============================================================================

// PlaceOrderRequest represents the request body for placing an order
type PlaceOrderRequest struct {
	CustomerID uint64             `json:"customer_id" example:"1"`
	Items      []OrderLineRequest `json:"items"`
}

// OrderLineRequest represents one requested product
type OrderLineRequest struct {
	ProductID uint64 `json:"product_id" example:"7"`
	Quantity  int32  `json:"quantity" example:"2"`
}

// OrderResponse represents an order in responses
type OrderResponse struct {
	ID         uint64              `json:"id" example:"1"`
	CustomerID uint64              `json:"customer_id" example:"1"`
	Status     string              `json:"status" example:"PENDING"`
	Total      string              `json:"total" example:"99.95"`
	Items      []OrderLineResponse `json:"items"`
	CreatedAt  string              `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt  string              `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// OrderLineResponse represents an order line in responses
type OrderLineResponse struct {
	ID          uint64 `json:"id" example:"1"`
	Line        int32  `json:"line" example:"1"`
	ProductID   uint64 `json:"product_id" example:"7"`
	ProductName string `json:"product_name" example:"Widget"`
	UnitPrice   string `json:"unit_price" example:"19.99"`
	Quantity    int32  `json:"quantity" example:"5"`
	Subtotal    string `json:"subtotal" example:"99.95"`
}

// SuccessResponse is the standard success response
type SuccessResponse struct {
	Data    interface{} `json:"data"`
	TraceID string      `json:"trace_id" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   ErrorBody `json:"error"`
	TraceID string    `json:"trace_id" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// ErrorBody contains error details
type ErrorBody struct {
	Code    string      `json:"code" example:"UNPROCESSABLE"`
	Reason  string      `json:"reason,omitempty" example:"INSUFFICIENT_STOCK"`
	Message string      `json:"message" example:"insufficient stock for Widget"`
	Details interface{} `json:"details,omitempty"`
}

// =============================================================================
// Orders Handlers
// =============================================================================

// PlaceOrder places a new order
// @Summary Place an order
// @Description Reserve stock for every line and create a PENDING order in one transaction
// @Tags orders
// @Accept json
// @Produce json
// @Param request body PlaceOrderRequest true "Order placement request"
// @Success 201 {object} SuccessResponse{data=OrderResponse} "Order placed"
// @Failure 400 {object} ErrorResponse "Missing customer, empty order, missing product or invalid quantity"
// @Failure 404 {object} ErrorResponse "Customer or product not found"
// @Failure 422 {object} ErrorResponse "Insufficient stock"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/orders [post]
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	lines := make([]orderspb.LineRequest, len(req.Items))
	for i, item := range req.Items {
		lines[i] = orderspb.LineRequest{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	resp, err := h.ordersClient.PlaceOrder(c.Request.Context(), &orderspb.PlaceOrderRequest{
		CustomerID: req.CustomerID,
		Items:      lines,
	})
	if err != nil {
		c.Error(rpcError(err))
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Data:    toOrderResponse(resp),
		TraceID: c.GetString(middleware.TraceIDKey),
	})
}

// GetOrder retrieves an order by ID
// @Summary Get an order by ID
// @Description Retrieve an order with its lines
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} SuccessResponse{data=OrderResponse} "Order retrieved successfully"
// @Failure 400 {object} ErrorResponse "Invalid order ID"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	h.call(c, http.StatusOK, h.ordersClient.GetOrder)
}

// ConfirmOrder confirms a pending order
// @Summary Confirm an order
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} SuccessResponse{data=OrderResponse} "Order confirmed"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Failure 409 {object} ErrorResponse "Illegal state transition"
// @Router /api/v1/orders/{id}/confirm [post]
func (h *Handler) ConfirmOrder(c *gin.Context) {
	h.call(c, http.StatusOK, h.ordersClient.ConfirmOrder)
}

// ShipOrder marks a confirmed order as shipped
// @Summary Ship an order
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} SuccessResponse{data=OrderResponse} "Order shipped"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Failure 409 {object} ErrorResponse "Illegal state transition"
// @Router /api/v1/orders/{id}/ship [post]
func (h *Handler) ShipOrder(c *gin.Context) {
	h.call(c, http.StatusOK, h.ordersClient.ShipOrder)
}

// DeliverOrder marks a shipped order as delivered
// @Summary Deliver an order
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} SuccessResponse{data=OrderResponse} "Order delivered"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Failure 409 {object} ErrorResponse "Illegal state transition"
// @Router /api/v1/orders/{id}/deliver [post]
func (h *Handler) DeliverOrder(c *gin.Context) {
	h.call(c, http.StatusOK, h.ordersClient.DeliverOrder)
}

// CancelOrder cancels an order that has not been delivered
// @Summary Cancel an order
// @Description Reserved stock is not returned to the catalog
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} SuccessResponse{data=OrderResponse} "Order cancelled"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Failure 409 {object} ErrorResponse "Illegal state transition"
// @Router /api/v1/orders/{id}/cancel [post]
func (h *Handler) CancelOrder(c *gin.Context) {
	h.call(c, http.StatusOK, h.ordersClient.CancelOrder)
}

// ListCustomerOrders lists a customer's orders
// @Summary List a customer's orders
// @Description Orders are returned newest first
// @Tags orders
// @Produce json
// @Param id path int true "Customer ID"
// @Success 200 {object} SuccessResponse{data=[]OrderResponse} "Orders retrieved successfully"
// @Failure 400 {object} ErrorResponse "Invalid customer ID"
// @Failure 404 {object} ErrorResponse "Customer not found"
// @Router /api/v1/customers/{id}/orders [get]
func (h *Handler) ListCustomerOrders(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.Error(errors.NewValidation("invalid customer id", nil))
		return
	}

	resp, err := h.ordersClient.ListCustomerOrders(c.Request.Context(), &orderspb.CustomerIDRequest{ID: id})
	if err != nil {
		c.Error(rpcError(err))
		return
	}

	data := make([]OrderResponse, len(resp.Orders))
	for i := range resp.Orders {
		data[i] = toOrderResponse(&resp.Orders[i])
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Data:    data,
		TraceID: c.GetString(middleware.TraceIDKey),
	})
}

type orderCall func(ctx context.Context, in *orderspb.OrderIDRequest, opts ...grpc.CallOption) (*orderspb.Order, error)

func (h *Handler) call(c *gin.Context, status int, rpc orderCall) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.Error(errors.NewValidation("invalid order id", nil))
		return
	}

	resp, err := rpc(c.Request.Context(), &orderspb.OrderIDRequest{ID: id})
	if err != nil {
		c.Error(rpcError(err))
		return
	}

	c.JSON(status, SuccessResponse{
		Data:    toOrderResponse(resp),
		TraceID: c.GetString(middleware.TraceIDKey),
	})
}

// rpcError keeps errors already translated by the client interceptor
func rpcError(err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return errors.FromGRPCStatus(err)
}

func toOrderResponse(o *orderspb.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(o.Items))
	for i, l := range o.Items {
		lines[i] = OrderLineResponse{
			ID:          l.ID,
			Line:        l.Line,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			Subtotal:    l.Subtotal,
		}
	}

	return OrderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Status:     o.Status,
		Total:      o.Total,
		Items:      lines,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}
