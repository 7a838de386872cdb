package infrastructure

import (
	"context"
	"time"

	orderspb "go-shop/api/orders/v1"
	"go-shop/internal/orders/application"
	"go-shop/internal/orders/domain"
)

// GRPCServer implements the gRPC OrderServiceServer
type GRPCServer struct {
	useCase *application.OrderUseCase
}

// NewGRPCServer creates a new gRPC server
func NewGRPCServer(useCase *application.OrderUseCase) *GRPCServer {
	return &GRPCServer{useCase: useCase}
}

// PlaceOrder implements OrderServiceServer.PlaceOrder
func (s *GRPCServer) PlaceOrder(ctx context.Context, req *orderspb.PlaceOrderRequest) (*orderspb.Order, error) {
	items := make([]application.PlaceOrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = application.PlaceOrderItem{
			ProductID: uint(item.ProductID),
			Quantity:  int(item.Quantity),
		}
	}

	order, err := s.useCase.PlaceOrder(ctx, application.PlaceOrderInput{
		CustomerID: uint(req.CustomerID),
		Items:      items,
	})
	if err != nil {
		return nil, err
	}
	return toProto(order), nil
}

// GetOrder implements OrderServiceServer.GetOrder
func (s *GRPCServer) GetOrder(ctx context.Context, req *orderspb.OrderIDRequest) (*orderspb.Order, error) {
	return s.reply(s.useCase.GetOrder(ctx, uint(req.ID)))
}

// ConfirmOrder implements OrderServiceServer.ConfirmOrder
func (s *GRPCServer) ConfirmOrder(ctx context.Context, req *orderspb.OrderIDRequest) (*orderspb.Order, error) {
	return s.reply(s.useCase.ConfirmOrder(ctx, uint(req.ID)))
}

// ShipOrder implements OrderServiceServer.ShipOrder
func (s *GRPCServer) ShipOrder(ctx context.Context, req *orderspb.OrderIDRequest) (*orderspb.Order, error) {
	return s.reply(s.useCase.ShipOrder(ctx, uint(req.ID)))
}

// DeliverOrder implements OrderServiceServer.DeliverOrder
func (s *GRPCServer) DeliverOrder(ctx context.Context, req *orderspb.OrderIDRequest) (*orderspb.Order, error) {
	return s.reply(s.useCase.DeliverOrder(ctx, uint(req.ID)))
}

// CancelOrder implements OrderServiceServer.CancelOrder
func (s *GRPCServer) CancelOrder(ctx context.Context, req *orderspb.OrderIDRequest) (*orderspb.Order, error) {
	return s.reply(s.useCase.CancelOrder(ctx, uint(req.ID)))
}

// ListCustomerOrders implements OrderServiceServer.ListCustomerOrders
func (s *GRPCServer) ListCustomerOrders(ctx context.Context, req *orderspb.CustomerIDRequest) (*orderspb.OrderList, error) {
	orders, err := s.useCase.ListCustomerOrders(ctx, uint(req.ID))
	if err != nil {
		return nil, err
	}

	list := &orderspb.OrderList{Orders: make([]orderspb.Order, len(orders))}
	for i, o := range orders {
		list.Orders[i] = *toProto(o)
	}
	return list, nil
}

func (s *GRPCServer) reply(order *domain.Order, err error) (*orderspb.Order, error) {
	if err != nil {
		return nil, err
	}
	return toProto(order), nil
}

func toProto(order *domain.Order) *orderspb.Order {
	items := order.Items()
	lines := make([]orderspb.OrderLine, len(items))
	for i, item := range items {
		lines[i] = orderspb.OrderLine{
			ID:          uint64(item.ID()),
			Line:        int32(item.Line()),
			ProductID:   uint64(item.ProductID()),
			ProductName: item.ProductName(),
			UnitPrice:   item.UnitPrice().StringFixed(2),
			Quantity:    int32(item.Quantity()),
			Subtotal:    item.Subtotal().StringFixed(2),
		}
	}

	return &orderspb.Order{
		ID:         uint64(order.ID()),
		CustomerID: uint64(order.CustomerID()),
		Status:     order.Status().String(),
		Total:      order.Total().StringFixed(2),
		Items:      lines,
		CreatedAt:  order.CreatedAt().Format(time.RFC3339),
		UpdatedAt:  order.UpdatedAt().Format(time.RFC3339),
	}
}
