package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/application"
	"github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/ports"
	httptransport "github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateOrderHandler(ctx context.Context, req httptransport.CreateOrderRequest) (httptransport.OrderResponse, error) {
	order, err := h.Service.CreateOrder(ctx, ports.CreateOrderInput{
		UserID:   req.UserID,
		Product:  req.Product,
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		return httptransport.OrderResponse{}, err
	}
	return toOrderResponse(order), nil
}

func (h Handler) GetOrderHandler(ctx context.Context, id string) (httptransport.OrderResponse, error) {
	order, err := h.Service.GetOrderByID(ctx, id)
	if err != nil {
		return httptransport.OrderResponse{}, err
	}
	return toOrderResponse(order), nil
}

func (h Handler) ListOrdersByUserHandler(ctx context.Context, userID string) (httptransport.OrderListResponse, error) {
	orders, err := h.Service.GetOrdersByUser(ctx, userID)
	if err != nil {
		return httptransport.OrderListResponse{}, err
	}
	resp := httptransport.OrderListResponse{Orders: make([]httptransport.OrderResponse, 0, len(orders))}
	for _, order := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(order))
	}
	return resp, nil
}

func toOrderResponse(order ports.Order) httptransport.OrderResponse {
	return httptransport.OrderResponse{
		ID:        order.ID,
		UserID:    order.UserID,
		Product:   order.Product,
		Quantity:  order.Quantity,
		Price:     order.Price,
		CreatedAt: order.CreatedAt.UTC().Format(time.RFC3339),
	}
}
