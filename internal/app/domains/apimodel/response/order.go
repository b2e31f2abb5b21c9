package response

import (
	"time"

	"catering/internal/app/domains/entity/etorder"
	"catering/internal/app/domains/entity/ettracking"
)

// OrderResponse 订单响应
type OrderResponse struct {
	ID               int64               `json:"id"`
	UserID           int64               `json:"user_id"`
	Status           string              `json:"status"`
	DeliveryProvider string              `json:"delivery_provider,omitempty"`
	Total            int64               `json:"total"`
	ETA              string              `json:"eta"`
	Items            []OrderItemResponse `json:"items,omitempty"`
	CreatedAt        string              `json:"created_at"`
}

// OrderItemResponse 订单项响应
type OrderItemResponse struct {
	DishID   int64  `json:"dish_id"`
	DishName string `json:"dish_name"`
	Quantity int    `json:"quantity"`
}

// OrderListResponse 订单列表响应
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// TrackingResponse 订单追踪响应（各餐厅子订单状态快照）
type TrackingResponse struct {
	OrderID     int64                     `json:"order_id"`
	Restaurants map[string]SubOrderStatus `json:"restaurants"`
	FullyCooked bool                      `json:"fully_cooked"`
}

// SubOrderStatus 子订单状态
type SubOrderStatus struct {
	ExternalID string `json:"external_id,omitempty"`
	Status     string `json:"status"`
}

// FromOrder 领域对象转响应
func FromOrder(order *etorder.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, OrderItemResponse{
			DishID:   it.DishID,
			DishName: it.DishName,
			Quantity: it.Quantity,
		})
	}
	return OrderResponse{
		ID:               order.ID,
		UserID:           order.UserID,
		Status:           string(order.Status),
		DeliveryProvider: order.DeliveryProvider,
		Total:            order.Total,
		ETA:              order.ETA.Format(time.RFC3339),
		Items:            items,
		CreatedAt:        order.CreatedAt.Format(time.RFC3339),
	}
}

// FromOrders 批量转换
func FromOrders(orders []*etorder.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromOrder(o))
	}
	return out
}

// FromTrackingRecord 追踪记录转响应
func FromTrackingRecord(orderID int64, record *ettracking.TrackingRecord) TrackingResponse {
	restaurants := make(map[string]SubOrderStatus, len(record.Restaurants))
	for key, state := range record.Restaurants {
		restaurants[key] = SubOrderStatus{
			ExternalID: state.ExternalID,
			Status:     string(state.Status),
		}
	}
	return TrackingResponse{
		OrderID:     orderID,
		Restaurants: restaurants,
		FullyCooked: record.FullyCooked(),
	}
}
