package request

import (
	"time"

	"catering/internal/app/domains/services/svorder"
)

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	UserID           int64              `json:"user_id" binding:"required,gt=0"`
	ETA              string             `json:"eta" binding:"required"`
	DeliveryProvider string             `json:"delivery_provider"`
	Items            []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderItemRequest 下单菜品
type OrderItemRequest struct {
	DishID   int64 `json:"dish_id" binding:"required,gt=0"`
	Quantity int   `json:"quantity" binding:"required,min=1,max=20"`
}

// ParseETA 解析期望送达时间（RFC3339 或纯日期）
func (r *CreateOrderRequest) ParseETA() (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, r.ETA); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", r.ETA, time.Local)
}

// ToItemInputs 转换为服务层输入
func (r *CreateOrderRequest) ToItemInputs() []svorder.ItemInput {
	items := make([]svorder.ItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, svorder.ItemInput{
			DishID:   it.DishID,
			Quantity: it.Quantity,
		})
	}
	return items
}

// ListOrdersRequest 订单列表查询参数
type ListOrdersRequest struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=20" binding:"min=1,max=100"`
}

// ProviderCallbackRequest 供应商 webhook 回调请求体
type ProviderCallbackRequest struct {
	ID     string `json:"id" binding:"required"`
	Status string `json:"status" binding:"required"`
}
