package etorder

import (
	"errors"
	"time"
)

// 错误定义
var (
	ErrInvalidUserID   = errors.New("invalid user ID")
	ErrEmptyItems      = errors.New("order must contain at least one item")
	ErrInvalidQuantity = errors.New("item quantity must be between 1 and 20")
	ErrInvalidETA      = errors.New("ETA must be at least one day after today")
)

// Restaurant 餐厅（不可变的分片键）
type Restaurant struct {
	ID         int64
	Name       string
	Address    string
	ProviderID string // 稳定的供应商标识，派发时据此选择集成方式
}

// Dish 菜品
type Dish struct {
	ID           int64
	Name         string
	Price        int64 // 单位：分
	RestaurantID int64
}

// Order 订单聚合根（领域对象）
type Order struct {
	ID               int64
	UserID           int64
	Status           OrderStatus
	DeliveryProvider string
	Total            int64
	ETA              time.Time
	Items            []*OrderItem
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderItem 订单项（创建后不可变）
type OrderItem struct {
	ID       int64
	OrderID  int64
	DishID   int64
	DishName string
	Quantity int
}

// RestaurantGroup 按餐厅分组后的订单项（fan-out 的输入）
type RestaurantGroup struct {
	Restaurant *Restaurant
	Items      []*OrderItem
}

// NewOrder 创建订单（工厂方法）
// 业务规则：数量 1..20，ETA 至少为明天；总价由菜品单价计算
func NewOrder(userID int64, eta time.Time, deliveryProvider string) (*Order, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	if daysUntil(eta) < 1 {
		return nil, ErrInvalidETA
	}

	return &Order{
		UserID:           userID,
		Status:           OrderStatusNotStarted,
		DeliveryProvider: deliveryProvider,
		ETA:              eta,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}, nil
}

// AddItem 追加订单项并累计总价
func (o *Order) AddItem(dish *Dish, quantity int) error {
	if quantity < 1 || quantity > 20 {
		return ErrInvalidQuantity
	}
	o.Items = append(o.Items, &OrderItem{
		DishID:   dish.ID,
		DishName: dish.Name,
		Quantity: quantity,
	})
	o.Total += dish.Price * int64(quantity)
	return nil
}

// daysUntil 距今天数（按日历日计算）
// 统一换算到 ETA 所在时区再取日历日，跨时区不会差一天
func daysUntil(t time.Time) int {
	now := time.Now().In(t.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, t.Location())
	target := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return int(target.Sub(today).Hours() / 24)
}
