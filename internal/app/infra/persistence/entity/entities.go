package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Restaurant 餐厅持久化模型
type Restaurant struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string `gorm:"column:name;type:varchar(255);not null"`
	Address    string `gorm:"column:address;type:text;not null"`
	ProviderID string `gorm:"column:provider_id;type:varchar(32);not null;index:idx_provider"`
}

// TableName 指定表名
func (Restaurant) TableName() string {
	return "restaurants"
}

// Dish 菜品持久化模型
type Dish struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string `gorm:"column:name;type:varchar(255);not null"`
	Price        int64  `gorm:"column:price;not null"`
	RestaurantID int64  `gorm:"column:restaurant_id;not null;index:idx_restaurant"`
}

// TableName 指定表名
func (Dish) TableName() string {
	return "dishes"
}

// Order 订单持久化模型
type Order struct {
	ID               int64  `gorm:"column:id;primaryKey;autoIncrement"`
	UserID           int64  `gorm:"column:user_id;not null;index:idx_user"`
	Status           string `gorm:"column:status;type:varchar(16);not null;default:'not_started';index:idx_status_created,priority:1"`
	DeliveryProvider string `gorm:"column:delivery_provider;type:varchar(20)"`
	Total            int64  `gorm:"column:total;not null"`
	ETA              time.Time `gorm:"column:eta;type:date;not null"`

	// 下单时的原始菜品快照（排障与审计用，结构不随菜品表变化）
	RawItems datatypes.JSON `gorm:"column:raw_items;type:json;not null"`

	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_status_created,priority:2"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单项持久化模型
type OrderItem struct {
	ID       int64 `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID  int64 `gorm:"column:order_id;not null;index:idx_order"`
	DishID   int64 `gorm:"column:dish_id;not null"`
	Quantity int   `gorm:"column:quantity;not null"`
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
