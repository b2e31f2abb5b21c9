package rporder

import (
	"context"
	"errors"
	"time"

	"catering/internal/app/domains/entity/etorder"
)

// 错误定义
var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository 订单仓储接口（只定义，不实现）
// 实现在同包的 impl 文件，基于 GORM/MySQL
type OrderRepository interface {
	// CreateWithItems 在一个事务里创建订单与订单项
	CreateWithItems(ctx context.Context, order *etorder.Order) error

	// GetByID 根据 ID 查询订单（含订单项）
	GetByID(ctx context.Context, orderID int64) (*etorder.Order, error)

	// List 分页查询订单
	List(ctx context.Context, page, limit int) ([]*etorder.Order, int64, error)

	// GetItemsGroupedByRestaurant 查询订单项并按餐厅分组
	// 没有订单项的餐厅不会出现在结果里
	GetItemsGroupedByRestaurant(ctx context.Context, orderID int64) ([]*etorder.RestaurantGroup, error)

	// AdvanceStatus 状态前进守卫：仅当当前状态早于目标状态时更新
	// 返回是否真的发生了推进；重复调用是安全的幂等操作
	AdvanceStatus(ctx context.Context, orderID int64, status etorder.OrderStatus) (bool, error)

	// ListStuckBefore 查询在 before 之前创建、仍未到终态也未出餐完毕的订单
	//（超时清理任务使用）
	ListStuckBefore(ctx context.Context, before time.Time) ([]*etorder.Order, error)
}
