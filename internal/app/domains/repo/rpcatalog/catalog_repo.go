package rpcatalog

import (
	"context"

	"catering/internal/app/domains/entity/etorder"
)

// RestaurantMenu 餐厅及其菜品（目录查询结果）
type RestaurantMenu struct {
	Restaurant *etorder.Restaurant
	Dishes     []*etorder.Dish
}

// CatalogRepository 目录仓储接口（餐厅与菜品为只读参照数据）
type CatalogRepository interface {
	// ListRestaurantsWithDishes 查询全部餐厅及其菜品
	ListRestaurantsWithDishes(ctx context.Context) ([]*RestaurantMenu, error)

	// GetDishesByIDs 按 ID 批量查询菜品（下单校验与计价用）
	GetDishesByIDs(ctx context.Context, dishIDs []int64) (map[int64]*etorder.Dish, error)
}
