package rpcatalog

import (
	"context"

	"gorm.io/gorm"

	"catering/internal/app/domains/entity/etorder"
	"catering/internal/app/infra/persistence/entity"
)

// CatalogRepositoryImpl 目录仓储实现（MySQL）
type CatalogRepositoryImpl struct {
	db *gorm.DB
}

// NewCatalogRepository 创建目录仓储实例
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &CatalogRepositoryImpl{db: db}
}

// ListRestaurantsWithDishes 查询全部餐厅及其菜品
func (r *CatalogRepositoryImpl) ListRestaurantsWithDishes(ctx context.Context) ([]*RestaurantMenu, error) {
	var restaurantPOs []entity.Restaurant
	if err := r.db.WithContext(ctx).Order("id").Find(&restaurantPOs).Error; err != nil {
		return nil, err
	}

	var dishPOs []entity.Dish
	if err := r.db.WithContext(ctx).Order("id").Find(&dishPOs).Error; err != nil {
		return nil, err
	}

	menus := make([]*RestaurantMenu, 0, len(restaurantPOs))
	index := make(map[int64]*RestaurantMenu, len(restaurantPOs))
	for _, po := range restaurantPOs {
		menu := &RestaurantMenu{
			Restaurant: &etorder.Restaurant{
				ID:         po.ID,
				Name:       po.Name,
				Address:    po.Address,
				ProviderID: po.ProviderID,
			},
		}
		index[po.ID] = menu
		menus = append(menus, menu)
	}
	for _, po := range dishPOs {
		if menu, ok := index[po.RestaurantID]; ok {
			menu.Dishes = append(menu.Dishes, &etorder.Dish{
				ID:           po.ID,
				Name:         po.Name,
				Price:        po.Price,
				RestaurantID: po.RestaurantID,
			})
		}
	}
	return menus, nil
}

// GetDishesByIDs 按 ID 批量查询菜品
func (r *CatalogRepositoryImpl) GetDishesByIDs(ctx context.Context, dishIDs []int64) (map[int64]*etorder.Dish, error) {
	var pos []entity.Dish
	if err := r.db.WithContext(ctx).Where("id IN ?", dishIDs).Find(&pos).Error; err != nil {
		return nil, err
	}

	dishes := make(map[int64]*etorder.Dish, len(pos))
	for _, po := range pos {
		dishes[po.ID] = &etorder.Dish{
			ID:           po.ID,
			Name:         po.Name,
			Price:        po.Price,
			RestaurantID: po.RestaurantID,
		}
	}
	return dishes, nil
}
