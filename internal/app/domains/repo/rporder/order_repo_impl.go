package rporder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"catering/internal/app/domains/entity/etorder"
	"catering/internal/app/infra/persistence/entity"
)

// OrderRepositoryImpl 订单仓储实现（MySQL）
type OrderRepositoryImpl struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &OrderRepositoryImpl{db: db}
}

// rawItem 订单原始菜品快照（raw_items 列的 JSON 结构）
type rawItem struct {
	DishID   int64  `json:"dish_id"`
	DishName string `json:"dish_name"`
	Quantity int    `json:"quantity"`
}

// CreateWithItems 在一个事务里创建订单与订单项
func (r *OrderRepositoryImpl) CreateWithItems(ctx context.Context, order *etorder.Order) error {
	raw := make([]rawItem, 0, len(order.Items))
	for _, item := range order.Items {
		raw = append(raw, rawItem{DishID: item.DishID, DishName: item.DishName, Quantity: item.Quantity})
	}
	rawJSON, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal raw items failed: %w", err)
	}

	po := &entity.Order{
		UserID:           order.UserID,
		Status:           string(order.Status),
		DeliveryProvider: order.DeliveryProvider,
		Total:            order.Total,
		ETA:              order.ETA,
		RawItems:         rawJSON,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(po).Error; err != nil {
			return fmt.Errorf("create order failed: %w", err)
		}
		order.ID = po.ID

		for _, item := range order.Items {
			itemPO := &entity.OrderItem{
				OrderID:  po.ID,
				DishID:   item.DishID,
				Quantity: item.Quantity,
			}
			if err := tx.Create(itemPO).Error; err != nil {
				return fmt.Errorf("create order item failed: %w", err)
			}
			item.ID = itemPO.ID
			item.OrderID = po.ID
		}
		return nil
	})
}

// GetByID 根据 ID 查询订单（含订单项）
func (r *OrderRepositoryImpl) GetByID(ctx context.Context, orderID int64) (*etorder.Order, error) {
	var po entity.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	var itemPOs []entity.OrderItem
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&itemPOs).Error; err != nil {
		return nil, err
	}

	return r.toDomainModel(&po, itemPOs)
}

// List 分页查询订单
func (r *OrderRepositoryImpl) List(ctx context.Context, page, limit int) ([]*etorder.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []entity.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&pos).Error
	if err != nil {
		return nil, 0, err
	}

	orders := make([]*etorder.Order, 0, len(pos))
	for i := range pos {
		order, err := r.toDomainModel(&pos[i], nil)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	return orders, total, nil
}

// GetItemsGroupedByRestaurant 查询订单项并按餐厅分组
func (r *OrderRepositoryImpl) GetItemsGroupedByRestaurant(ctx context.Context, orderID int64) ([]*etorder.RestaurantGroup, error) {
	// 联表取出订单项 + 菜品 + 餐厅
	type row struct {
		ItemID       int64
		DishID       int64
		DishName     string
		Quantity     int
		RestaurantID int64
		Name         string
		Address      string
		ProviderID   string
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.id AS item_id, order_items.dish_id, dishes.name AS dish_name, order_items.quantity, restaurants.id AS restaurant_id, restaurants.name, restaurants.address, restaurants.provider_id").
		Joins("JOIN dishes ON dishes.id = order_items.dish_id").
		Joins("JOIN restaurants ON restaurants.id = dishes.restaurant_id").
		Where("order_items.order_id = ?", orderID).
		Order("restaurants.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("group items by restaurant failed: %w", err)
	}

	groups := make([]*etorder.RestaurantGroup, 0)
	index := make(map[int64]*etorder.RestaurantGroup)
	for _, row := range rows {
		group, ok := index[row.RestaurantID]
		if !ok {
			group = &etorder.RestaurantGroup{
				Restaurant: &etorder.Restaurant{
					ID:         row.RestaurantID,
					Name:       row.Name,
					Address:    row.Address,
					ProviderID: row.ProviderID,
				},
			}
			index[row.RestaurantID] = group
			groups = append(groups, group)
		}
		group.Items = append(group.Items, &etorder.OrderItem{
			ID:       row.ItemID,
			OrderID:  orderID,
			DishID:   row.DishID,
			DishName: row.DishName,
			Quantity: row.Quantity,
		})
	}
	return groups, nil
}

// AdvanceStatus 状态前进守卫
// WHERE 条件限定当前状态早于目标状态，乱序/重复的推进退化为无操作
func (r *OrderRepositoryImpl) AdvanceStatus(ctx context.Context, orderID int64, status etorder.OrderStatus) (bool, error) {
	prior := etorder.PriorStatuses(status)
	priorStrs := make([]string, 0, len(prior))
	for _, s := range prior {
		priorStrs = append(priorStrs, string(s))
	}

	result := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where("id = ? AND status IN ?", orderID, priorStrs).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListStuckBefore 查询超过期限仍未出餐完毕的订单
func (r *OrderRepositoryImpl) ListStuckBefore(ctx context.Context, before time.Time) ([]*etorder.Order, error) {
	var pos []entity.Order
	err := r.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?",
			[]string{string(etorder.OrderStatusNotStarted), string(etorder.OrderStatusCooking)}, before).
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*etorder.Order, 0, len(pos))
	for i := range pos {
		order, err := r.toDomainModel(&pos[i], nil)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// toDomainModel 将 GORM 模型转换为领域对象
func (r *OrderRepositoryImpl) toDomainModel(po *entity.Order, itemPOs []entity.OrderItem) (*etorder.Order, error) {
	status, err := etorder.ParseStatus(po.Status)
	if err != nil {
		return nil, err
	}

	// 订单项的菜品名从快照恢复，避免再查菜品表
	names := make(map[int64]string)
	if len(po.RawItems) > 0 {
		var raw []rawItem
		if err := json.Unmarshal(po.RawItems, &raw); err == nil {
			for _, item := range raw {
				names[item.DishID] = item.DishName
			}
		}
	}

	items := make([]*etorder.OrderItem, 0, len(itemPOs))
	for _, item := range itemPOs {
		items = append(items, &etorder.OrderItem{
			ID:       item.ID,
			OrderID:  item.OrderID,
			DishID:   item.DishID,
			DishName: names[item.DishID],
			Quantity: item.Quantity,
		})
	}

	return &etorder.Order{
		ID:               po.ID,
		UserID:           po.UserID,
		Status:           status,
		DeliveryProvider: po.DeliveryProvider,
		Total:            po.Total,
		ETA:              po.ETA,
		Items:            items,
		CreatedAt:        po.CreatedAt,
		UpdatedAt:        po.UpdatedAt,
	}, nil
}
