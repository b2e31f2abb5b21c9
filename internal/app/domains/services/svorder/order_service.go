package svorder

import (
	"context"
	"fmt"
	"time"

	"catering/internal/app/domains/entity/etorder"
	"catering/internal/app/domains/repo/rpcatalog"
	"catering/internal/app/domains/repo/rporder"
	"catering/internal/app/pkg/errorx"
	"catering/internal/app/pkg/logger"
)

// Scheduler 订单派发接口（由 svschedule 实现）
type Scheduler interface {
	ScheduleOrder(ctx context.Context, order *etorder.Order, groups []*etorder.RestaurantGroup) error
}

// ItemInput 下单时的菜品输入
type ItemInput struct {
	DishID   int64
	Quantity int
}

// OrderService 订单服务
// 负责下单编排：校验菜品 → 落库 → 按餐厅分组 → 触发派发
type OrderService struct {
	orderRepo   rporder.OrderRepository
	catalogRepo rpcatalog.CatalogRepository
	scheduler   Scheduler
	logger      logger.Logger
}

// NewOrderService 创建服务实例
func NewOrderService(
	orderRepo rporder.OrderRepository,
	catalogRepo rpcatalog.CatalogRepository,
	scheduler Scheduler,
	log logger.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		scheduler:   scheduler,
		logger:      log,
	}
}

// CreateOrder 创建订单并派发
// 派发失败时订单标记为 failed 并返回错误；订单本身已落库，便于排查
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, eta time.Time, deliveryProvider string, items []ItemInput) (*etorder.Order, error) {
	if len(items) == 0 {
		return nil, etorder.ErrEmptyItems
	}

	// 1. 批量校验菜品存在性并取单价
	dishIDs := make([]int64, 0, len(items))
	for _, it := range items {
		dishIDs = append(dishIDs, it.DishID)
	}
	dishes, err := s.catalogRepo.GetDishesByIDs(ctx, dishIDs)
	if err != nil {
		return nil, fmt.Errorf("load dishes failed: %w", err)
	}

	// 2. 构造订单聚合并累计总价
	order, err := etorder.NewOrder(userID, eta, deliveryProvider)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		dish, ok := dishes[it.DishID]
		if !ok {
			return nil, errorx.NonRetriable(fmt.Sprintf("dish not found: %d", it.DishID))
		}
		if err := order.AddItem(dish, it.Quantity); err != nil {
			return nil, err
		}
	}

	// 3. 落库
	if err := s.orderRepo.CreateWithItems(ctx, order); err != nil {
		return nil, fmt.Errorf("persist order failed: %w", err)
	}
	s.logger.Infof(ctx, "[Order] Order created: order=%d, user=%d, total=%d", order.ID, order.UserID, order.Total)

	// 4. 按餐厅分组后派发
	groups, err := s.orderRepo.GetItemsGroupedByRestaurant(ctx, order.ID)
	if err == nil {
		err = s.scheduler.ScheduleOrder(ctx, order, groups)
	}
	if err != nil {
		s.logger.Errorf(ctx, "[Order] Dispatch failed, marking order failed: order=%d, err=%v", order.ID, err)
		if _, markErr := s.orderRepo.AdvanceStatus(ctx, order.ID, etorder.OrderStatusFailed); markErr != nil {
			s.logger.Errorf(ctx, "[Order] Mark order failed error: order=%d, err=%v", order.ID, markErr)
		}
		return nil, err
	}

	return order, nil
}

// GetOrder 查询订单详情
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*etorder.Order, error) {
	return s.orderRepo.GetByID(ctx, orderID)
}

// ListOrders 分页查询订单
func (s *OrderService) ListOrders(ctx context.Context, page, limit int) ([]*etorder.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.orderRepo.List(ctx, page, limit)
}
