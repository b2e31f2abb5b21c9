package svtracking

import (
	"context"
	"errors"
	"fmt"

	"catering/internal/app/domains/entity/etorder"
	"catering/internal/app/domains/entity/ettracking"
	"catering/internal/app/domains/repo/rporder"
	"catering/internal/app/domains/repo/rptracking"
	"catering/internal/app/infra/provider"
	"catering/internal/app/pkg/errorx"
	"catering/internal/app/pkg/logger"
)

// TrackingService 子订单状态合并与收敛判定服务
// 轮询 worker 与 webhook 回调走同一条更新路径：
// 读-合并-写追踪记录 → 推进聚合订单状态 → 收敛检查
type TrackingService struct {
	trackingRepo rptracking.TrackingRepository
	orderRepo    rporder.OrderRepository
	registry     *provider.Registry
	logger       logger.Logger
}

// NewTrackingService 创建服务实例
func NewTrackingService(
	trackingRepo rptracking.TrackingRepository,
	orderRepo rporder.OrderRepository,
	registry *provider.Registry,
	log logger.Logger,
) *TrackingService {
	return &TrackingService{
		trackingRepo: trackingRepo,
		orderRepo:    orderRepo,
		registry:     registry,
		logger:       log,
	}
}

// ApplySubOrderUpdate 合并一次子订单状态更新并触发收敛检查
// 返回合并后的记录与更新是否生效（旧状态/重复投递不生效，静默丢弃）
// 追踪记录缺失与餐厅键缺失都是致命错误，不做重试
func (s *TrackingService) ApplySubOrderUpdate(
	ctx context.Context,
	orderID, restaurantID int64,
	externalID string,
	status etorder.OrderStatus,
) (*ettracking.TrackingRecord, bool, error) {
	applied := false
	record, err := s.trackingRepo.UpdateRecord(ctx, orderID, func(record *ettracking.TrackingRecord) (bool, error) {
		changed, err := record.ApplyUpdate(restaurantID, externalID, status)
		if err != nil {
			return false, err
		}
		applied = changed
		return changed, nil
	})
	if errors.Is(err, rptracking.ErrRecordNotFound) {
		return nil, false, errorx.NonRetriableWrap(err, fmt.Sprintf("tracking record missing for order %d", orderID))
	}
	if errors.Is(err, ettracking.ErrRestaurantMissing) {
		return nil, false, errorx.NonRetriableWrap(err, fmt.Sprintf("restaurant %d missing in record of order %d", restaurantID, orderID))
	}
	if err != nil {
		return nil, false, err
	}

	if !applied {
		s.logger.Debugf(ctx, "[Tracking] Stale update dropped: order=%d, restaurant=%d, status=%s",
			orderID, restaurantID, status)
		return record, false, nil
	}

	s.logger.Infof(ctx, "[Tracking] Sub-order updated: order=%d, restaurant=%d, status=%s",
		orderID, restaurantID, status)

	// 任意一家餐厅开始制作就把聚合订单推进到 cooking，不必等全部；
	// failed 虽然排序靠后但不算"开始制作"，失败路径不经过 cooking
	if status == etorder.OrderStatusCooking || status == etorder.OrderStatusCooked {
		if _, err := s.orderRepo.AdvanceStatus(ctx, orderID, etorder.OrderStatusCooking); err != nil {
			return record, true, fmt.Errorf("advance order %d to cooking failed: %w", orderID, err)
		}
	}

	// 收敛检查：全部餐厅出餐完毕时推进聚合订单到 cooked
	if record.FullyCooked() {
		promoted, err := s.orderRepo.AdvanceStatus(ctx, orderID, etorder.OrderStatusCooked)
		if err != nil {
			return record, true, fmt.Errorf("advance order %d to cooked failed: %w", orderID, err)
		}
		if promoted {
			s.logger.Infof(ctx, "[Tracking] Order converged, all restaurants cooked: order=%d", orderID)
		}
	}

	return record, true, nil
}

// IsOrderFullyCooked 收敛判定（只读，可被多个 worker 并发反复调用）
// 空的餐厅表按配置缺陷处理：记日志并保守返回 false
func (s *TrackingService) IsOrderFullyCooked(ctx context.Context, orderID int64) (bool, error) {
	record, err := s.trackingRepo.GetRecord(ctx, orderID)
	if err != nil {
		return false, err
	}
	if len(record.Restaurants) == 0 {
		s.logger.Errorf(ctx, "[Tracking] Record has no restaurant entries: order=%d", orderID)
		return false, nil
	}
	return record.FullyCooked(), nil
}

// HandleProviderCallback 处理供应商 webhook 回调
// 通过外部单号索引反查内部订单，之后与轮询 worker 的单次迭代
// 走完全相同的合并路径；重复/乱序回调天然幂等
func (s *TrackingService) HandleProviderCallback(ctx context.Context, providerID, externalOrderID, remoteStatus string) error {
	client, err := s.registry.Resolve(providerID)
	if err != nil {
		return err
	}

	status, err := client.TranslateStatus(remoteStatus)
	if err != nil {
		return err
	}

	ref, err := s.trackingRepo.GetExternalRef(ctx, providerID, externalOrderID)
	if err != nil {
		return err
	}

	_, _, err = s.ApplySubOrderUpdate(ctx, ref.OrderID, ref.RestaurantID, externalOrderID, status)
	return err
}

// FailSubOrder 将子订单标记为失败并让聚合订单失败
// 轮询超过次数/期限上限时调用；失败是终态，之后迟到的回调不会复活它
func (s *TrackingService) FailSubOrder(ctx context.Context, orderID, restaurantID int64, reason string) error {
	s.logger.Errorf(ctx, "[Tracking] Sub-order failed: order=%d, restaurant=%d, reason=%s",
		orderID, restaurantID, reason)

	if _, _, err := s.ApplySubOrderUpdate(ctx, orderID, restaurantID, "", etorder.OrderStatusFailed); err != nil {
		return err
	}
	if _, err := s.orderRepo.AdvanceStatus(ctx, orderID, etorder.OrderStatusFailed); err != nil {
		return fmt.Errorf("advance order %d to failed: %w", orderID, err)
	}
	return nil
}
