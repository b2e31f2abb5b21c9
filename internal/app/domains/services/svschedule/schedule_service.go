package svschedule

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"catering/internal/app/domains/entity/etorder"
	"catering/internal/app/domains/entity/ettracking"
	"catering/internal/app/domains/model"
	"catering/internal/app/domains/repo/rptracking"
	"catering/internal/app/infra/provider"
	"catering/internal/app/pkg/errorx"
	"catering/internal/app/pkg/logger"
)

// Queue 消息发布接口（由 lmstfy 客户端实现）
type Queue interface {
	Publish(queue string, data []byte, ttl, delay uint32) error
}

// ScheduleService 订单派发服务（fan-out）
// 把订单按餐厅拆成子订单，初始化追踪记录，再逐个投递子订单任务。
// 全有或全无：任何一家餐厅的供应商解析失败就整单拒绝，不留半成品记录
type ScheduleService struct {
	trackingRepo   rptracking.TrackingRepository
	registry       *provider.Registry
	queue          Queue
	providerQueues map[string]string // provider ID → 队列名
	recordTTL      time.Duration
	logger         logger.Logger
}

// NewScheduleService 创建服务实例
func NewScheduleService(
	trackingRepo rptracking.TrackingRepository,
	registry *provider.Registry,
	queue Queue,
	providerQueues map[string]string,
	recordTTL time.Duration,
	log logger.Logger,
) *ScheduleService {
	return &ScheduleService{
		trackingRepo:   trackingRepo,
		registry:       registry,
		queue:          queue,
		providerQueues: providerQueues,
		recordTTL:      recordTTL,
		logger:         log,
	}
}

// ScheduleOrder 派发订单
// 1. 校验每家餐厅都有已注册的供应商与队列（先校验后落盘）
// 2. 初始化追踪记录（所有餐厅 not_started）
// 3. 每家餐厅投递一条子订单任务
// 投递途中失败时删除追踪记录回滚，订单由调用方标记失败
func (s *ScheduleService) ScheduleOrder(ctx context.Context, order *etorder.Order, groups []*etorder.RestaurantGroup) error {
	if len(groups) == 0 {
		return errorx.NonRetriable(fmt.Sprintf("order %d has no dispatchable items", order.ID))
	}

	// 1. 先解析全部供应商，未注册的供应商导致整单拒绝
	restaurantIDs := make([]int64, 0, len(groups))
	for _, g := range groups {
		if _, err := s.registry.Resolve(g.Restaurant.ProviderID); err != nil {
			return err
		}
		if _, ok := s.providerQueues[g.Restaurant.ProviderID]; !ok {
			return errorx.NonRetriable(fmt.Sprintf("no queue configured for provider: %s", g.Restaurant.ProviderID))
		}
		restaurantIDs = append(restaurantIDs, g.Restaurant.ID)
	}

	// 2. 初始化追踪记录
	record := ettracking.NewTrackingRecord(restaurantIDs)
	if err := s.trackingRepo.CreateRecord(ctx, order.ID, record, s.recordTTL); err != nil {
		return fmt.Errorf("create tracking record for order %d failed: %w", order.ID, err)
	}

	// 3. 逐餐厅投递子订单任务
	for _, g := range groups {
		data, err := s.buildCookJob(order.ID, g)
		if err == nil {
			err = s.queue.Publish(s.providerQueues[g.Restaurant.ProviderID], data, 0, 0)
		}
		if err != nil {
			// 回滚追踪记录，避免遗留永远无法收敛的孤儿记录
			if delErr := s.trackingRepo.DeleteRecord(ctx, order.ID); delErr != nil {
				s.logger.Errorf(ctx, "[Schedule] Rollback tracking record failed: order=%d, err=%v", order.ID, delErr)
			}
			return fmt.Errorf("dispatch sub-order for order %d restaurant %d failed: %w",
				order.ID, g.Restaurant.ID, err)
		}
		s.logger.Infof(ctx, "[Schedule] Sub-order dispatched: order=%d, restaurant=%d, provider=%s",
			order.ID, g.Restaurant.ID, g.Restaurant.ProviderID)
	}

	return nil
}

// buildCookJob 组装子订单任务消息
func (s *ScheduleService) buildCookJob(orderID int64, g *etorder.RestaurantGroup) ([]byte, error) {
	items := make([]model.CookItem, 0, len(g.Items))
	for _, it := range g.Items {
		items = append(items, model.CookItem{
			DishID:   it.DishID,
			Name:     it.DishName,
			Quantity: it.Quantity,
		})
	}

	job := model.CookJob{
		Payload: model.CookJobPayload{
			Data: model.CookJobData{
				RequestID:  uuid.NewString(),
				ActionType: model.ActionTypeSuborderCook,
				ID:         strconv.FormatInt(orderID, 10),
				Data: model.CookJobBusinessData{
					OrderID:      orderID,
					RestaurantID: g.Restaurant.ID,
					ProviderID:   g.Restaurant.ProviderID,
					Items:        items,
				},
			},
		},
	}
	return json.Marshal(job)
}
