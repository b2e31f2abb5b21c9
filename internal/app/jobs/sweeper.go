package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"catering/internal/app/config"
	"catering/internal/app/domains/entity/etorder"
	"catering/internal/app/domains/repo/rporder"
	"catering/internal/app/domains/repo/rptracking"
	"catering/internal/app/pkg/logger"
)

// Sweeper 超时订单清理任务
// 兜底：供应商失联、消息丢失等原因导致长期卡在中间态的订单，
// 超过整体出餐期限后统一标记失败并回收追踪记录
type Sweeper struct {
	cfg          config.SweeperConfig
	orderRepo    rporder.OrderRepository
	trackingRepo rptracking.TrackingRepository
	cron         *cron.Cron
	logger       logger.Logger
}

// NewSweeper 创建清理任务
func NewSweeper(
	cfg config.SweeperConfig,
	orderRepo rporder.OrderRepository,
	trackingRepo rptracking.TrackingRepository,
	log logger.Logger,
) *Sweeper {
	return &Sweeper{
		cfg:          cfg,
		orderRepo:    orderRepo,
		trackingRepo: trackingRepo,
		cron:         cron.New(),
		logger:       log,
	}
}

// Start 注册并启动定时任务
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Spec, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Infof(context.Background(), "[Sweeper] Started with spec: %s, deadline: %s",
		s.cfg.Spec, s.cfg.CookDeadline)
	return nil
}

// Stop 停止定时任务（等待进行中的一轮清理完成）
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Infof(context.Background(), "[Sweeper] Stopped")
}

// sweep 清理一轮超时订单
func (s *Sweeper) sweep() {
	ctx := context.Background()
	before := time.Now().Add(-s.cfg.CookDeadline)

	orders, err := s.orderRepo.ListStuckBefore(ctx, before)
	if err != nil {
		s.logger.Errorf(ctx, "[Sweeper] List stuck orders failed: %v", err)
		return
	}
	if len(orders) == 0 {
		return
	}

	s.logger.Infof(ctx, "[Sweeper] Found %d stuck orders created before %s", len(orders), before.Format(time.RFC3339))

	for _, order := range orders {
		failed, err := s.orderRepo.AdvanceStatus(ctx, order.ID, etorder.OrderStatusFailed)
		if err != nil {
			s.logger.Errorf(ctx, "[Sweeper] Mark order failed error: order=%d, err=%v", order.ID, err)
			continue
		}
		if !failed {
			continue
		}

		if err := s.trackingRepo.DeleteRecord(ctx, order.ID); err != nil {
			s.logger.Errorf(ctx, "[Sweeper] Delete tracking record failed: order=%d, err=%v", order.ID, err)
		}
		s.logger.Warnf(ctx, "[Sweeper] Order timed out and marked failed: order=%d", order.ID)
	}
}
