package cook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catering/internal/app/config"
	"catering/internal/app/domains/entity/etorder"
	"catering/internal/app/domains/entity/ettracking"
	"catering/internal/app/domains/model"
	"catering/internal/app/domains/repo/rptracking"
	"catering/internal/app/domains/services/svtracking"
	"catering/internal/app/infra/provider"
	"catering/internal/app/pkg/errorx"
	"catering/internal/app/pkg/logger"
)

// Handler 子订单处理器
// 在供应商系统下单，然后按集成方式推进状态：
// 轮询式在这里盯到出餐或超限；推送式下单即返回，后续交给 webhook
type Handler struct {
	registry        *provider.Registry
	trackingService *svtracking.TrackingService
	trackingRepo    rptracking.TrackingRepository
	cfg             config.CookConfig
	indexTTL        time.Duration
	logger          logger.Logger
}

// NewHandler 创建处理器
func NewHandler(
	registry *provider.Registry,
	trackingService *svtracking.TrackingService,
	trackingRepo rptracking.TrackingRepository,
	cfg config.CookConfig,
	indexTTL time.Duration,
	log logger.Logger,
) *Handler {
	return &Handler{
		registry:        registry,
		trackingService: trackingService,
		trackingRepo:    trackingRepo,
		cfg:             cfg,
		indexTTL:        indexTTL,
		logger:          log,
	}
}

// Handle 处理一条子订单任务
// 消息可能被重复投递（TTR 到期重投），通过追踪记录里的外部单号去重：
// 已下过单的子订单跳过下单直接进入轮询
func (h *Handler) Handle(ctx context.Context, data *model.CookJobBusinessData) error {
	client, err := h.registry.Resolve(data.ProviderID)
	if err != nil {
		return err
	}

	record, err := h.trackingRepo.GetRecord(ctx, data.OrderID)
	if errors.Is(err, rptracking.ErrRecordNotFound) {
		return errorx.NonRetriableWrap(err, fmt.Sprintf("tracking record missing for order %d", data.OrderID))
	}
	if err != nil {
		// 存储抖动，不 ACK 等重投再处理
		return errorx.RetriableWrap(err, fmt.Sprintf("load tracking record for order %d failed", data.OrderID))
	}
	state, ok := record.SubOrder(data.RestaurantID)
	if !ok {
		return errorx.NonRetriableWrap(ettracking.ErrRestaurantMissing,
			fmt.Sprintf("restaurant %d not in record of order %d", data.RestaurantID, data.OrderID))
	}
	if state.Status.Terminal() || state.Status.Rank() >= etorder.OrderStatusCooked.Rank() {
		h.logger.Infof(ctx, "[Cook] Sub-order already settled: order=%d, restaurant=%d, status=%s",
			data.OrderID, data.RestaurantID, state.Status)
		return nil
	}

	externalID := state.ExternalID
	if externalID == "" {
		remote, err := h.createRemoteOrder(ctx, client, data)
		if err != nil {
			return err
		}
		externalID = remote.ExternalID

		if _, _, err := h.trackingService.ApplySubOrderUpdate(ctx, data.OrderID, data.RestaurantID, externalID, remote.Status); err != nil {
			return err
		}
		if remote.Status.Rank() >= etorder.OrderStatusCooked.Rank() {
			return nil
		}
	}

	// 推送式：状态由供应商 webhook 回调推进
	if client.Mode() == provider.ModePush {
		h.logger.Infof(ctx, "[Cook] Push-mode sub-order created, waiting for callbacks: order=%d, restaurant=%d, external=%s",
			data.OrderID, data.RestaurantID, externalID)
		return nil
	}

	return h.poll(ctx, client, data, externalID)
}

// createRemoteOrder 在供应商系统下单并登记外部单号索引
func (h *Handler) createRemoteOrder(ctx context.Context, client provider.Client, data *model.CookJobBusinessData) (*provider.RemoteOrder, error) {
	items := make([]provider.RemoteItem, 0, len(data.Items))
	for _, it := range data.Items {
		items = append(items, provider.RemoteItem{
			Dish:     it.Name,
			Quantity: it.Quantity,
		})
	}

	remote, err := client.CreateOrder(ctx, items)
	if err != nil {
		return nil, err
	}

	ref := &ettracking.ExternalRef{
		OrderID:      data.OrderID,
		RestaurantID: data.RestaurantID,
	}
	if err := h.trackingRepo.SaveExternalRef(ctx, client.ID(), remote.ExternalID, ref, h.indexTTL); err != nil {
		return nil, errorx.RetriableWrap(err, "save external order reference failed")
	}

	h.logger.Infof(ctx, "[Cook] Sub-order created: order=%d, restaurant=%d, provider=%s, external=%s",
		data.OrderID, data.RestaurantID, client.ID(), remote.ExternalID)
	return remote, nil
}

// poll 轮询供应商直到出餐或超限
// 次数与期限双重上限，先到为准；超限的子订单标记失败且不再重试
func (h *Handler) poll(ctx context.Context, client provider.Client, data *model.CookJobBusinessData, externalID string) error {
	deadline := time.Now().Add(h.cfg.Deadline)

	for attempt := 1; attempt <= h.cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			// 停机或处理超时中断轮询，不 ACK 让消息重投后续盯
			return errorx.RetriableWrap(ctx.Err(), "poll interrupted")
		case <-time.After(h.cfg.PollInterval):
		}

		if time.Now().After(deadline) {
			break
		}

		remote, err := client.GetOrder(ctx, externalID)
		if err != nil {
			if !errorx.IsRetryable(err) {
				// 协议级错误（未知状态词汇等），继续轮询没有意义
				return h.trackingService.FailSubOrder(ctx, data.OrderID, data.RestaurantID, err.Error())
			}
			h.logger.Warnf(ctx, "[Cook] Poll attempt %d failed: order=%d, restaurant=%d, err=%v",
				attempt, data.OrderID, data.RestaurantID, err)
			continue
		}

		if _, _, err := h.trackingService.ApplySubOrderUpdate(ctx, data.OrderID, data.RestaurantID, externalID, remote.Status); err != nil {
			return err
		}

		if remote.Status.Rank() >= etorder.OrderStatusCooked.Rank() {
			h.logger.Infof(ctx, "[Cook] Sub-order cooked after %d polls: order=%d, restaurant=%d",
				attempt, data.OrderID, data.RestaurantID)
			return nil
		}
	}

	reason := fmt.Sprintf("sub-order not cooked within %d attempts / %s", h.cfg.MaxAttempts, h.cfg.Deadline)
	return h.trackingService.FailSubOrder(ctx, data.OrderID, data.RestaurantID, reason)
}
