package order

import (
	"catering/internal/app/domains/repo/rptracking"
	"catering/internal/app/domains/services/svorder"
	"catering/internal/app/pkg/logger"
)

// Handler 订单 API 处理器
type Handler struct {
	orderService *svorder.OrderService
	trackingRepo rptracking.TrackingRepository
	logger       logger.Logger
}

// NewHandler 创建处理器
func NewHandler(orderService *svorder.OrderService, trackingRepo rptracking.TrackingRepository, log logger.Logger) *Handler {
	return &Handler{
		orderService: orderService,
		trackingRepo: trackingRepo,
		logger:       log,
	}
}
