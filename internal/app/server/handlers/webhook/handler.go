package webhook

import (
	"errors"

	"github.com/gin-gonic/gin"

	"catering/internal/app/domains/apimodel/request"
	"catering/internal/app/domains/repo/rptracking"
	"catering/internal/app/domains/services/svtracking"
	"catering/internal/app/infra/provider"
	"catering/internal/app/pkg/errorx"
	"catering/internal/app/pkg/ginx"
	"catering/internal/app/pkg/logger"
)

// Handler 供应商 webhook 回调处理器（推送式集成入口）
type Handler struct {
	trackingService *svtracking.TrackingService
	registry        *provider.Registry
	logger          logger.Logger
}

// NewHandler 创建处理器
func NewHandler(trackingService *svtracking.TrackingService, registry *provider.Registry, log logger.Logger) *Handler {
	return &Handler{
		trackingService: trackingService,
		registry:        registry,
		logger:          log,
	}
}

// HandleCallback 接收供应商状态回调
// POST /webhooks/:provider
// 重复投递与乱序投递在合并层静默丢弃，回调方只需看到 200；
// 未知供应商/未知外部单号返回 404，未知状态词汇返回 400
func (h *Handler) HandleCallback(c *gin.Context) {
	providerID := c.Param("provider")
	if _, err := h.registry.Resolve(providerID); err != nil {
		ginx.NotFound(c, "unknown provider")
		return
	}

	var req request.ProviderCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	err := h.trackingService.HandleProviderCallback(c.Request.Context(), providerID, req.ID, req.Status)
	switch {
	case err == nil:
		ginx.Success(c, gin.H{"message": "ok"})
	case errors.Is(err, rptracking.ErrRefNotFound):
		ginx.NotFound(c, "unknown external order")
	case !errorx.IsRetryable(err):
		ginx.BadRequest(c, err.Error())
	default:
		h.logger.Errorf(c.Request.Context(), "[Webhook] Callback processing failed: provider=%s, external=%s, err=%v",
			providerID, req.ID, err)
		ginx.InternalError(c, "callback processing failed")
	}
}
