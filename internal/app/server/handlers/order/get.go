package order

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"catering/internal/app/domains/apimodel/response"
	"catering/internal/app/domains/repo/rporder"
	"catering/internal/app/domains/repo/rptracking"
	"catering/internal/app/pkg/ginx"
)

// Get 查询订单详情
// GET /api/v1/orders/:id
func (h *Handler) Get(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		ginx.BadRequest(c, "invalid order id")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if errors.Is(err, rporder.ErrOrderNotFound) {
		ginx.NotFound(c, "order not found")
		return
	}
	if err != nil {
		h.logger.Errorf(c.Request.Context(), "[API] Get order failed: order=%d, err=%v", orderID, err)
		ginx.InternalError(c, "get order failed")
		return
	}

	ginx.Success(c, response.FromOrder(order))
}

// GetTracking 查询订单各餐厅子订单状态
// GET /api/v1/orders/:id/tracking
func (h *Handler) GetTracking(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		ginx.BadRequest(c, "invalid order id")
		return
	}

	record, err := h.trackingRepo.GetRecord(c.Request.Context(), orderID)
	if errors.Is(err, rptracking.ErrRecordNotFound) {
		ginx.NotFound(c, "tracking record not found")
		return
	}
	if err != nil {
		h.logger.Errorf(c.Request.Context(), "[API] Get tracking failed: order=%d, err=%v", orderID, err)
		ginx.InternalError(c, "get tracking failed")
		return
	}

	ginx.Success(c, response.FromTrackingRecord(orderID, record))
}
