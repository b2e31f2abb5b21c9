package order

import (
	"github.com/gin-gonic/gin"

	"catering/internal/app/domains/apimodel/request"
	"catering/internal/app/domains/apimodel/response"
	"catering/internal/app/pkg/ginx"
)

// List 分页查询订单
// GET /api/v1/orders
func (h *Handler) List(c *gin.Context) {
	var req request.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), req.Page, req.Limit)
	if err != nil {
		h.logger.Errorf(c.Request.Context(), "[API] List orders failed: %v", err)
		ginx.InternalError(c, "list orders failed")
		return
	}

	ginx.Success(c, response.OrderListResponse{
		Orders: response.FromOrders(orders),
		Total:  total,
		Page:   req.Page,
		Limit:  req.Limit,
	})
}
