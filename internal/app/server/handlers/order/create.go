package order

import (
	"errors"

	"github.com/gin-gonic/gin"

	"catering/internal/app/domains/apimodel/request"
	"catering/internal/app/domains/apimodel/response"
	"catering/internal/app/domains/entity/etorder"
	"catering/internal/app/pkg/errorx"
	"catering/internal/app/pkg/ginx"
)

// Create 创建订单
// POST /api/v1/orders
func (h *Handler) Create(c *gin.Context) {
	var req request.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	eta, err := req.ParseETA()
	if err != nil {
		ginx.BadRequest(c, "eta must be RFC3339 or YYYY-MM-DD")
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req.UserID, eta, req.DeliveryProvider, req.ToItemInputs())
	if err != nil {
		switch {
		case errors.Is(err, etorder.ErrInvalidETA),
			errors.Is(err, etorder.ErrInvalidQuantity),
			errors.Is(err, etorder.ErrEmptyItems),
			errors.Is(err, etorder.ErrInvalidUserID):
			ginx.BadRequest(c, err.Error())
		case !errorx.IsRetryable(err):
			ginx.BadRequest(c, err.Error())
		default:
			h.logger.Errorf(c.Request.Context(), "[API] Create order failed: %v", err)
			ginx.InternalError(c, "create order failed")
		}
		return
	}

	ginx.Created(c, response.FromOrder(order))
}
