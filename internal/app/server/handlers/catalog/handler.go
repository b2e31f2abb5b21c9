package catalog

import (
	"github.com/gin-gonic/gin"

	"catering/internal/app/domains/apimodel/response"
	"catering/internal/app/domains/repo/rpcatalog"
	"catering/internal/app/pkg/ginx"
	"catering/internal/app/pkg/logger"
)

// Handler 目录 API 处理器（餐厅与菜品为只读参照数据）
type Handler struct {
	catalogRepo rpcatalog.CatalogRepository
	logger      logger.Logger
}

// NewHandler 创建处理器
func NewHandler(catalogRepo rpcatalog.CatalogRepository, log logger.Logger) *Handler {
	return &Handler{
		catalogRepo: catalogRepo,
		logger:      log,
	}
}

// ListRestaurants 查询全部餐厅及菜品
// GET /api/v1/restaurants
func (h *Handler) ListRestaurants(c *gin.Context) {
	menus, err := h.catalogRepo.ListRestaurantsWithDishes(c.Request.Context())
	if err != nil {
		h.logger.Errorf(c.Request.Context(), "[API] List restaurants failed: %v", err)
		ginx.InternalError(c, "list restaurants failed")
		return
	}
	ginx.Success(c, response.FromMenus(menus))
}
