package routers

import (
	"github.com/gin-gonic/gin"

	"catering/internal/app/pkg/logger"
	"catering/internal/app/server/handlers/catalog"
	"catering/internal/app/server/handlers/order"
	"catering/internal/app/server/handlers/webhook"
	"catering/internal/app/server/middlewares"
)

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(
	orderHandler *order.Handler,
	catalogHandler *catalog.Handler,
	webhookHandler *webhook.Handler,
	log logger.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.CORS())
	r.Use(middlewares.Logger(log))
	r.Use(middlewares.ErrorHandler())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "catering",
			"message": "Service is running",
		})
	})

	v1 := r.Group("/api/v1")
	{
		restaurants := v1.Group("/restaurants")
		{
			restaurants.GET("", catalogHandler.ListRestaurants)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", orderHandler.Create)
			orders.GET("", orderHandler.List)
			orders.GET("/:id", orderHandler.Get)
			orders.GET("/:id/tracking", orderHandler.GetTracking)
		}
	}

	// 供应商回调不走 /api/v1，路径在下单时注册给供应商
	r.POST("/webhooks/:provider", webhookHandler.HandleCallback)

	return r
}
