package main

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"catering/internal/app/config"
	"catering/internal/app/domains/repo/rpcatalog"
	"catering/internal/app/domains/repo/rporder"
	"catering/internal/app/domains/repo/rptracking"
	"catering/internal/app/domains/services/svorder"
	"catering/internal/app/domains/services/svschedule"
	"catering/internal/app/domains/services/svtracking"
	"catering/internal/app/infra/mq/lmstfy"
	"catering/internal/app/infra/persistence/mysql"
	redisstore "catering/internal/app/infra/persistence/redis"
	"catering/internal/app/infra/provider"
	"catering/internal/app/jobs"
	"catering/internal/app/pkg/logger"
	"catering/internal/app/server/handlers/catalog"
	"catering/internal/app/server/handlers/order"
	"catering/internal/app/server/handlers/webhook"
	"catering/internal/app/server/routers"
)

// App 组装完成的应用
type App struct {
	Engine  *gin.Engine
	Sweeper *jobs.Sweeper
}

// InitializeApp 初始化应用（依赖装配）
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	log, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger failed: %w", err)
	}

	// 基础设施
	db, err := mysql.Open(cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	if cfg.App.Env == "dev" {
		if err := mysql.AutoMigrate(db); err != nil {
			return nil, nil, fmt.Errorf("auto migrate failed: %w", err)
		}
	}
	store, err := redisstore.NewStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	queue, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		return nil, nil, err
	}

	// 供应商注册表
	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, nil, err
	}

	// 仓储
	orderRepo := rporder.NewOrderRepository(db)
	catalogRepo := rpcatalog.NewCatalogRepository(db)
	trackingRepo := rptracking.NewTrackingRepository(store)

	// 服务
	scheduleService := svschedule.NewScheduleService(
		trackingRepo, registry, queue, cfg.ProviderQueues(), cfg.Tracking.RecordTTL, log)
	trackingService := svtracking.NewTrackingService(trackingRepo, orderRepo, registry, log)
	orderService := svorder.NewOrderService(orderRepo, catalogRepo, scheduleService, log)

	// HTTP 层
	orderHandler := order.NewHandler(orderService, trackingRepo, log)
	catalogHandler := catalog.NewHandler(catalogRepo, log)
	webhookHandler := webhook.NewHandler(trackingService, registry, log)
	engine := routers.SetupRoutes(orderHandler, catalogHandler, webhookHandler, log)

	// 超时订单清理任务
	sweeper := jobs.NewSweeper(cfg.Sweeper, orderRepo, trackingRepo, log)

	cleanup := func() {
		_ = store.Close()
		_ = log.Sync()
	}

	return &App{Engine: engine, Sweeper: sweeper}, cleanup, nil
}

// buildRegistry 按配置装配供应商注册表
func buildRegistry(cfg *config.Config) (*provider.Registry, error) {
	clients := make([]provider.Client, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		client := provider.NewFromConfig(p.ID, p.Mode, p.BaseURL)
		if client == nil {
			return nil, fmt.Errorf("unknown provider in config: %s", p.ID)
		}
		clients = append(clients, client)
	}
	return provider.NewRegistry(clients...), nil
}
