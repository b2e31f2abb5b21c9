package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"catering/internal/app/config"
	"catering/internal/app/domains/repo/rporder"
	"catering/internal/app/domains/repo/rptracking"
	"catering/internal/app/domains/services/svtracking"
	"catering/internal/app/infra/mq/lmstfy"
	"catering/internal/app/infra/persistence/mysql"
	redisstore "catering/internal/app/infra/persistence/redis"
	"catering/internal/app/infra/provider"
	"catering/internal/app/pkg/logger"
	"catering/internal/worker"
)

func main() {
	configPath := flag.String("config", "config/worker.yaml", "path to config file")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	zapLog, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLog.Sync()

	// 2. 初始化基础设施
	db, err := mysql.Open(cfg.MySQL.DSN)
	if err != nil {
		log.Fatalf("Failed to open mysql: %v", err)
	}
	store, err := redisstore.NewStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	defer store.Close()

	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		log.Fatalf("Failed to create lmstfy client: %v", err)
	}

	// 3. 装配供应商注册表与服务
	clients := make([]provider.Client, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		client := provider.NewFromConfig(p.ID, p.Mode, p.BaseURL)
		if client == nil {
			log.Fatalf("Unknown provider in config: %s", p.ID)
		}
		clients = append(clients, client)
	}
	registry := provider.NewRegistry(clients...)

	orderRepo := rporder.NewOrderRepository(db)
	trackingRepo := rptracking.NewTrackingRepository(store)
	trackingService := svtracking.NewTrackingService(trackingRepo, orderRepo, registry, zapLog)

	// 4. 创建并启动 Manager
	manager, err := worker.NewManagerInstance(cfg, lmstfyClient, registry, trackingService, trackingRepo, zapLog)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}

	// 5. 优雅停机处理
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v, shutting down...", sig)
		manager.Shutdown()
	}()

	// 6. 阻塞运行
	if err := manager.Start(); err != nil {
		log.Fatalf("Manager error: %v", err)
	}

	log.Println("Worker stopped")
}
