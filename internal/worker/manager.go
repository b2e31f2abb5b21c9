package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"catering/internal/app/config"
	"catering/internal/app/domains/model"
	"catering/internal/app/domains/repo/rptracking"
	"catering/internal/app/domains/services/svtracking"
	"catering/internal/app/infra/mq/lmstfy"
	"catering/internal/app/infra/provider"
	"catering/internal/app/pkg/logger"
	"catering/internal/worker/framework"
	"catering/internal/worker/handlers/cook"
)

// Manager 接口
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance Manager 实例
// 按配置为每个供应商队列启动一个 Worker
type ManagerInstance struct {
	ctx             context.Context
	cfg             *config.Config
	lmstfyClient    *lmstfy.Client
	registry        *provider.Registry
	trackingService *svtracking.TrackingService
	trackingRepo    rptracking.TrackingRepository
	workers         []Worker
	closing         *atomic.Bool
	shutdownCh      chan struct{}
	wg              sync.WaitGroup
	logger          logger.Logger
}

// NewManagerInstance 创建 Manager
func NewManagerInstance(
	cfg *config.Config,
	lmstfyClient *lmstfy.Client,
	registry *provider.Registry,
	trackingService *svtracking.TrackingService,
	trackingRepo rptracking.TrackingRepository,
	log logger.Logger,
) (Manager, error) {
	if len(cfg.Workers) == 0 {
		return nil, fmt.Errorf("at least one worker is required in config")
	}

	return &ManagerInstance{
		ctx:             context.Background(),
		cfg:             cfg,
		lmstfyClient:    lmstfyClient,
		registry:        registry,
		trackingService: trackingService,
		trackingRepo:    trackingRepo,
		closing:         atomic.NewBool(false),
		shutdownCh:      make(chan struct{}),
		workers:         make([]Worker, 0),
		logger:          log,
	}, nil
}

// Start 启动 Manager
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	// 1. 加载所有 Worker
	if err := m.loadWorkers(); err != nil {
		return fmt.Errorf("failed to load workers: %w", err)
	}

	m.logger.Infof(m.ctx, "[Manager] All workers loaded, count: %d", len(m.workers))

	// 2. 启动所有 Worker（每个 Worker 在独立 goroutine）
	for _, worker := range m.workers {
		w := worker
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}

	m.logger.Infof(m.ctx, "[Manager] Start success")

	// 3. 阻塞等待退出信号
	<-m.shutdownCh

	return nil
}

// Shutdown 优雅退出
func (m *ManagerInstance) Shutdown() {
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	// 原子操作，保证并发安全
	if m.closing.CAS(false, true) {
		// 1. 所有 Worker 安全退出
		for _, worker := range m.workers {
			m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", worker.GetName())
			worker.Shutdown()
		}

		// 2. 等待所有 Worker 退出
		m.wg.Wait()

		// 3. 关闭信号通道
		close(m.shutdownCh)

		m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
	}
}

// loadWorkers 加载所有 Worker
// 每个 Worker 绑定一个供应商队列，轮询策略各自独立配置
func (m *ManagerInstance) loadWorkers() error {
	for _, workerCfg := range m.cfg.Workers {
		subCfg := &framework.SubscriberConfig{
			QueueName:    workerCfg.QueueName,
			Concurrency:  workerCfg.Subscriber.Threads,
			Rate:         workerCfg.Subscriber.Rate,
			Timeout:      workerCfg.Subscriber.Timeout,
			TTR:          workerCfg.Subscriber.TTR,
			ErrorBackoff: workerCfg.Subscriber.ErrorBackoff,
		}

		procCfg := &framework.ProcessorConfig{
			Concurrency: workerCfg.Processor.Threads,
			BufferSize:  workerCfg.Processor.BufferSize,
			Timeout:     workerCfg.Processor.Timeout,
		}

		cookHandler := cook.NewHandler(
			m.registry,
			m.trackingService,
			m.trackingRepo,
			workerCfg.Cook,
			m.cfg.Tracking.IndexTTL,
			m.logger,
		)

		getProcess := GetProcess(m.logger, map[string]ActionHandler{
			model.ActionTypeSuborderCook: cookHandler,
		})

		worker, err := NewWorkerInstance(
			m.ctx,
			workerCfg.Name,
			subCfg,
			procCfg,
			m.lmstfyClient, // MessageSource
			getProcess,
			m.logger,
		)
		if err != nil {
			return fmt.Errorf("failed to create worker %s: %w", workerCfg.Name, err)
		}

		m.workers = append(m.workers, worker)
	}

	return nil
}
