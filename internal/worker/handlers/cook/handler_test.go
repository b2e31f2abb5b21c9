package cook

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catering/internal/app/config"
	"catering/internal/app/domains/entity/etorder"
	"catering/internal/app/domains/entity/ettracking"
	"catering/internal/app/domains/model"
	"catering/internal/app/domains/repo/rptracking"
	"catering/internal/app/domains/services/svtracking"
	"catering/internal/app/infra/provider"
	"catering/internal/app/pkg/errorx"
	"catering/internal/app/pkg/logger"
)

// scriptedClient 按脚本返回状态序列的供应商客户端
type scriptedClient struct {
	mu           sync.Mutex
	id           string
	mode         provider.Mode
	createStatus etorder.OrderStatus
	pollScript   []etorder.OrderStatus // GetOrder 依次返回，耗尽后重复最后一个
	createCalls  int
	pollCalls    int
}

func (s *scriptedClient) ID() string          { return s.id }
func (s *scriptedClient) Mode() provider.Mode { return s.mode }

func (s *scriptedClient) CreateOrder(ctx context.Context, items []provider.RemoteItem) (*provider.RemoteOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	return &provider.RemoteOrder{ExternalID: "ext-1", Status: s.createStatus}, nil
}

func (s *scriptedClient) GetOrder(ctx context.Context, externalID string) (*provider.RemoteOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.pollCalls
	if idx >= len(s.pollScript) {
		idx = len(s.pollScript) - 1
	}
	s.pollCalls++
	return &provider.RemoteOrder{ExternalID: externalID, Status: s.pollScript[idx]}, nil
}

func (s *scriptedClient) TranslateStatus(remote string) (etorder.OrderStatus, error) {
	return etorder.ParseStatus(remote)
}

// fakeOrderRepo 只实现状态前进守卫
type fakeOrderRepo struct {
	mu       sync.Mutex
	statuses map[int64]etorder.OrderStatus
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{statuses: make(map[int64]etorder.OrderStatus)}
}

func (f *fakeOrderRepo) status(orderID int64) etorder.OrderStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.statuses[orderID]; ok {
		return s
	}
	return etorder.OrderStatusNotStarted
}

func (f *fakeOrderRepo) AdvanceStatus(ctx context.Context, orderID int64, status etorder.OrderStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.statuses[orderID]
	if !ok {
		current = etorder.OrderStatusNotStarted
	}
	if !current.CanAdvanceTo(status) {
		return false, nil
	}
	f.statuses[orderID] = status
	return true, nil
}

func (f *fakeOrderRepo) CreateWithItems(ctx context.Context, order *etorder.Order) error { return nil }
func (f *fakeOrderRepo) GetByID(ctx context.Context, orderID int64) (*etorder.Order, error) {
	return nil, nil
}
func (f *fakeOrderRepo) List(ctx context.Context, page, limit int) ([]*etorder.Order, int64, error) {
	return nil, 0, nil
}
func (f *fakeOrderRepo) GetItemsGroupedByRestaurant(ctx context.Context, orderID int64) ([]*etorder.RestaurantGroup, error) {
	return nil, nil
}
func (f *fakeOrderRepo) ListStuckBefore(ctx context.Context, before time.Time) ([]*etorder.Order, error) {
	return nil, nil
}

func newTestHandler(t *testing.T, client *scriptedClient, cfg config.CookConfig) (*Handler, *rptracking.MemoryTrackingRepository, *fakeOrderRepo) {
	t.Helper()
	repo := rptracking.NewMemoryTrackingRepository()
	require.NoError(t, repo.CreateRecord(context.Background(), 100, ettracking.NewTrackingRecord([]int64{1}), 0))

	orderRepo := newFakeOrderRepo()
	registry := provider.NewRegistry(client)
	trackingService := svtracking.NewTrackingService(repo, orderRepo, registry, logger.NopLogger{})

	handler := NewHandler(registry, trackingService, repo, cfg, time.Hour, logger.NopLogger{})
	return handler, repo, orderRepo
}

func jobData(providerID string) *model.CookJobBusinessData {
	return &model.CookJobBusinessData{
		OrderID:      100,
		RestaurantID: 1,
		ProviderID:   providerID,
		Items:        []model.CookItem{{DishID: 10, Name: "Borsch", Quantity: 2}},
	}
}

func fastCfg(maxAttempts int) config.CookConfig {
	return config.CookConfig{
		PollInterval: time.Millisecond,
		MaxAttempts:  maxAttempts,
		Deadline:     time.Second,
	}
}

func TestHandlePollMode(t *testing.T) {
	ctx := context.Background()

	t.Run("polls until cooked", func(t *testing.T) {
		client := &scriptedClient{
			id:           "silpo",
			mode:         provider.ModePoll,
			createStatus: etorder.OrderStatusNotStarted,
			pollScript: []etorder.OrderStatus{
				etorder.OrderStatusNotStarted,
				etorder.OrderStatusCooking,
				etorder.OrderStatusCooked,
			},
		}
		handler, repo, orderRepo := newTestHandler(t, client, fastCfg(10))

		require.NoError(t, handler.Handle(ctx, jobData("silpo")))

		assert.Equal(t, 1, client.createCalls)
		assert.Equal(t, 3, client.pollCalls)

		record, err := repo.GetRecord(ctx, 100)
		require.NoError(t, err)
		state, _ := record.SubOrder(1)
		assert.Equal(t, "ext-1", state.ExternalID)
		assert.Equal(t, etorder.OrderStatusCooked, state.Status)
		assert.True(t, record.FullyCooked())
		assert.Equal(t, etorder.OrderStatusCooked, orderRepo.status(100))

		// 外部单号索引已登记，webhook 可反查
		ref, err := repo.GetExternalRef(ctx, "silpo", "ext-1")
		require.NoError(t, err)
		assert.Equal(t, int64(100), ref.OrderID)
	})

	t.Run("attempt limit marks sub-order failed", func(t *testing.T) {
		client := &scriptedClient{
			id:           "silpo",
			mode:         provider.ModePoll,
			createStatus: etorder.OrderStatusNotStarted,
			pollScript:   []etorder.OrderStatus{etorder.OrderStatusCooking},
		}
		handler, repo, orderRepo := newTestHandler(t, client, fastCfg(3))

		require.NoError(t, handler.Handle(ctx, jobData("silpo")))

		record, err := repo.GetRecord(ctx, 100)
		require.NoError(t, err)
		state, _ := record.SubOrder(1)
		assert.Equal(t, etorder.OrderStatusFailed, state.Status)
		assert.Equal(t, etorder.OrderStatusFailed, orderRepo.status(100))
	})

	t.Run("redelivered job skips create", func(t *testing.T) {
		client := &scriptedClient{
			id:         "silpo",
			mode:       provider.ModePoll,
			pollScript: []etorder.OrderStatus{etorder.OrderStatusCooked},
		}
		handler, repo, _ := newTestHandler(t, client, fastCfg(10))

		// 模拟上一次投递已经下过单
		_, err := repo.UpdateRecord(ctx, 100, func(record *ettracking.TrackingRecord) (bool, error) {
			return record.ApplyUpdate(1, "ext-1", etorder.OrderStatusCooking)
		})
		require.NoError(t, err)

		require.NoError(t, handler.Handle(ctx, jobData("silpo")))
		assert.Equal(t, 0, client.createCalls)
		assert.GreaterOrEqual(t, client.pollCalls, 1)
	})

	t.Run("settled sub-order is a no-op", func(t *testing.T) {
		client := &scriptedClient{id: "silpo", mode: provider.ModePoll, pollScript: []etorder.OrderStatus{etorder.OrderStatusCooked}}
		handler, repo, _ := newTestHandler(t, client, fastCfg(10))

		_, err := repo.UpdateRecord(ctx, 100, func(record *ettracking.TrackingRecord) (bool, error) {
			return record.ApplyUpdate(1, "ext-1", etorder.OrderStatusCooked)
		})
		require.NoError(t, err)

		require.NoError(t, handler.Handle(ctx, jobData("silpo")))
		assert.Equal(t, 0, client.createCalls)
		assert.Equal(t, 0, client.pollCalls)
	})
}

func TestHandlePushMode(t *testing.T) {
	ctx := context.Background()

	client := &scriptedClient{
		id:           "kfc",
		mode:         provider.ModePush,
		createStatus: etorder.OrderStatusCooking,
	}
	handler, repo, orderRepo := newTestHandler(t, client, fastCfg(10))

	require.NoError(t, handler.Handle(ctx, jobData("kfc")))

	// 下单即返回，不轮询；后续状态由 webhook 推进
	assert.Equal(t, 1, client.createCalls)
	assert.Equal(t, 0, client.pollCalls)

	record, err := repo.GetRecord(ctx, 100)
	require.NoError(t, err)
	state, _ := record.SubOrder(1)
	assert.Equal(t, "ext-1", state.ExternalID)
	assert.Equal(t, etorder.OrderStatusCooking, state.Status)
	assert.Equal(t, etorder.OrderStatusCooking, orderRepo.status(100))
}

func TestHandleUnknownProvider(t *testing.T) {
	client := &scriptedClient{id: "silpo", mode: provider.ModePoll}
	handler, _, _ := newTestHandler(t, client, fastCfg(10))

	err := handler.Handle(context.Background(), jobData("mcdonalds"))
	assert.Error(t, err)
}

// flakyTrackingRepo 前 N 次 GetRecord 模拟存储抖动
type flakyTrackingRepo struct {
	*rptracking.MemoryTrackingRepository
	getFailures int
}

func (f *flakyTrackingRepo) GetRecord(ctx context.Context, orderID int64) (*ettracking.TrackingRecord, error) {
	if f.getFailures > 0 {
		f.getFailures--
		return nil, errors.New("redis: connection reset by peer")
	}
	return f.MemoryTrackingRepository.GetRecord(ctx, orderID)
}

func TestHandleRecordLoadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("transient store error stays retryable", func(t *testing.T) {
		repo := &flakyTrackingRepo{
			MemoryTrackingRepository: rptracking.NewMemoryTrackingRepository(),
			getFailures:              1,
		}
		require.NoError(t, repo.CreateRecord(ctx, 100, ettracking.NewTrackingRecord([]int64{1}), 0))

		client := &scriptedClient{id: "silpo", mode: provider.ModePoll}
		orderRepo := newFakeOrderRepo()
		registry := provider.NewRegistry(client)
		trackingService := svtracking.NewTrackingService(repo, orderRepo, registry, logger.NopLogger{})
		handler := NewHandler(registry, trackingService, repo, fastCfg(10), time.Hour, logger.NopLogger{})

		// 抖动期间不能把任务判死，要留给重投
		err := handler.Handle(ctx, jobData("silpo"))
		require.Error(t, err)
		assert.True(t, errorx.IsRetryable(err))
		assert.Equal(t, 0, client.createCalls)
	})

	t.Run("missing record is fatal", func(t *testing.T) {
		client := &scriptedClient{id: "silpo", mode: provider.ModePoll}
		handler, _, _ := newTestHandler(t, client, fastCfg(10))

		data := jobData("silpo")
		data.OrderID = 999
		err := handler.Handle(ctx, data)
		require.Error(t, err)
		assert.False(t, errorx.IsRetryable(err))
	})
}
