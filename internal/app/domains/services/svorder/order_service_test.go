package svorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catering/internal/app/domains/entity/etorder"
	"catering/internal/app/domains/repo/rpcatalog"
	"catering/internal/app/pkg/logger"
)

// fakeOrderRepo 内存订单仓储
type fakeOrderRepo struct {
	nextID   int64
	orders   map[int64]*etorder.Order
	statuses map[int64]etorder.OrderStatus
	groups   map[int64][]*etorder.RestaurantGroup
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		nextID:   1,
		orders:   make(map[int64]*etorder.Order),
		statuses: make(map[int64]etorder.OrderStatus),
		groups:   make(map[int64][]*etorder.RestaurantGroup),
	}
}

func (f *fakeOrderRepo) CreateWithItems(ctx context.Context, order *etorder.Order) error {
	order.ID = f.nextID
	f.nextID++
	f.orders[order.ID] = order
	f.statuses[order.ID] = order.Status

	// 简化的按餐厅分组：全部订单项算一家餐厅
	group := &etorder.RestaurantGroup{
		Restaurant: &etorder.Restaurant{ID: 1, Name: "Test Kitchen", ProviderID: "silpo"},
		Items:      order.Items,
	}
	f.groups[order.ID] = []*etorder.RestaurantGroup{group}
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, orderID int64) (*etorder.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, errors.New("order not found")
	}
	return order, nil
}

func (f *fakeOrderRepo) List(ctx context.Context, page, limit int) ([]*etorder.Order, int64, error) {
	out := make([]*etorder.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) GetItemsGroupedByRestaurant(ctx context.Context, orderID int64) ([]*etorder.RestaurantGroup, error) {
	return f.groups[orderID], nil
}

func (f *fakeOrderRepo) AdvanceStatus(ctx context.Context, orderID int64, status etorder.OrderStatus) (bool, error) {
	current := f.statuses[orderID]
	if !current.CanAdvanceTo(status) {
		return false, nil
	}
	f.statuses[orderID] = status
	return true, nil
}

func (f *fakeOrderRepo) ListStuckBefore(ctx context.Context, before time.Time) ([]*etorder.Order, error) {
	return nil, nil
}

// fakeCatalogRepo 固定菜单
type fakeCatalogRepo struct {
	dishes map[int64]*etorder.Dish
}

func (f *fakeCatalogRepo) ListRestaurantsWithDishes(ctx context.Context) ([]*rpcatalog.RestaurantMenu, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) GetDishesByIDs(ctx context.Context, dishIDs []int64) (map[int64]*etorder.Dish, error) {
	out := make(map[int64]*etorder.Dish)
	for _, id := range dishIDs {
		if d, ok := f.dishes[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

// fakeScheduler 记录派发调用，可注入失败
type fakeScheduler struct {
	calls int
	err   error
}

func (f *fakeScheduler) ScheduleOrder(ctx context.Context, order *etorder.Order, groups []*etorder.RestaurantGroup) error {
	f.calls++
	return f.err
}

func newTestService(scheduler *fakeScheduler) (*OrderService, *fakeOrderRepo) {
	orderRepo := newFakeOrderRepo()
	catalogRepo := &fakeCatalogRepo{dishes: map[int64]*etorder.Dish{
		10: {ID: 10, Name: "Borsch", Price: 1500, RestaurantID: 1},
		20: {ID: 20, Name: "Wings", Price: 2000, RestaurantID: 1},
	}}
	return NewOrderService(orderRepo, catalogRepo, scheduler, logger.NopLogger{}), orderRepo
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	tomorrow := time.Now().Add(24 * time.Hour)

	t.Run("creates, prices and dispatches", func(t *testing.T) {
		scheduler := &fakeScheduler{}
		svc, repo := newTestService(scheduler)

		order, err := svc.CreateOrder(ctx, 1, tomorrow, "uklon", []ItemInput{
			{DishID: 10, Quantity: 2},
			{DishID: 20, Quantity: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2*1500+2000), order.Total)
		assert.Equal(t, 1, scheduler.calls)
		assert.Equal(t, etorder.OrderStatusNotStarted, repo.statuses[order.ID])
	})

	t.Run("unknown dish is rejected", func(t *testing.T) {
		scheduler := &fakeScheduler{}
		svc, _ := newTestService(scheduler)

		_, err := svc.CreateOrder(ctx, 1, tomorrow, "", []ItemInput{{DishID: 999, Quantity: 1}})
		require.Error(t, err)
		assert.Zero(t, scheduler.calls)
	})

	t.Run("empty items are rejected", func(t *testing.T) {
		svc, _ := newTestService(&fakeScheduler{})
		_, err := svc.CreateOrder(ctx, 1, tomorrow, "", nil)
		assert.ErrorIs(t, err, etorder.ErrEmptyItems)
	})

	t.Run("eta today is rejected", func(t *testing.T) {
		svc, _ := newTestService(&fakeScheduler{})
		_, err := svc.CreateOrder(ctx, 1, time.Now(), "", []ItemInput{{DishID: 10, Quantity: 1}})
		assert.ErrorIs(t, err, etorder.ErrInvalidETA)
	})

	t.Run("dispatch failure marks order failed", func(t *testing.T) {
		scheduler := &fakeScheduler{err: errors.New("queue down")}
		svc, repo := newTestService(scheduler)

		_, err := svc.CreateOrder(ctx, 1, tomorrow, "", []ItemInput{{DishID: 10, Quantity: 1}})
		require.Error(t, err)

		// 订单已落库且标记失败，便于排查
		require.Len(t, repo.orders, 1)
		for id := range repo.orders {
			assert.Equal(t, etorder.OrderStatusFailed, repo.statuses[id])
		}
	})
}

func TestListOrders(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(&fakeScheduler{})

	_, _, err := svc.ListOrders(ctx, 0, 1000)
	assert.NoError(t, err)
}
