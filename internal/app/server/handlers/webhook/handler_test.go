package webhook

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catering/internal/app/domains/entity/etorder"
	"catering/internal/app/domains/entity/ettracking"
	"catering/internal/app/domains/repo/rptracking"
	"catering/internal/app/domains/services/svtracking"
	"catering/internal/app/infra/provider"
	"catering/internal/app/pkg/logger"
)

type stubOrderRepo struct {
	statuses map[int64]etorder.OrderStatus
}

func (s *stubOrderRepo) AdvanceStatus(ctx context.Context, orderID int64, status etorder.OrderStatus) (bool, error) {
	current, ok := s.statuses[orderID]
	if !ok {
		current = etorder.OrderStatusNotStarted
	}
	if !current.CanAdvanceTo(status) {
		return false, nil
	}
	s.statuses[orderID] = status
	return true, nil
}

func (s *stubOrderRepo) CreateWithItems(ctx context.Context, order *etorder.Order) error { return nil }
func (s *stubOrderRepo) GetByID(ctx context.Context, orderID int64) (*etorder.Order, error) {
	return nil, nil
}
func (s *stubOrderRepo) List(ctx context.Context, page, limit int) ([]*etorder.Order, int64, error) {
	return nil, 0, nil
}
func (s *stubOrderRepo) GetItemsGroupedByRestaurant(ctx context.Context, orderID int64) ([]*etorder.RestaurantGroup, error) {
	return nil, nil
}
func (s *stubOrderRepo) ListStuckBefore(ctx context.Context, before time.Time) ([]*etorder.Order, error) {
	return nil, nil
}

func setupRouter(t *testing.T) (*gin.Engine, *rptracking.MemoryTrackingRepository, *stubOrderRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := rptracking.NewMemoryTrackingRepository()
	ctx := context.Background()
	require.NoError(t, repo.CreateRecord(ctx, 100, ettracking.NewTrackingRecord([]int64{1}), 0))
	ref := &ettracking.ExternalRef{OrderID: 100, RestaurantID: 1}
	require.NoError(t, repo.SaveExternalRef(ctx, "kfc", "ext-1", ref, 0))

	orderRepo := &stubOrderRepo{statuses: make(map[int64]etorder.OrderStatus)}
	registry := provider.NewRegistry(provider.NewKFCClient("http://unused.invalid"))
	trackingService := svtracking.NewTrackingService(repo, orderRepo, registry, logger.NopLogger{})

	handler := NewHandler(trackingService, registry, logger.NopLogger{})
	r := gin.New()
	r.POST("/webhooks/:provider", handler.HandleCallback)
	return r, repo, orderRepo
}

func postCallback(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHandleCallback(t *testing.T) {
	t.Run("applies status update", func(t *testing.T) {
		r, repo, orderRepo := setupRouter(t)

		w := postCallback(r, "/webhooks/kfc", `{"id":"ext-1","status":"cooking"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		record, err := repo.GetRecord(context.Background(), 100)
		require.NoError(t, err)
		state, _ := record.SubOrder(1)
		assert.Equal(t, etorder.OrderStatusCooking, state.Status)
		assert.Equal(t, etorder.OrderStatusCooking, orderRepo.statuses[100])
	})

	t.Run("duplicate and stale callbacks still return 200", func(t *testing.T) {
		r, repo, _ := setupRouter(t)

		assert.Equal(t, http.StatusOK, postCallback(r, "/webhooks/kfc", `{"id":"ext-1","status":"cooked"}`).Code)
		assert.Equal(t, http.StatusOK, postCallback(r, "/webhooks/kfc", `{"id":"ext-1","status":"cooked"}`).Code)
		assert.Equal(t, http.StatusOK, postCallback(r, "/webhooks/kfc", `{"id":"ext-1","status":"cooking"}`).Code)

		record, err := repo.GetRecord(context.Background(), 100)
		require.NoError(t, err)
		state, _ := record.SubOrder(1)
		assert.Equal(t, etorder.OrderStatusCooked, state.Status)
	})

	t.Run("unknown provider returns 404", func(t *testing.T) {
		r, _, _ := setupRouter(t)
		w := postCallback(r, "/webhooks/mcdonalds", `{"id":"ext-1","status":"cooking"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown external id returns 404", func(t *testing.T) {
		r, _, _ := setupRouter(t)
		w := postCallback(r, "/webhooks/kfc", `{"id":"ghost","status":"cooking"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown status vocabulary returns 400", func(t *testing.T) {
		r, _, _ := setupRouter(t)
		w := postCallback(r, "/webhooks/kfc", `{"id":"ext-1","status":"deep-frying"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing fields return 400", func(t *testing.T) {
		r, _, _ := setupRouter(t)
		w := postCallback(r, "/webhooks/kfc", `{"id":"ext-1"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
