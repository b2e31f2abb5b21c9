package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catering/internal/app/domains/model"
	"catering/internal/app/pkg/errorx"
	"catering/internal/app/pkg/logger"
	"catering/internal/worker/framework"
)

type recordingHandler struct {
	calls int
	err   error
}

func (r *recordingHandler) Handle(ctx context.Context, data *model.CookJobBusinessData) error {
	r.calls++
	return r.err
}

func makeJobMessage(t *testing.T, actionType string) *framework.Message {
	t.Helper()
	job := model.CookJob{
		Payload: model.CookJobPayload{
			Data: model.CookJobData{
				RequestID:  "req-1",
				ActionType: actionType,
				ID:         "100",
				Data: model.CookJobBusinessData{
					OrderID:      100,
					RestaurantID: 1,
					ProviderID:   "silpo",
				},
			},
		},
	}
	data, err := json.Marshal(job)
	require.NoError(t, err)
	return &framework.Message{ID: "msg-1", Queue: "q", Data: data}
}

func TestGetProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("routes to handler and acks on success", func(t *testing.T) {
		handler := &recordingHandler{}
		proc := GetProcess(logger.NopLogger{}, map[string]ActionHandler{
			model.ActionTypeSuborderCook: handler,
		})

		resp := proc(ctx, makeJobMessage(t, model.ActionTypeSuborderCook))
		assert.Equal(t, framework.JobRespStatusSuccess, resp.Action)
		assert.Equal(t, 1, handler.calls)
	})

	t.Run("retryable error releases the message", func(t *testing.T) {
		handler := &recordingHandler{err: errorx.Retriable("provider flaked")}
		proc := GetProcess(logger.NopLogger{}, map[string]ActionHandler{
			model.ActionTypeSuborderCook: handler,
		})

		resp := proc(ctx, makeJobMessage(t, model.ActionTypeSuborderCook))
		assert.Equal(t, framework.JobRespStatusRelease, resp.Action)
	})

	t.Run("fatal error buries the message", func(t *testing.T) {
		handler := &recordingHandler{err: errorx.NonRetriable("record missing")}
		proc := GetProcess(logger.NopLogger{}, map[string]ActionHandler{
			model.ActionTypeSuborderCook: handler,
		})

		resp := proc(ctx, makeJobMessage(t, model.ActionTypeSuborderCook))
		assert.Equal(t, framework.JobRespStatusBury, resp.Action)
	})

	t.Run("unknown action type is buried", func(t *testing.T) {
		handler := &recordingHandler{}
		proc := GetProcess(logger.NopLogger{}, map[string]ActionHandler{
			model.ActionTypeSuborderCook: handler,
		})

		resp := proc(ctx, makeJobMessage(t, "order_teleport"))
		assert.Equal(t, framework.JobRespStatusBury, resp.Action)
		assert.Equal(t, 0, handler.calls)
	})

	t.Run("malformed payload is buried", func(t *testing.T) {
		proc := GetProcess(logger.NopLogger{}, map[string]ActionHandler{})

		resp := proc(ctx, &framework.Message{ID: "msg-1", Queue: "q", Data: []byte("not json")})
		assert.Equal(t, framework.JobRespStatusBury, resp.Action)
	})
}
