package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"catering/internal/app/domains/model"
	"catering/internal/app/pkg/errorx"
	"catering/internal/app/pkg/logger"
	"catering/internal/worker/framework"
)

// ActionHandler 业务处理器接口（按 action_type 路由）
type ActionHandler interface {
	Handle(ctx context.Context, data *model.CookJobBusinessData) error
}

// GetProcess 返回核心处理函数（注入到 Processor）
// 解析标准 Job 信封，按 action_type 路由到业务处理器，
// 并把业务错误的可重试性翻译成 ACK 动作
func GetProcess(log logger.Logger, handlerMap map[string]ActionHandler) framework.Proc {
	return func(ctx context.Context, msg *framework.Message) *framework.JobResp {
		startTime := time.Now()

		// 1. 解析 Job
		data, err := parseJob(msg)
		if err != nil {
			log.Errorf(ctx, "[GetProcess] parseJob failed: %v", err)
			return &framework.JobResp{Action: framework.JobRespStatusBury}
		}

		// 2. 注入 TraceID 到 Context
		ctx = context.WithValue(ctx, "trace_id", data.RequestID)
		ctx = context.WithValue(ctx, "order_id", data.Data.OrderID)

		log.Infof(ctx, "[GetProcess] Processing job: action_type=%s, request_id=%s, id=%s",
			data.ActionType, data.RequestID, data.ID)

		// 3. 路由到业务处理器
		handler, ok := handlerMap[data.ActionType]
		if !ok {
			log.Errorf(ctx, "[GetProcess] handler not found for action_type: %s", data.ActionType)
			return &framework.JobResp{Action: framework.JobRespStatusBury}
		}

		// 4. 调用处理器（捕获 panic）
		resp := &framework.JobResp{Action: framework.JobRespStatusSuccess}
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf(ctx, "[GetProcess] handler panic: %v", r)
					resp = &framework.JobResp{Action: framework.JobRespStatusBury}
				}
			}()

			if err := handler.Handle(ctx, &data.Data); err != nil {
				if errorx.IsRetryable(err) {
					log.Warnf(ctx, "[GetProcess] handler failed, will retry: %v", err)
					resp = &framework.JobResp{Action: framework.JobRespStatusRelease}
				} else {
					log.Errorf(ctx, "[GetProcess] handler failed permanently: %v", err)
					resp = &framework.JobResp{Action: framework.JobRespStatusBury}
				}
			}
		}()

		log.Infof(ctx, "[GetProcess] Processing complete: action=%d, duration=%v",
			resp.Action, time.Since(startTime))

		return resp
	}
}

// parseJob 解析标准 Job 信封并校验必填字段
func parseJob(msg *framework.Message) (*model.CookJobData, error) {
	var job model.CookJob
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	data := job.Payload.Data
	if data.ActionType == "" {
		return nil, fmt.Errorf("invalid job structure: action_type is empty")
	}
	if data.Data.OrderID <= 0 || data.Data.RestaurantID <= 0 {
		return nil, fmt.Errorf("invalid job structure: order_id/restaurant_id missing")
	}

	// RequestID 为空则生成一个
	if data.RequestID == "" {
		data.RequestID = uuid.New().String()
	}

	return &data, nil
}
