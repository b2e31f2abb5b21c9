package provider

import (
	"context"
	"fmt"

	"catering/internal/app/domains/entity/etorder"
	"catering/internal/app/pkg/errorx"
)

// Mode 供应商集成方式
type Mode string

const (
	// ModePoll 轮询式：我们主动查询供应商订单状态
	ModePoll Mode = "poll"
	// ModePush 推送式：供应商通过 webhook 回调推送状态变化
	ModePush Mode = "push"
)

// RemoteItem 发往供应商的菜品
type RemoteItem struct {
	Dish     string `json:"dish"`
	Quantity int    `json:"quantity"`
}

// RemoteOrder 供应商侧订单（状态已翻译为内部取值）
type RemoteOrder struct {
	ExternalID string
	Status     etorder.OrderStatus
}

// Client 供应商客户端接口（每个供应商一个实现）
type Client interface {
	// ID 稳定的供应商标识
	ID() string

	// Mode 集成方式
	Mode() Mode

	// CreateOrder 在供应商系统创建子订单
	CreateOrder(ctx context.Context, items []RemoteItem) (*RemoteOrder, error)

	// GetOrder 查询供应商侧订单当前状态
	GetOrder(ctx context.Context, externalID string) (*RemoteOrder, error)

	// TranslateStatus 将供应商状态词汇翻译为内部状态
	TranslateStatus(remote string) (etorder.OrderStatus, error)
}

// Registry 供应商注册表
// 按稳定的供应商 ID 解析，餐厅配置里引用该 ID；
// 不做餐厅名称字符串匹配
type Registry struct {
	clients map[string]Client
}

// NewRegistry 创建注册表
func NewRegistry(clients ...Client) *Registry {
	m := make(map[string]Client, len(clients))
	for _, c := range clients {
		m[c.ID()] = c
	}
	return &Registry{clients: m}
}

// Resolve 解析供应商客户端
// 未注册的供应商是配置缺陷，返回不可重试错误
func (r *Registry) Resolve(providerID string) (Client, error) {
	c, ok := r.clients[providerID]
	if !ok {
		return nil, errorx.NonRetriable(fmt.Sprintf("unsupported provider: %s", providerID))
	}
	return c, nil
}
