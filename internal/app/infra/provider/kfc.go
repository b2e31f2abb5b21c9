package provider

import "catering/internal/app/domains/entity/etorder"

// ProviderKFC KFC 供应商标识
const ProviderKFC = "kfc"

// kfcStatusMap KFC 状态词汇表（webhook 回调里也是同一套取值）
var kfcStatusMap = map[string]etorder.OrderStatus{
	"not started": etorder.OrderStatusNotStarted,
	"cooking":     etorder.OrderStatusCooking,
	"cooked":      etorder.OrderStatusCooked,
	"finished":    etorder.OrderStatusCooked,
}

// NewKFCClient 创建 KFC 客户端（推送式集成：下单后状态经 webhook 回调推进）
func NewKFCClient(baseURL string) Client {
	return newRESTClient(ProviderKFC, ModePush, baseURL, kfcStatusMap)
}

// NewFromConfig 根据配置创建供应商客户端
// 已知供应商使用各自的状态表；未知 ID 返回 nil 交由调用方报配置错误
func NewFromConfig(id, mode, baseURL string) Client {
	switch id {
	case ProviderSilpo:
		return NewSilpoClient(baseURL)
	case ProviderKFC:
		return NewKFCClient(baseURL)
	default:
		return nil
	}
}
