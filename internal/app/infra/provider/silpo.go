package provider

import "catering/internal/app/domains/entity/etorder"

// ProviderSilpo Silpo 供应商标识
const ProviderSilpo = "silpo"

// silpoStatusMap Silpo 状态词汇表
// "finished" 是对方配送完成后的状态，对厨房环节而言等价于已出餐
var silpoStatusMap = map[string]etorder.OrderStatus{
	"not started": etorder.OrderStatusNotStarted,
	"cooking":     etorder.OrderStatusCooking,
	"cooked":      etorder.OrderStatusCooked,
	"finished":    etorder.OrderStatusCooked,
}

// NewSilpoClient 创建 Silpo 客户端（轮询式集成）
func NewSilpoClient(baseURL string) Client {
	return newRESTClient(ProviderSilpo, ModePoll, baseURL, silpoStatusMap)
}
