package etorder

import "fmt"

// OrderStatus 订单状态
// 同一套取值既用于聚合订单，也用于追踪记录里的餐厅子订单
// （子订单只会走到 cooked；delivered 属于配送环节，failed 为终态）
type OrderStatus string

const (
	OrderStatusNotStarted OrderStatus = "not_started"
	OrderStatusCooking    OrderStatus = "cooking"
	OrderStatusCooked     OrderStatus = "cooked"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusFailed     OrderStatus = "failed"
)

// statusRanks 状态单调序：not_started < cooking < cooked < delivered < failed
// failed 排在最后，保证标记失败后不会被迟到的回调复活
var statusRanks = map[OrderStatus]int{
	OrderStatusNotStarted: 0,
	OrderStatusCooking:    1,
	OrderStatusCooked:     2,
	OrderStatusDelivered:  3,
	OrderStatusFailed:     4,
}

// Valid 判断状态取值是否合法
func (s OrderStatus) Valid() bool {
	_, ok := statusRanks[s]
	return ok
}

// Rank 返回状态在单调序中的位置（非法状态返回 -1）
func (s OrderStatus) Rank() int {
	rank, ok := statusRanks[s]
	if !ok {
		return -1
	}
	return rank
}

// CanAdvanceTo 判断能否从当前状态推进到目标状态
// 只允许严格前进；重复/乱序投递的旧状态落在这里被丢弃
func (s OrderStatus) CanAdvanceTo(to OrderStatus) bool {
	if !s.Valid() || !to.Valid() {
		return false
	}
	return to.Rank() > s.Rank()
}

// Terminal 判断是否为终态
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusFailed
}

// ParseStatus 解析状态字符串
func ParseStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown order status: %q", raw)
	}
	return s, nil
}

// PriorStatuses 返回目标状态之前的全部状态（仓储层状态前进守卫使用）
func PriorStatuses(to OrderStatus) []OrderStatus {
	prior := make([]OrderStatus, 0, len(statusRanks))
	for status, rank := range statusRanks {
		if rank < to.Rank() {
			prior = append(prior, status)
		}
	}
	return prior
}
