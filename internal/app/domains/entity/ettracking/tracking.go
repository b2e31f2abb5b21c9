package ettracking

import (
	"errors"
	"fmt"
	"strconv"

	"catering/internal/app/domains/entity/etorder"
)

// SchemaVersion 追踪记录结构版本号
// 记录存在 Redis 中，在途订单会跨发布存活，结构变更时据此做迁移
const SchemaVersion = 1

// 错误定义
var (
	ErrRestaurantMissing = errors.New("restaurant entry missing in tracking record")
	ErrEmptyRestaurants  = errors.New("tracking record has no restaurant entries")
)

// SubOrderState 单个餐厅子订单状态
type SubOrderState struct {
	ExternalID string              `json:"external_id,omitempty"` // 供应商侧订单号，下单成功前为空
	Status     etorder.OrderStatus `json:"status"`
}

// ExternalRef 外部单号反查索引的值（webhook 回调解析用）
type ExternalRef struct {
	OrderID      int64 `json:"order_id"`
	RestaurantID int64 `json:"restaurant_id"`
}

// TrackingRecord 订单追踪记录（每个订单一条，按订单 ID 存储）
// 唯一的共享可变状态；所有修改必须经过 TrackingRepository 的
// 读-合并-写循环，不允许无条件整体覆盖
type TrackingRecord struct {
	SchemaVersion int                       `json:"schema_version"`
	Restaurants   map[string]*SubOrderState `json:"restaurants"`
	Delivery      map[string]string         `json:"delivery"` // 配送环节预留
}

// NewTrackingRecord 创建追踪记录，所有餐厅初始化为 not_started
func NewTrackingRecord(restaurantIDs []int64) *TrackingRecord {
	record := &TrackingRecord{
		SchemaVersion: SchemaVersion,
		Restaurants:   make(map[string]*SubOrderState, len(restaurantIDs)),
		Delivery:      make(map[string]string),
	}
	for _, id := range restaurantIDs {
		record.Restaurants[RestaurantKey(id)] = &SubOrderState{
			Status: etorder.OrderStatusNotStarted,
		}
	}
	return record
}

// RestaurantKey 餐厅在记录中的键（数字 ID 的字符串形式）
func RestaurantKey(restaurantID int64) string {
	return strconv.FormatInt(restaurantID, 10)
}

// SubOrder 查找某个餐厅的子订单状态
func (r *TrackingRecord) SubOrder(restaurantID int64) (*SubOrderState, bool) {
	state, ok := r.Restaurants[RestaurantKey(restaurantID)]
	return state, ok
}

// ApplyUpdate 合并一次子订单状态更新
// 单调推进规则：新状态不比当前状态靠前才生效，否则静默丢弃（返回 false）；
// 外部单号只在首次出现时写入。餐厅键不存在是派发缺陷，返回致命错误
func (r *TrackingRecord) ApplyUpdate(restaurantID int64, externalID string, status etorder.OrderStatus) (bool, error) {
	state, ok := r.SubOrder(restaurantID)
	if !ok {
		return false, fmt.Errorf("restaurant %d: %w", restaurantID, ErrRestaurantMissing)
	}
	if !status.Valid() {
		return false, fmt.Errorf("invalid sub-order status: %q", status)
	}

	// 终态后不再接受任何修改，迟到的回调连外部单号都不补写
	if state.Status.Terminal() {
		return false, nil
	}

	changed := false
	if state.ExternalID == "" && externalID != "" {
		state.ExternalID = externalID
		changed = true
	}
	if state.Status.CanAdvanceTo(status) {
		state.Status = status
		changed = true
	}
	return changed, nil
}

// FullyCooked 判断是否全部餐厅出餐完毕
// 任一子订单失败则整单不再收敛；空的餐厅表属于配置缺陷，
// 保守返回 false，绝不视作收敛
func (r *TrackingRecord) FullyCooked() bool {
	if len(r.Restaurants) == 0 {
		return false
	}
	for _, state := range r.Restaurants {
		if state.Status == etorder.OrderStatusFailed {
			return false
		}
		if state.Status.Rank() < etorder.OrderStatusCooked.Rank() {
			return false
		}
	}
	return true
}
