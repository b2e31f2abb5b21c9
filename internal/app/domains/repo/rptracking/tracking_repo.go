package rptracking

import (
	"context"
	"errors"
	"time"

	"catering/internal/app/domains/entity/ettracking"
)

// 命名空间约定
const (
	NamespaceOrders   = "orders"          // 订单 ID → TrackingRecord
	NamespaceExternal = "external_orders" // <provider>:<external_id> → ExternalRef
)

// 错误定义
var (
	ErrRecordNotFound = errors.New("tracking record not found")
	ErrRefNotFound    = errors.New("external order reference not found")
)

// TrackingRepository 追踪记录仓储接口
// 实现必须保证 UpdateRecord 是按键串行化的读-合并-写：
// 并发修改同一订单的不同餐厅项不能互相丢失
type TrackingRepository interface {
	// CreateRecord 写入初始追踪记录（整体覆盖，由 fan-out 派发独占调用）
	CreateRecord(ctx context.Context, orderID int64, record *ettracking.TrackingRecord, ttl time.Duration) error

	// GetRecord 读取追踪记录，不存在返回 ErrRecordNotFound
	GetRecord(ctx context.Context, orderID int64) (*ettracking.TrackingRecord, error)

	// DeleteRecord 删除追踪记录
	DeleteRecord(ctx context.Context, orderID int64) error

	// UpdateRecord 原子地读-合并-写追踪记录
	// fn 返回 changed=false 表示无需写回；返回合并后的最新记录
	UpdateRecord(ctx context.Context, orderID int64, fn func(record *ettracking.TrackingRecord) (changed bool, err error)) (*ettracking.TrackingRecord, error)

	// SaveExternalRef 写入外部单号反查索引（子订单下单成功时调用）
	SaveExternalRef(ctx context.Context, providerID, externalID string, ref *ettracking.ExternalRef, ttl time.Duration) error

	// GetExternalRef 根据供应商单号反查内部订单，不存在返回 ErrRefNotFound
	GetExternalRef(ctx context.Context, providerID, externalID string) (*ettracking.ExternalRef, error)
}
