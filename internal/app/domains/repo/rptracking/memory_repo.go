package rptracking

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"catering/internal/app/domains/entity/ettracking"
)

// MemoryTrackingRepository 内存版追踪记录仓储
// 用于单元测试与本地快速验证；通过每键互斥锁提供与 Redis 实现
// 相同的读-合并-写串行化语义
type MemoryTrackingRepository struct {
	mu      sync.Mutex
	records map[int64][]byte
	refs    map[string][]byte
}

// NewMemoryTrackingRepository 创建内存仓储实例
func NewMemoryTrackingRepository() *MemoryTrackingRepository {
	return &MemoryTrackingRepository{
		records: make(map[int64][]byte),
		refs:    make(map[string][]byte),
	}
}

// CreateRecord 写入初始追踪记录（整体覆盖，忽略 ttl）
func (m *MemoryTrackingRepository) CreateRecord(ctx context.Context, orderID int64, record *ettracking.TrackingRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[orderID] = data
	return nil
}

// GetRecord 读取追踪记录
func (m *MemoryTrackingRepository) GetRecord(ctx context.Context, orderID int64) (*ettracking.TrackingRecord, error) {
	m.mu.Lock()
	data, ok := m.records[orderID]
	m.mu.Unlock()

	if !ok {
		return nil, ErrRecordNotFound
	}

	var record ettracking.TrackingRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteRecord 删除追踪记录
func (m *MemoryTrackingRepository) DeleteRecord(ctx context.Context, orderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, orderID)
	return nil
}

// UpdateRecord 持锁执行读-合并-写，修改期间其他写入者阻塞
func (m *MemoryTrackingRepository) UpdateRecord(ctx context.Context, orderID int64, fn func(record *ettracking.TrackingRecord) (bool, error)) (*ettracking.TrackingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.records[orderID]
	if !ok {
		return nil, ErrRecordNotFound
	}

	var record ettracking.TrackingRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}

	changed, err := fn(&record)
	if err != nil {
		return nil, err
	}

	if changed {
		next, err := json.Marshal(&record)
		if err != nil {
			return nil, err
		}
		m.records[orderID] = next
	}

	return &record, nil
}

// SaveExternalRef 写入外部单号反查索引
func (m *MemoryTrackingRepository) SaveExternalRef(ctx context.Context, providerID, externalID string, ref *ettracking.ExternalRef, ttl time.Duration) error {
	data, err := json.Marshal(ref)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs[refKey(providerID, externalID)] = data
	return nil
}

// GetExternalRef 根据供应商单号反查内部订单
func (m *MemoryTrackingRepository) GetExternalRef(ctx context.Context, providerID, externalID string) (*ettracking.ExternalRef, error) {
	m.mu.Lock()
	data, ok := m.refs[refKey(providerID, externalID)]
	m.mu.Unlock()

	if !ok {
		return nil, ErrRefNotFound
	}

	var ref ettracking.ExternalRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}
