package rptracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"catering/internal/app/domains/entity/ettracking"
	"catering/internal/app/infra/persistence/redis"
)

// TrackingRepositoryImpl 追踪记录仓储实现（Redis）
type TrackingRepositoryImpl struct {
	store *redis.Store
}

// NewTrackingRepository 创建追踪记录仓储实例
func NewTrackingRepository(store *redis.Store) TrackingRepository {
	return &TrackingRepositoryImpl{store: store}
}

// orderKey 订单记录键
func orderKey(orderID int64) string {
	return strconv.FormatInt(orderID, 10)
}

// refKey 外部单号索引键
func refKey(providerID, externalID string) string {
	return providerID + ":" + externalID
}

// CreateRecord 写入初始追踪记录（整体覆盖）
func (r *TrackingRepositoryImpl) CreateRecord(ctx context.Context, orderID int64, record *ettracking.TrackingRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal tracking record failed: %w", err)
	}
	return r.store.Set(ctx, NamespaceOrders, orderKey(orderID), data, ttl)
}

// GetRecord 读取追踪记录
func (r *TrackingRepositoryImpl) GetRecord(ctx context.Context, orderID int64) (*ettracking.TrackingRecord, error) {
	data, err := r.store.Get(ctx, NamespaceOrders, orderKey(orderID))
	if errors.Is(err, redis.ErrKeyNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	var record ettracking.TrackingRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal tracking record failed: %w", err)
	}
	return &record, nil
}

// DeleteRecord 删除追踪记录
func (r *TrackingRepositoryImpl) DeleteRecord(ctx context.Context, orderID int64) error {
	return r.store.Delete(ctx, NamespaceOrders, orderKey(orderID))
}

// UpdateRecord 原子地读-合并-写追踪记录
// 底层使用 WATCH 乐观事务，冲突时整个循环重放
func (r *TrackingRepositoryImpl) UpdateRecord(ctx context.Context, orderID int64, fn func(record *ettracking.TrackingRecord) (bool, error)) (*ettracking.TrackingRecord, error) {
	var result *ettracking.TrackingRecord

	err := r.store.Update(ctx, NamespaceOrders, orderKey(orderID), func(current []byte) ([]byte, error) {
		var record ettracking.TrackingRecord
		if err := json.Unmarshal(current, &record); err != nil {
			return nil, fmt.Errorf("unmarshal tracking record failed: %w", err)
		}

		changed, err := fn(&record)
		if err != nil {
			return nil, err
		}
		result = &record

		if !changed {
			return nil, nil
		}
		return json.Marshal(&record)
	})

	if errors.Is(err, redis.ErrKeyNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SaveExternalRef 写入外部单号反查索引
func (r *TrackingRepositoryImpl) SaveExternalRef(ctx context.Context, providerID, externalID string, ref *ettracking.ExternalRef, ttl time.Duration) error {
	data, err := json.Marshal(ref)
	if err != nil {
		return fmt.Errorf("marshal external ref failed: %w", err)
	}
	return r.store.Set(ctx, NamespaceExternal, refKey(providerID, externalID), data, ttl)
}

// GetExternalRef 根据供应商单号反查内部订单
func (r *TrackingRepositoryImpl) GetExternalRef(ctx context.Context, providerID, externalID string) (*ettracking.ExternalRef, error) {
	data, err := r.store.Get(ctx, NamespaceExternal, refKey(providerID, externalID))
	if errors.Is(err, redis.ErrKeyNotFound) {
		return nil, ErrRefNotFound
	}
	if err != nil {
		return nil, err
	}

	var ref ettracking.ExternalRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return nil, fmt.Errorf("unmarshal external ref failed: %w", err)
	}
	return &ref, nil
}
