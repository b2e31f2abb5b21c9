package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 错误定义
var (
	ErrKeyNotFound    = errors.New("key not found")
	ErrUpdateConflict = errors.New("update aborted after too many conflicts")
)

// updateMaxRetries 乐观并发冲突的最大重试次数
const updateMaxRetries = 16

// Store 命名空间化的 KV 存储（追踪记录与外部单号索引都在这里）
// 键格式：<namespace>:<key>，值为 JSON 字节
type Store struct {
	rdb *redis.Client
}

// NewStore 创建 Store 实例，启动时校验连通性
func NewStore(addr, password string, db int) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Store{rdb: rdb}, nil
}

// Close 关闭底层连接
func (s *Store) Close() error {
	return s.rdb.Close()
}

// buildKey 拼接命名空间键
func (s *Store) buildKey(namespace, key string) string {
	return namespace + ":" + key
}

// Set 写入（整体覆盖），ttl 为 0 表示不过期
func (s *Store) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.buildKey(namespace, key), value, ttl).Err()
}

// Get 读取，键不存在返回 ErrKeyNotFound
func (s *Store) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, s.buildKey(namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Delete 删除
func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	return s.rdb.Del(ctx, s.buildKey(namespace, key)).Err()
}

// Update 对单个键执行乐观的读-合并-写循环
// 基于 WATCH/MULTI：并发写同一键时事务失败并重试，保证不同协程
// 对同一条记录的修改互不覆盖。fn 返回 nil 表示本次无需写回
func (s *Store) Update(ctx context.Context, namespace, key string, fn func(current []byte) ([]byte, error)) error {
	fullKey := s.buildKey(namespace, key)

	for i := 0; i < updateMaxRetries; i++ {
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.Get(ctx, fullKey).Bytes()
			if errors.Is(err, redis.Nil) {
				return ErrKeyNotFound
			}
			if err != nil {
				return err
			}

			next, err := fn(current)
			if err != nil {
				return err
			}
			if next == nil {
				// 无变化，不提交事务
				return nil
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, fullKey, next, redis.KeepTTL)
				return nil
			})
			return err
		}, fullKey)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}

	return ErrUpdateConflict
}
