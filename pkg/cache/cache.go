// Package cache 提供基于键值存储的泛型缓存实现.
//
// 基本用法:
//
//	c := cache.NewCache(kvStore)
//
//	err := cache.Set(ctx, c, "file.id.01J...", record, time.Minute)
//	rec, err := cache.Get[model.FileRecord](ctx, c, "file.id.01J...")
//
//	// 未命中时回源，同一键的并发回源只执行一次
//	rec, err := cache.GetOrSet(ctx, c, key, func() (model.FileRecord, error) {
//	    return repo.FindByID(ctx, id)
//	}, time.Minute)
//
//	// 删除后失效，进行中的回源不会写回
//	err := c.Invalidate(ctx, time.Minute, "file.id.01J...", "file.name.a.png")
//
// 值使用 sonic 序列化为 JSON. 缓存写入失败不影响回源结果.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/singleflight"

	"github.com/yeisme/filedock/pkg/internal/storage/kv"
)

// ErrMiss 缓存未命中.
var ErrMiss = errors.New("cache miss")

// Cache 基于KV存储的缓存实现.
type Cache struct {
	kvStore kv.KVStore
	group   singleflight.Group
}

// NewCache 创建一个新的缓存实例.
func NewCache(kvStore kv.KVStore) *Cache {
	return &Cache{
		kvStore: kvStore,
	}
}

// Get 泛型获取缓存值，未命中返回 ErrMiss.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return zero, ErrMiss
	}

	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, key, data, ttl)
}

// Delete 删除缓存键，返回遇到的第一个错误.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	var first error

	for _, key := range keys {
		if err := c.kvStore.Delete(ctx, key); err != nil && first == nil {
			first = err
		}
	}

	return first
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, key)
}

// GetOrSet 获取缓存值，未命中时调用 getter 并写回. getter 的错误原样返回且不缓存.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		value, err := getter()
		if err != nil {
			return value, err
		}

		storeUnlessInvalidated(ctx, c, key, value, ttl)

		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}

// Invalidate 删除缓存键并写入墓碑. ttl 内仍在进行的回源不会把旧值写回这些键.
func (c *Cache) Invalidate(ctx context.Context, ttl time.Duration, keys ...string) error {
	var first error

	for _, key := range keys {
		c.group.Forget(key)

		if err := c.kvStore.Set(ctx, tombstoneKey(key), []byte{1}, ttl); err != nil && first == nil {
			first = err
		}
	}

	if err := c.Delete(ctx, keys...); err != nil && first == nil {
		first = err
	}

	return first
}

func tombstoneKey(key string) string {
	return "tombstone." + key
}

// invalidated 查询出错时按已失效处理.
func (c *Cache) invalidated(ctx context.Context, key string) bool {
	ok, err := c.kvStore.Exists(ctx, tombstoneKey(key))
	return err != nil || ok
}

// storeUnlessInvalidated 写回前后各检查一次墓碑，写入后才出现的墓碑会撤销本次写入.
// 写缓存失败时忽略.
func storeUnlessInvalidated[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) {
	if c.invalidated(ctx, key) {
		return
	}

	if err := Set(ctx, c, key, value, ttl); err != nil {
		return
	}

	if c.invalidated(ctx, key) {
		_ = c.kvStore.Delete(ctx, key)
	}
}

// Clear 删除匹配模式的全部键.
func (c *Cache) Clear(ctx context.Context, pattern string) error {
	keys, err := c.kvStore.Keys(ctx, pattern)
	if err != nil {
		return err
	}

	return c.Delete(ctx, keys...)
}
