package kv

import (
	"context"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/yeisme/filedock/pkg/configs"
)

// MemoryKV 基于有界 LRU 的进程内 KV，条目在 kv.ttl 后过期.
// 单次 Set 指定更短的 ttl 时通过值包装实现.
type MemoryKV struct {
	cache      *expirable.LRU[string, []byte]
	defaultTTL time.Duration
	now        func() time.Time
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV(_ context.Context, cfg *configs.KVConfig) (KVStore, error) {
	size := cfg.Memory.Size
	if size <= 0 {
		size = configs.DefaultKVMemorySize
	}

	return &MemoryKV{
		cache:      expirable.NewLRU[string, []byte](size, nil, cfg.TTL),
		defaultTTL: cfg.TTL,
		now:        time.Now,
	}, nil
}

// Get 获取键的值.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	raw, ok := m.cache.Get(key)
	if !ok {
		return nil, notFound(key)
	}

	val, expired, err := decodeWithTTL(raw, m.now())
	if err != nil {
		return nil, err
	}

	if expired {
		m.cache.Remove(key)
		return nil, notFound(key)
	}

	return slices.Clone(val), nil
}

// Set 设置键的值.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	// 与 LRU 统一过期时间相同或更长的 ttl 无需包装
	if m.defaultTTL > 0 && ttl >= m.defaultTTL {
		ttl = 0
	}

	encoded, err := encodeWithTTL(slices.Clone(value), ttl, m.now())
	if err != nil {
		return err
	}

	m.cache.Add(key, encoded)

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.cache.Remove(key)
	return nil
}

// Exists 检查键是否存在.
func (m *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	if err != nil {
		return false, nil
	}

	return true, nil
}

// Keys 获取匹配模式的键.
func (m *MemoryKV) Keys(_ context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0)

	for _, k := range m.cache.Keys() {
		if matchKey(pattern, k) {
			keys = append(keys, k)
		}
	}

	return keys, nil
}

// Close 清空缓存.
func (m *MemoryKV) Close() error {
	m.cache.Purge()
	return nil
}

func init() {
	RegisterKVFactory(configs.KVTypeMemory, NewMemoryKV)
}
