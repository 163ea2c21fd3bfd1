package kv_test

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/filedock/pkg/configs"
	"github.com/yeisme/filedock/pkg/internal/storage/kv"
)

func memoryConfig(ttl time.Duration) *configs.KVConfig {
	return &configs.KVConfig{
		Type:   configs.KVTypeMemory,
		TTL:    ttl,
		Memory: configs.MemoryKVConfig{Size: 128},
	}
}

func TestMemoryKV_Basic(t *testing.T) {
	ctx := context.Background()

	client, err := kv.New(ctx, memoryConfig(time.Minute))
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })

	if _, err := client.Get(ctx, "file.id.missing"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("Get on missing key returned %v, want ErrNotFound", err)
	}

	if err := client.Set(ctx, "file.id.a", []byte("alpha"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := client.Set(ctx, "file.name.b.png", []byte("beta"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := client.Get(ctx, "file.id.a")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if string(got) != "alpha" {
		t.Errorf("get returned %q, want %q", got, "alpha")
	}

	keys, err := client.Keys(ctx, "file.id.*")
	if err != nil {
		t.Fatalf("keys failed: %v", err)
	}

	if len(keys) != 1 || keys[0] != "file.id.a" {
		t.Errorf("keys returned %v, want [file.id.a]", keys)
	}

	if err := client.Delete(ctx, "file.id.a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if ok, err := client.Exists(ctx, "file.id.a"); err != nil || ok {
		t.Errorf("exists after delete = %v, %v; want false, nil", ok, err)
	}

	if err := client.Ping(ctx); err != nil {
		t.Errorf("ping failed: %v", err)
	}
}

func TestMemoryKV_ValueIsCopied(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, memoryConfig(0))
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}

	buf := []byte("original")
	if err := store.Set(ctx, "k", buf, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	buf[0] = 'X'

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if string(got) != "original" {
		t.Errorf("stored value changed to %q", got)
	}
}

func TestMemoryKV_PerKeyTTL(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, memoryConfig(time.Hour))
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}

	if err := store.Set(ctx, "short", []byte("v"), 20*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		if _, err := store.Get(ctx, "short"); err != nil {
			return
		}

		if time.Now().After(deadline) {
			t.Fatal("key did not expire after its per-key ttl")
		}

		time.Sleep(10 * time.Millisecond)
	}
}

func TestNewKVStore_Unsupported(t *testing.T) {
	if _, err := kv.NewKVStore(context.Background(), &configs.KVConfig{Type: "etcd"}); err == nil {
		t.Fatal("expected error for unsupported kv type")
	}

	if !slices.Contains(kv.GetRegisteredKVTypes(), configs.KVTypeMemory) {
		t.Errorf("memory kv not registered: %v", kv.GetRegisteredKVTypes())
	}
}

func BenchmarkMemoryKV(b *testing.B) {
	store, err := kv.NewKVStore(context.Background(), memoryConfig(time.Minute))
	if err != nil {
		b.Fatalf("create memory kv: %v", err)
	}

	benchKV(b, "memory", store)
	_ = store.Close()
}

// 设置 ENABLE_REDIS_BENCH=1 和 REDIS_ADDR 启用.
func BenchmarkRedisKV(b *testing.B) {
	if os.Getenv("ENABLE_REDIS_BENCH") == "" {
		b.Skip("set ENABLE_REDIS_BENCH=1 to enable")
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	cfg := &configs.KVConfig{Type: configs.KVTypeRedis, TTL: time.Minute, Redis: configs.RedisKVConfig{Addr: addr}}

	store, err := kv.NewKVStore(context.Background(), cfg)
	if err != nil {
		b.Skipf("redis not available: %v", err)
	}

	benchKV(b, "redis", store)
	_ = store.Close()
}

// 设置 ENABLE_NATS_BENCH=1 和 NATS_URL 启用.
func BenchmarkNATSKV(b *testing.B) {
	if os.Getenv("ENABLE_NATS_BENCH") == "" {
		b.Skip("set ENABLE_NATS_BENCH=1 to enable")
	}

	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://127.0.0.1:4222"
	}

	cfg := &configs.KVConfig{
		Type: configs.KVTypeNATS,
		TTL:  time.Minute,
		NATS: configs.NATSKVConfig{URL: url, Bucket: "bench-kv"},
	}

	store, err := kv.NewKVStore(context.Background(), cfg)
	if err != nil {
		b.Skipf("nats not available: %v", err)
	}

	benchKV(b, "nats", store)
	_ = store.Close()
}

// benchKV 执行 Set/Get/Delete 基准测试.
func benchKV(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()
	payload := make([]byte, 1024)
	_, _ = crand.Read(payload)

	var ctr uint64

	b.Run(name+"/serial", func(b *testing.B) {
		b.ReportAllocs()

		for i := 0; b.Loop(); i++ {
			key := fmt.Sprintf("bench-%s-%d", name, i)
			if err := store.Set(ctx, key, payload, 0); err != nil {
				b.Fatalf("set failed: %v", err)
			}

			if _, err := store.Get(ctx, key); err != nil {
				b.Fatalf("get failed: %v", err)
			}

			if err := store.Delete(ctx, key); err != nil {
				b.Fatalf("delete failed: %v", err)
			}
		}
	})

	b.Run(name+"/parallel", func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				key := fmt.Sprintf("bench-%s-p-%d", name, atomic.AddUint64(&ctr, 1))
				if err := store.Set(ctx, key, payload, 0); err != nil {
					b.Fatalf("set failed: %v", err)
				}

				if _, err := store.Get(ctx, key); err != nil {
					b.Fatalf("get failed: %v", err)
				}

				_ = store.Delete(ctx, key)
			}
		})
	})
}
