package configs

import (
	"time"

	"github.com/spf13/viper"
)

// KVType 键值存储类型.
type KVType string

const (
	KVTypeMemory KVType = "memory"
	KVTypeRedis  KVType = "redis"
	KVTypeNATS   KVType = "nats"

	DefaultKVMemorySize = 4096
	DefaultKVTTL        = 10 * time.Minute
)

// KVConfig 键值存储配置，用作文件记录的读缓存.
type KVConfig struct {
	Enabled bool           `mapstructure:"enabled"`
	Type    KVType         `mapstructure:"type"    rule:"oneof=memory redis nats"`
	TTL     time.Duration  `mapstructure:"ttl"`
	Memory  MemoryKVConfig `mapstructure:"memory"`
	Redis   RedisKVConfig  `mapstructure:"redis"`
	NATS    NATSKVConfig   `mapstructure:"nats"`
}

// MemoryKVConfig 进程内 LRU 配置.
type MemoryKVConfig struct {
	Size int `mapstructure:"size" rule:"min=1"`
}

// RedisKVConfig Redis KV 配置.
type RedisKVConfig struct {
	Addr      string `mapstructure:"addr"       rule:"hostname_port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"         rule:"min=0,max=15"`
	KeyPrefix string `mapstructure:"key_prefix"` // 所有键的命名空间前缀，多个实例共用一个库时区分
}

// NATSKVConfig NATS KV 配置.
type NATSKVConfig struct {
	URL      string `mapstructure:"url"      rule:"required"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Bucket   string `mapstructure:"bucket"   rule:"required"`
}

// GetKVType 返回当前配置的 KV 类型.
func (c *KVConfig) GetKVType() KVType {
	return c.Type
}

// setDefaults 设置 KV 配置的默认值.
func (c *KVConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("kv.enabled", true)
	v.SetDefault("kv.type", KVTypeMemory)
	v.SetDefault("kv.ttl", DefaultKVTTL)

	v.SetDefault("kv.memory.size", DefaultKVMemorySize)

	// Redis 默认值
	v.SetDefault("kv.redis.addr", "localhost:6379")
	v.SetDefault("kv.redis.password", "")
	v.SetDefault("kv.redis.db", 0)
	v.SetDefault("kv.redis.key_prefix", "filedock:")

	// NATS 默认值
	v.SetDefault("kv.nats.url", "nats://localhost:4222")
	v.SetDefault("kv.nats.user", "")
	v.SetDefault("kv.nats.password", "")
	v.SetDefault("kv.nats.bucket", "filedock-kv")
}
