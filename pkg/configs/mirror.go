package configs

import (
	"time"

	"github.com/spf13/viper"
)

// MirrorConfig 将本地文件异步镜像到 S3 兼容存储（MinIO 等）.
// 本地磁盘始终是权威副本，镜像失败只记录日志.
type MirrorConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Endpoint  string        `mapstructure:"endpoint"   rule:"required_if=Enabled true"`
	AccessKey string        `mapstructure:"access_key"`
	SecretKey string        `mapstructure:"secret_key"`
	Bucket    string        `mapstructure:"bucket"     rule:"required_if=Enabled true"`
	Region    string        `mapstructure:"region"`
	UseSSL    bool          `mapstructure:"use_ssl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

func (c *MirrorConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mirror.enabled", false)
	v.SetDefault("mirror.endpoint", "localhost:9000")
	v.SetDefault("mirror.access_key", "")
	v.SetDefault("mirror.secret_key", "")
	v.SetDefault("mirror.bucket", "filedock")
	v.SetDefault("mirror.region", "us-east-1")
	v.SetDefault("mirror.use_ssl", false)
	v.SetDefault("mirror.key_prefix", "")
	v.SetDefault("mirror.timeout", 30*time.Second)
}
