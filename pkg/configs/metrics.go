package configs

import (
	"github.com/spf13/viper"
)

// MetricsConfig Prometheus 指标配置.
type MetricsConfig struct {
	Enabled        bool              `mapstructure:"enabled"`         // 是否启用Metrics
	Path           string            `mapstructure:"path"             rule:"required,startswith=/"`
	Namespace      string            `mapstructure:"namespace"`       // 指标名前缀
	RuntimeMetrics bool              `mapstructure:"runtime_metrics"` // 是否收集运行时与进程指标
	DBMetrics      bool              `mapstructure:"db_metrics"`      // 是否启用 gorm prometheus 插件
	Labels         map[string]string `mapstructure:"labels"`          // 常量标签
}

// setDefaults 设置Metrics配置的默认值.
func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "filedock")
	v.SetDefault("metrics.runtime_metrics", true)
	v.SetDefault("metrics.db_metrics", false)
	v.SetDefault("metrics.labels", map[string]string{
		"service": "filedock",
	})
}
