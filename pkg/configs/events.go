package configs

import "github.com/spf13/viper"

// EventsConfig 控制文件事件发布的开关（全局与分主题）.
type EventsConfig struct {
	Enabled bool             `mapstructure:"enabled"` // 总开关
	File    FileEventsConfig `mapstructure:"file"`
}

// FileEventsConfig 文件生命周期事件开关.
type FileEventsConfig struct {
	Stored   bool `mapstructure:"stored"`
	Deleted  bool `mapstructure:"deleted"`
	Orphaned bool `mapstructure:"orphaned"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", true)

	v.SetDefault("events.file.stored", true)
	v.SetDefault("events.file.deleted", true)
	// 清理任务产生的事件，默认关闭
	v.SetDefault("events.file.orphaned", false)
}
