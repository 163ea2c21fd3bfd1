package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultSweepCron  = "0 3 * * *" // 每日 03:00
	DefaultSweepGrace = time.Hour   // 新文件在此时长内不视为孤儿
)

// JobsConfig 后台定时任务配置.
type JobsConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	SweepCron  string        `mapstructure:"sweep_cron"  rule:"required"`
	SweepGrace time.Duration `mapstructure:"sweep_grace" rule:"min=0"`
	// SweepDryRun 为 true 时仅报告不删除.
	SweepDryRun bool `mapstructure:"sweep_dry_run"`
}

func (c *JobsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.sweep_cron", DefaultSweepCron)
	v.SetDefault("jobs.sweep_grace", DefaultSweepGrace)
	v.SetDefault("jobs.sweep_dry_run", false)
}
