// Package configs 管理应用程序配置，包括服务器、上传目录、数据库、缓存与事件队列的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	import "path/to/configs"
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
//
// Example accessing DB config:
//
//	config := configs.GetConfig()
//	dbConfig := config.DB
//	dsn := dbConfig.GetDSN()
//	fmt.Println("DSN:", dsn)
//
// Example accessing Upload config:
//
//	config := configs.GetConfig()
//	root := config.Upload.GetRootDir()
//	url := config.Server.PublicURL(config.Upload.RouteSegment, "avatar-xxx.png")
//
// 所有配置项均可通过 FILEDOCK_ 前缀的环境变量覆盖，例如 FILEDOCK_SERVER_BASE_URL.
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/yeisme/filedock/pkg/rule"
)

// AppVersion 应用版本，可通过 -ldflags "-X" 在构建时覆盖.
var AppVersion = "0.1.0"

// EnvPrefix 环境变量前缀.
const EnvPrefix = "FILEDOCK"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server         ServerConfig         `mapstructure:"server"`          // ServerConfig 服务器配置，端口、公开地址等
		Upload         UploadConfig         `mapstructure:"upload"`          // UploadConfig 上传目录与公开路由段
		DB             DBConfig             `mapstructure:"db"`              // DBConfig 数据库配置
		Log            LogConfig            `mapstructure:"log"`             // LogConfig 日志相关配置
		Auth           AuthConfig           `mapstructure:"auth"`            // AuthConfig 身份认证配置
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`      // RateLimitConfig 限流配置
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"` // CircuitBreakerConfig 熔断配置
		Metrics        MetricsConfig        `mapstructure:"metrics"`         // MetricsConfig 监控配置
		Tracing        TracingConfig        `mapstructure:"tracing"`         // TracingConfig 追踪配置
		KV             KVConfig             `mapstructure:"kv"`              // KVConfig 元数据缓存配置
		MQ             MQConfig             `mapstructure:"mq"`              // MQConfig 消息队列配置
		Events         EventsConfig         `mapstructure:"events"`          // EventsConfig 文件事件开关
		Mirror         MirrorConfig         `mapstructure:"mirror"`          // MirrorConfig S3 镜像配置
		Jobs           JobsConfig           `mapstructure:"jobs"`            // JobsConfig 定时任务配置
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
// 未找到配置文件时仅使用默认值与环境变量.
func InitConfig(path string) error {
	appViper = NewViper()

	// 检查path是否是文件
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		// 是文件，使用SetConfigFile，Viper会自动检测类型
		appViper.SetConfigFile(path)
	} else {
		// 是目录，设置配置名和路径
		appViper.SetConfigName("config")
		appViper.AddConfigPath(path)
		appViper.AddConfigPath(filepath.Join(path, "configs"))

		exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}

		for _, ext := range exts {
			cfg := filepath.Join(path, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				appViper.SetConfigFile(cfg)

				break
			}
		}
	}

	// 读取配置
	if err := appViper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := Load(appViper)
	if err != nil {
		return err
	}

	globalConfig = *cfg

	reloadConfigs(appViper, globalConfig.Server.ReloadConfig)

	return nil
}

// NewViper 创建带默认值与环境变量绑定的 Viper 实例.
func NewViper() *viper.Viper {
	v := viper.New()
	setAllDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load 将 Viper 中的配置解析为 AppConfig 并执行校验.
func Load(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 按 rule 标签校验配置，server.base_url 缺失视为启动失败.
func (c *AppConfig) Validate() error {
	if err := rule.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid config: %s", rule.Message(err))
	}

	if !c.Auth.Enabled {
		return errors.New("invalid config: auth.enabled: must be true, guarded routes reject requests without an identity")
	}

	segment := strings.Trim(c.Upload.RouteSegment, "/")
	if first, _, _ := strings.Cut(strings.Trim(c.Metrics.Path, "/"), "/"); c.Metrics.Enabled && segment == first {
		return fmt.Errorf("invalid config: upload.route_segment: %q conflicts with metrics.path %q", segment, c.Metrics.Path)
	}

	return nil
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var serverConfig ServerConfig

	var uploadConfig UploadConfig

	var dbConfig DBConfig

	var logConfig LogConfig

	var authConfig AuthConfig

	var rateLimitConfig RateLimitConfig

	var cbConfig CircuitBreakerConfig

	var metricsConfig MetricsConfig

	var tracingConfig TracingConfig

	var kvConfig KVConfig

	var mqConfig MQConfig

	var eventsConfig EventsConfig

	var mirrorConfig MirrorConfig

	var jobsConfig JobsConfig

	serverConfig.setDefaults(v)
	uploadConfig.setDefaults(v)
	dbConfig.setDefaults(v)
	logConfig.setDefaults(v)
	authConfig.setDefaults(v)
	rateLimitConfig.setDefaults(v)
	cbConfig.setDefaults(v)
	metricsConfig.setDefaults(v)
	tracingConfig.setDefaults(v)
	kvConfig.setDefaults(v)
	mqConfig.setDefaults(v)
	eventsConfig.setDefaults(v)
	mirrorConfig.setDefaults(v)
	jobsConfig.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}
	// 启用配置热重载，校验失败时保留旧配置
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)
		fmt.Println("Reloading configuration...")

		cfg, err := Load(v)
		if err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
			return
		}

		globalConfig = *cfg
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	return &globalConfig
}

// SetConfig 替换全局配置，主要用于测试.
func SetConfig(cfg AppConfig) {
	globalConfig = cfg
}

func GetViper() *viper.Viper {
	return appViper
}
