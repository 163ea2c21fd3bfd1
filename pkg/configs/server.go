package configs

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPort    = 8080
	DefaultHost    = "0.0.0.0"
	DefaultTimeout = 30 // 秒
)

// ServerConfig HTTP 服务配置.
type ServerConfig struct {
	Port         int    `mapstructure:"port"          rule:"min=1,max=65535"`
	Host         string `mapstructure:"host"          rule:"ip"`
	ReloadConfig bool   `mapstructure:"reload_config"`
	Debug        bool   `mapstructure:"debug"`
	Timeout      int    `mapstructure:"timeout"       rule:"min=1,max=300"` // 读取请求头超时，秒
	// BaseURL 对外地址，用于拼接文件公开 URL. 缺失时启动失败.
	BaseURL string `mapstructure:"base_url" rule:"required,url"`
	// CORSOrigins 允许的跨域来源，为空时允许全部.
	CORSOrigins []string `mapstructure:"cors_origins" rule:"dive,url"`
}

// Addr 返回 host:port 监听地址.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (s *ServerConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// PublicURL 拼接 {base_url}/{segment}/{filename}，忽略多余的斜杠.
func (s *ServerConfig) PublicURL(segment, filename string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.Trim(segment, "/") + "/" + filename
}

func (s *ServerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.reload_config", true)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.timeout", DefaultTimeout)
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.cors_origins", []string{})
}
