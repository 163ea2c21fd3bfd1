package configs

import "github.com/spf13/viper"

// AuthMode 身份解析方式.
type AuthMode string

const (
	AuthModeJWT    AuthMode = "jwt"    // Authorization: Bearer <token>，HS256 校验
	AuthModeHeader AuthMode = "header" // 信任 oauth2-proxy 等网关注入的请求头
	AuthModeBoth   AuthMode = "both"   // 先 JWT，后请求头

	DefaultAuthRoleHeader = "X-Role"
)

// AuthConfig 控制统一身份认证（JWT 与可信代理请求头）.
type AuthConfig struct {
	Enabled       bool     `mapstructure:"enabled"`                                  // 必须为 true，关闭后受保护路由一律 401
	Mode          AuthMode `mapstructure:"mode"        rule:"oneof=jwt header both"` // 身份解析方式
	JWTSecret     string   `mapstructure:"jwt_secret"`                               // HS256 密钥
	Issuer        string   `mapstructure:"issuer"`                                   // 非空时校验 iss
	RoleHeader    string   `mapstructure:"role_header" rule:"required"`              // header 模式下的角色请求头
	SkipPaths     []string `mapstructure:"skip_paths"`                               // 跳过身份解析的路径前缀（如 /metrics、/api/v1/health）
	DevAllowQuery bool     `mapstructure:"dev_allow_query"`                          // 开发模式允许用 ?user=&role= 便于本地调试
}

// JWTEnabled 是否启用 JWT 解析.
func (c *AuthConfig) JWTEnabled() bool {
	return c.Mode == AuthModeJWT || c.Mode == AuthModeBoth
}

// HeaderEnabled 是否信任代理请求头.
func (c *AuthConfig) HeaderEnabled() bool {
	return c.Mode == AuthModeHeader || c.Mode == AuthModeBoth
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.mode", AuthModeJWT)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.role_header", DefaultAuthRoleHeader)
	v.SetDefault("auth.dev_allow_query", false)
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/api/v1/health",
		"/swagger",
	})
}
