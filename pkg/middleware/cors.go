package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filedock/pkg/configs"
)

// CORSMiddleware 跨域配置. 允许携带 Authorization 与代理身份请求头，暴露下载所需的缓存头.
func CORSMiddleware(cfg configs.ServerConfig, auth configs.AuthConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: len(cfg.CORSOrigins) == 0,
		AllowOrigins:    cfg.CORSOrigins,
		AllowMethods:    []string{"GET", "HEAD", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Content-Length", "Authorization",
			"If-None-Match", "Range", auth.RoleHeader,
		},
		ExposeHeaders: []string{"ETag", "Content-Length", "Content-Disposition", "Accept-Ranges"},
		MaxAge:        12 * time.Hour,
	})
}
