package middleware

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// GzipMiddleware 压缩 JSON 响应. 下载路由与 /metrics 自行处理编码，需排除.
func GzipMiddleware(excludedPrefixes ...string) gin.HandlerFunc {
	return gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths(excludedPrefixes))
}
