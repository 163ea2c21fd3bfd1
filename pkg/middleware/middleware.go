// Package middleware 提供 HTTP 中间件：身份解析、角色策略、限流、熔断、日志、指标与追踪.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filedock/pkg/internal/errs"
	nlog "github.com/yeisme/filedock/pkg/log"
)

// AbortWithError 按错误类别写出 JSON 错误并终止请求. 服务端错误的原因只写日志.
func AbortWithError(c *gin.Context, err error) {
	status := errs.HTTPStatus(err)
	if status >= 500 {
		nlog.Logger().Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": errs.PublicMessage(err)})
}
