// Package handle 提供 HTTP 请求处理器. 处理器只负责参数绑定与响应，业务逻辑在 service 包中.
package handle

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filedock/pkg/internal/errs"
	"github.com/yeisme/filedock/pkg/internal/service"
	"github.com/yeisme/filedock/pkg/rule"
)

// Deps Handlers 依赖.
type Deps struct {
	Files   *service.FileService
	Sweeper *service.Sweeper
	// SweepGrace 手动清理时使用的宽限期，与定时任务一致.
	SweepGrace time.Duration
}

// Handlers 文件与管理接口处理器. 方法签名为 middleware.GuardedHandler，由路由层绑定访问策略.
type Handlers struct {
	files      *service.FileService
	sweeper    *service.Sweeper
	sweepGrace time.Duration
}

// NewHandlers 创建处理器.
func NewHandlers(d Deps) *Handlers {
	return &Handlers{
		files:      d.Files,
		sweeper:    d.Sweeper,
		sweepGrace: d.SweepGrace,
	}
}

// bindQuery 绑定查询参数并按 rule 标签校验，失败时返回 Validation 错误.
func bindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return errs.Validation("invalid query: %v", err)
	}

	if err := rule.ValidateStruct(dst); err != nil {
		return errs.Validation("invalid query: %s", rule.Message(err))
	}

	return nil
}
