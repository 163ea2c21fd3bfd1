package middleware

import (
	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/filedock/pkg/context"
	"github.com/yeisme/filedock/pkg/internal/storage"
	"github.com/yeisme/filedock/pkg/scheduler"
)

// StorageMiddleware 把存储管理器注入 request context，处理器通过 ctxPkg 的 getter 取用.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(ctxPkg.WithStorageManager(c.Request.Context(), manager))
		c.Next()
	}
}

// SchedulerMiddleware 注入调度器，sched 为 nil 时不做任何事.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sched != nil {
			c.Request = c.Request.WithContext(ctxPkg.WithScheduler(c.Request.Context(), sched))
		}

		c.Next()
	}
}
