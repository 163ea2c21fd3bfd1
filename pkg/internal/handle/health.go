package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/filedock/pkg/context"
	"github.com/yeisme/filedock/pkg/internal/types"
)

const timeout = 2 * time.Second

// 健康状态.
const (
	statusOK        = "ok"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func respondHealth(c *gin.Context, component string, p pinger, required bool) {
	if p == nil {
		if required {
			c.JSON(http.StatusServiceUnavailable, types.HealthResponse{
				Component: component,
				Status:    statusUnhealthy,
				Error:     component + " client not initialized",
			})

			return
		}

		c.JSON(http.StatusOK, types.HealthResponse{Component: component, Status: statusDisabled})

		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, types.HealthResponse{
			Component: component,
			Status:    statusUnhealthy,
			Error:     err.Error(),
		})

		return
	}

	c.JSON(http.StatusOK, types.HealthResponse{Component: component, Status: statusOK})
}

// HealthDB 数据库健康检查.
//
//	@Summary		db 健康检查
//	@Tags			健康检查
//	@Produce		json
//	@Success		200	{object}	types.HealthResponse	"ok 或 disabled"
//	@Failure		503	{object}	types.HealthResponse	"unhealthy"
//	@Router			/api/v1/health/db [get]
func HealthDB(c *gin.Context) {
	var p pinger
	if dbc := ctxPkg.GetDBClient(c.Request.Context()); dbc != nil {
		p = dbc
	}

	respondHealth(c, "db", p, true)
}

// HealthKV 元数据缓存健康检查，未启用时返回 disabled.
//
//	@Summary		kv 健康检查
//	@Tags			健康检查
//	@Produce		json
//	@Success		200	{object}	types.HealthResponse	"ok 或 disabled"
//	@Failure		503	{object}	types.HealthResponse	"unhealthy"
//	@Router			/api/v1/health/kv [get]
func HealthKV(c *gin.Context) {
	var p pinger
	if kvc := ctxPkg.GetKVClient(c.Request.Context()); kvc != nil {
		p = kvc
	}

	respondHealth(c, "kv", p, false)
}

// HealthMQ 消息队列健康检查，未启用时返回 disabled.
//
//	@Summary		mq 健康检查
//	@Tags			健康检查
//	@Produce		json
//	@Success		200	{object}	types.HealthResponse	"ok 或 disabled"
//	@Failure		503	{object}	types.HealthResponse	"unhealthy"
//	@Router			/api/v1/health/mq [get]
func HealthMQ(c *gin.Context) {
	var p pinger
	if mqc := ctxPkg.GetMQClient(c.Request.Context()); mqc != nil {
		p = mqc
	}

	respondHealth(c, "mq", p, false)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthS3 镜像存储健康检查，未启用镜像时返回 disabled.
//
//	@Summary		s3 健康检查
//	@Tags			健康检查
//	@Produce		json
//	@Success		200	{object}	types.HealthResponse	"ok 或 disabled"
//	@Failure		503	{object}	types.HealthResponse	"unhealthy"
//	@Router			/api/v1/health/s3 [get]
func HealthS3(c *gin.Context) {
	var p pinger
	if s3c := ctxPkg.GetS3Client(c.Request.Context()); s3c != nil {
		p = pingFunc(s3c.HealthCheck)
	}

	respondHealth(c, "s3", p, false)
}
