// Package api 组装 HTTP 接口：由存储管理器构建处理器，并把路由注册到 gin 引擎.
package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filedock/pkg/configs"
	ctxPkg "github.com/yeisme/filedock/pkg/context"
	"github.com/yeisme/filedock/pkg/internal/handle"
	"github.com/yeisme/filedock/pkg/internal/jobs"
	"github.com/yeisme/filedock/pkg/internal/router"
	"github.com/yeisme/filedock/pkg/internal/service"
	"github.com/yeisme/filedock/pkg/internal/storage"
)

// NewHandlers 用存储管理器构建处理器.
func NewHandlers(ctx context.Context, mgr *storage.Manager, cfg *configs.AppConfig) *handle.Handlers {
	files := service.NewFileServiceFromContext(ctxPkg.WithStorageManager(ctx, mgr))

	return handle.NewHandlers(handle.Deps{
		Files:      files,
		Sweeper:    jobs.NewSweeper(mgr, cfg),
		SweepGrace: cfg.Jobs.SweepGrace,
	})
}

// RegisterGroup 注册文件服务的全部路由到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine, h *handle.Handlers, cfg *configs.AppConfig, apiMiddlewares ...gin.HandlerFunc) *gin.Engine {
	router.Register(e, h, cfg.Upload.RouteSegment, apiMiddlewares...)
	router.RegisterSwaggerRoute(e, cfg.Server)

	return e
}
