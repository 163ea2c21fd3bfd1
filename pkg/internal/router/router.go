// Package router 将处理器绑定到 gin 引擎. 每条路由在注册处声明访问策略.
//
//	POST   /api/v1/files                  RequireAllUsers       上传
//	GET    /api/v1/files                  RequireAdmin          列表
//	GET    /api/v1/files/:id              RequireAllUsers       元数据
//	GET    /api/v1/files/name/:filename   RequireAllUsers       按文件名查询元数据
//	DELETE /api/v1/files/:id              RequireAdminOrTrainer 删除
//	GET    /api/v1/auth/me                Authenticated         当前身份
//	POST   /api/v1/admin/sweep            RequireSuperAdmin     孤儿文件清理
//	GET    /api/v1/admin/scheduler/jobs   RequireAdmin          定时任务
//	GET    /api/v1/health/{db,kv,mq,s3}   Public                组件健康
//	GET    /{route_segment}/:filename     Public                文件下载
//	GET    /swagger/*any                  Public                接口文档，仅 server.debug
package router

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filedock/pkg/internal/handle"
	"github.com/yeisme/filedock/pkg/middleware"
)

// Register 注册全部业务路由. apiMiddlewares 只作用于 /api/v1 路由组（如限流）.
func Register(e *gin.Engine, h *handle.Handlers, routeSegment string, apiMiddlewares ...gin.HandlerFunc) {
	api := e.Group("/api/v1", apiMiddlewares...)

	RegisterFilesRoutes(api, h)
	RegisterAuthRoutes(api)
	RegisterAdminRoutes(api, h)
	RegisterHealthCheckRoute(api)
	RegisterPublicFileRoute(e, h, routeSegment)
}

// RegisterFilesRoutes 注册文件操作相关路由.
func RegisterFilesRoutes(g *gin.RouterGroup, h *handle.Handlers) {
	files := g.Group("/files")
	{
		files.POST("", middleware.Guard(middleware.RequireAllUsers(), h.Upload))
		files.GET("", middleware.Guard(middleware.RequireAdmin(), h.List))
		files.GET("/name/:filename", middleware.Guard(middleware.RequireAllUsers(), h.GetByFilename))
		files.GET("/:id", middleware.Guard(middleware.RequireAllUsers(), h.Get))
		files.DELETE("/:id", middleware.Guard(middleware.RequireAdminOrTrainer(), h.Delete))
	}
}

// RegisterAuthRoutes 注册身份相关路由.
func RegisterAuthRoutes(g *gin.RouterGroup) {
	g.GET("/auth/me", middleware.Guard(middleware.Authenticated(), handle.Me))
}

// RegisterAdminRoutes 注册管理路由.
func RegisterAdminRoutes(g *gin.RouterGroup, h *handle.Handlers) {
	admin := g.Group("/admin")
	{
		admin.POST("/sweep", middleware.Guard(middleware.RequireSuperAdmin(), h.Sweep))
		admin.GET("/scheduler/jobs", middleware.Guard(middleware.RequireAdmin(), handle.SchedulerJobs))
	}
}

// RegisterHealthCheckRoute 注册健康检查路由.
func RegisterHealthCheckRoute(g *gin.RouterGroup) {
	healthRoutes := g.Group("/health")
	{
		healthRoutes.GET("/db", handle.HealthDB)
		healthRoutes.GET("/kv", handle.HealthKV)
		healthRoutes.GET("/mq", handle.HealthMQ)
		healthRoutes.GET("/s3", handle.HealthS3)
	}
}

// RegisterPublicFileRoute 注册公开下载路由 /{routeSegment}/:filename.
func RegisterPublicFileRoute(e *gin.Engine, h *handle.Handlers, routeSegment string) {
	path := "/" + strings.Trim(routeSegment, "/") + "/:filename"
	serve := middleware.Guard(middleware.Public(), h.Serve)

	e.GET(path, serve)
	e.HEAD(path, serve)
}
