// Package app 提供应用程序的初始化、运行与优雅退出.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/filedock/pkg/api"
	"github.com/yeisme/filedock/pkg/configs"
	"github.com/yeisme/filedock/pkg/internal/handle"
	"github.com/yeisme/filedock/pkg/internal/jobs"
	"github.com/yeisme/filedock/pkg/internal/service"
	"github.com/yeisme/filedock/pkg/internal/storage"
	"github.com/yeisme/filedock/pkg/log"
	"github.com/yeisme/filedock/pkg/metrics"
	"github.com/yeisme/filedock/pkg/middleware"
	"github.com/yeisme/filedock/pkg/scheduler"
	"github.com/yeisme/filedock/pkg/tracing"
)

const shutdownTimeout = 15 * time.Second

// App 文件服务进程.
type App struct {
	Engine    *gin.Engine
	Manager   *storage.Manager
	Scheduler *scheduler.Scheduler

	config    *configs.AppConfig
	consumers bool
}

// NewApp 按已加载的全局配置初始化追踪、指标、存储、定时任务与路由.
func NewApp(ctx context.Context) (*App, error) {
	config := configs.GetConfig()

	if err := tracing.InitTracer(config.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	sched, err := scheduler.NewScheduler()
	if err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("init scheduler: %w", err)
	}

	if err := jobs.RegisterCronJobs(sched, manager, config); err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("register jobs: %w", err)
	}

	a := &App{
		Manager:   manager,
		Scheduler: sched,
		config:    config,
	}

	if manager.S3 != nil && manager.MQ != nil {
		service.NewMirror(manager.S3, manager.Local, config.Mirror.Timeout).Register(manager.MQ)
		a.consumers = true
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	a.Engine = NewEngine(config, manager, sched, api.NewHandlers(ctx, manager, config))

	return a, nil
}

// NewEngine 创建 gin 引擎并挂载中间件与路由.
func NewEngine(config *configs.AppConfig, manager *storage.Manager, sched *scheduler.Scheduler, h *handle.Handlers) *gin.Engine {
	engine := gin.New()
	engine.MaxMultipartMemory = 8 << 20

	segment := "/" + strings.Trim(config.Upload.RouteSegment, "/")

	engine.Use(
		gin.Recovery(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(config.Server, config.Auth),
		middleware.TracingMiddleware(config.Metrics.Path),
	)

	if config.Metrics.Enabled {
		engine.Use(middleware.PrometheusMiddleware())
		engine.GET(config.Metrics.Path, metrics.Handler())
	}

	engine.Use(
		middleware.GzipMiddleware(segment, config.Metrics.Path),
		middleware.StorageMiddleware(manager),
		middleware.SchedulerMiddleware(sched),
		middleware.AuthMiddleware(config.Auth),
		middleware.CircuitBreakerMiddleware(config.CircuitBreaker),
	)

	api.RegisterGroup(engine, h, config, middleware.RateLimitMiddleware(config.RateLimit))

	return engine
}

// Run 启动 HTTP 服务、定时任务与事件消费者，ctx 取消后优雅退出.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.config.Server.Addr(),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	a.Scheduler.Start()

	g, gctx := errgroup.WithContext(ctx)

	if a.consumers {
		g.Go(func() error {
			return a.Manager.MQ.Run(gctx)
		})
	}

	g.Go(func() error {
		log.Logger().Info().Str("addr", srv.Addr).Msg("HTTP server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		log.Logger().Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	a.close()

	return err
}

func (a *App) close() {
	l := log.Logger()

	if err := a.Scheduler.Stop(); err != nil {
		l.Error().Err(err).Msg("failed to stop scheduler")
	}

	if err := a.Manager.Close(); err != nil {
		l.Error().Err(err).Msg("failed to close storage")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := tracing.ShutdownTracer(ctx); err != nil {
		l.Error().Err(err).Msg("failed to shutdown tracer")
	}
}
