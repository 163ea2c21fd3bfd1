// Package context 在请求链路中传递存储管理器与调度器，并提供带追踪字段的 logger.
//
//	ctx = context.WithStorageManager(ctx, mgr)
//	ctx = context.WithScheduler(ctx, sched)
//
//	if db := context.GetDBClient(ctx); db != nil { ... }
//	context.Logger(ctx).Info().Msg("stored")
//
// 所有 getter 在未注入时返回 nil，调用方需自行判断可选组件是否启用.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/filedock/pkg/internal/storage"
	dbc "github.com/yeisme/filedock/pkg/internal/storage/db"
	kvc "github.com/yeisme/filedock/pkg/internal/storage/kv"
	mqc "github.com/yeisme/filedock/pkg/internal/storage/mq"
	s3c "github.com/yeisme/filedock/pkg/internal/storage/s3"
	nlog "github.com/yeisme/filedock/pkg/log"
	"github.com/yeisme/filedock/pkg/scheduler"
)

type (
	managerKey   struct{}
	schedulerKey struct{}
)

// WithStorageManager 注入存储管理器.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, mgr)
}

// GetManager 取出存储管理器.
func GetManager(ctx context.Context) *storage.Manager {
	mgr, _ := ctx.Value(managerKey{}).(*storage.Manager)
	return mgr
}

// WithScheduler 注入定时任务调度器.
func WithScheduler(ctx context.Context, sched *scheduler.Scheduler) context.Context {
	return context.WithValue(ctx, schedulerKey{}, sched)
}

// GetScheduler 取出调度器.
func GetScheduler(ctx context.Context) *scheduler.Scheduler {
	sched, _ := ctx.Value(schedulerKey{}).(*scheduler.Scheduler)
	return sched
}

// fromManager 在管理器存在时取出其中的客户端.
func fromManager[T any](ctx context.Context, get func(*storage.Manager) *T) *T {
	if mgr := GetManager(ctx); mgr != nil {
		return get(mgr)
	}

	return nil
}

func GetDBClient(ctx context.Context) *dbc.Client {
	return fromManager(ctx, (*storage.Manager).GetDBClient)
}

func GetKVClient(ctx context.Context) *kvc.Client {
	return fromManager(ctx, (*storage.Manager).GetKVClient)
}

func GetMQClient(ctx context.Context) *mqc.Client {
	return fromManager(ctx, (*storage.Manager).GetMQClient)
}

func GetS3Client(ctx context.Context) *s3c.Client {
	return fromManager(ctx, (*storage.Manager).GetS3Client)
}

// WithTraceContext 为 logger 附加当前 span 的 trace_id 与 span_id.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return logger
	}

	return logger.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
}

// Logger 返回带追踪字段的全局 logger.
func Logger(ctx context.Context) *zerolog.Logger {
	l := WithTraceContext(ctx, *nlog.Logger())
	return &l
}
