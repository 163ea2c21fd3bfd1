package context_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	ctxPkg "github.com/yeisme/filedock/pkg/context"
	"github.com/yeisme/filedock/pkg/internal/storage"
	"github.com/yeisme/filedock/pkg/scheduler"
)

func TestGetters_WithoutManager(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, ctxPkg.GetManager(ctx))
	assert.Nil(t, ctxPkg.GetDBClient(ctx))
	assert.Nil(t, ctxPkg.GetS3Client(ctx))
	assert.Nil(t, ctxPkg.GetMQClient(ctx))
	assert.Nil(t, ctxPkg.GetScheduler(ctx))
}

func TestWithStorageManager(t *testing.T) {
	mgr := &storage.Manager{}
	ctx := ctxPkg.WithStorageManager(context.Background(), mgr)

	assert.Same(t, mgr, ctxPkg.GetManager(ctx))
	assert.Nil(t, ctxPkg.GetKVClient(ctx))
}

func TestWithScheduler(t *testing.T) {
	sched, err := scheduler.NewScheduler()
	require.NoError(t, err)
	sched.Start()

	t.Cleanup(func() { _ = sched.Stop() })

	ctx := ctxPkg.WithScheduler(context.Background(), sched)
	assert.Same(t, sched, ctxPkg.GetScheduler(ctx))
}

func TestWithTraceContext(t *testing.T) {
	var buf bytes.Buffer

	logger := zerolog.New(&buf)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1, 2, 3},
		SpanID:  trace.SpanID{4, 5, 6},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l := ctxPkg.WithTraceContext(ctx, logger)
	l.Info().Msg("hello")

	assert.Contains(t, buf.String(), sc.TraceID().String())

	buf.Reset()

	plain := ctxPkg.WithTraceContext(context.Background(), logger)
	plain.Info().Msg("hello")
	assert.NotContains(t, buf.String(), "trace_id")
}
