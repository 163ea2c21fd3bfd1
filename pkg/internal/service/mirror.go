package service

import (
	"context"
	"io"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/filedock/pkg/internal/errs"
	"github.com/yeisme/filedock/pkg/internal/storage/local"
	nlog "github.com/yeisme/filedock/pkg/log"
	"github.com/yeisme/filedock/pkg/queue"
)

// ObjectMirror 镜像目标，由 s3.Client 实现.
type ObjectMirror interface {
	PutFile(ctx context.Context, filename string, r io.Reader, size int64, contentType string) error
	RemoveFile(ctx context.Context, filename string) error
}

// ConsumerRegistrar 可注册事件消费者的客户端，由 mq.Client 实现.
type ConsumerRegistrar interface {
	AddConsumer(name, topic string, handler message.NoPublishHandlerFunc)
}

// Mirror 订阅文件事件，把本地文件尽力同步到对象存储. 本地文件始终是权威副本.
type Mirror struct {
	target  ObjectMirror
	store   *local.Store
	timeout time.Duration
}

// NewMirror 创建镜像消费者，timeout <= 0 时不设单次超时.
func NewMirror(target ObjectMirror, store *local.Store, timeout time.Duration) *Mirror {
	return &Mirror{target: target, store: store, timeout: timeout}
}

// Register 注册 stored / deleted 主题的消费者.
func (m *Mirror) Register(r ConsumerRegistrar) {
	r.AddConsumer("mirror.file.stored", queue.TopicFileStored, m.HandleStored)
	r.AddConsumer("mirror.file.deleted", queue.TopicFileDeleted, m.HandleDeleted)
}

// HandleStored 上传镜像. 失败只记录日志并确认消息.
func (m *Mirror) HandleStored(msg *message.Message) error {
	env, err := queue.ParseFileStored(msg)
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("uuid", msg.UUID).Msg("mirror: drop malformed stored event")
		return nil
	}

	ref := env.Payload.File
	logger := nlog.Logger().With().Str("filename", ref.Filename).Logger()

	f, info, err := m.store.Open(ref.Filename)
	if err != nil {
		if errs.Is(err, errs.KindNotFound) {
			logger.Debug().Msg("mirror: file gone before mirroring")
			return nil
		}

		logger.Error().Err(err).Msg("mirror: open local file")

		return nil
	}
	defer f.Close()

	ctx, cancel := m.context(msg.Context())
	defer cancel()

	if err := m.target.PutFile(ctx, ref.Filename, f, info.Size(), ref.MimeType); err != nil {
		logger.Error().Err(err).Msg("mirror: upload failed")
		return nil
	}

	logger.Debug().Int64("size", info.Size()).Msg("mirror: uploaded")

	return nil
}

// HandleDeleted 删除镜像对象.
func (m *Mirror) HandleDeleted(msg *message.Message) error {
	env, err := queue.ParseFileDeleted(msg)
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("uuid", msg.UUID).Msg("mirror: drop malformed deleted event")
		return nil
	}

	ctx, cancel := m.context(msg.Context())
	defer cancel()

	if err := m.target.RemoveFile(ctx, env.Payload.File.Filename); err != nil {
		nlog.Logger().Error().Err(err).Str("filename", env.Payload.File.Filename).Msg("mirror: remove failed")
	}

	return nil
}

func (m *Mirror) context(parent context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(parent)
	}

	return context.WithTimeout(parent, m.timeout)
}
