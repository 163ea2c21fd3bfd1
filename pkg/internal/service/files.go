// Package service 负责文件上传管线的业务逻辑（校验、写盘、入库、删除与事件），不处理 HTTP 细节.
package service

import (
	"context"
	iofs "io/fs"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yeisme/filedock/pkg/cache"
	"github.com/yeisme/filedock/pkg/configs"
	ctxPkg "github.com/yeisme/filedock/pkg/context"
	"github.com/yeisme/filedock/pkg/internal/errs"
	"github.com/yeisme/filedock/pkg/internal/model"
	"github.com/yeisme/filedock/pkg/internal/repository"
	"github.com/yeisme/filedock/pkg/internal/storage/local"
	"github.com/yeisme/filedock/pkg/internal/upload"
	nlog "github.com/yeisme/filedock/pkg/log"
	"github.com/yeisme/filedock/pkg/metrics"
	"github.com/yeisme/filedock/pkg/queue"
	"github.com/yeisme/filedock/pkg/tracing"
)

// producerName 事件头中的生产者名.
const producerName = "filedock"

// UploadOptions 单次上传的参数.
type UploadOptions struct {
	// Category 上传分类，空值使用默认分类 image.
	Category upload.Category
	// Prefix 文件名前缀，空值使用配置中的默认前缀.
	Prefix string
}

// DeletionOutcome 删除结果. 记录删除是权威结果，物理删除失败不影响成功.
type DeletionOutcome struct {
	File                    *model.FileRecord `json:"file"`
	PhysicalDeleteSucceeded bool              `json:"physical_delete_succeeded"`
	FileMissing             bool              `json:"file_missing"`
	PhysicalError           string            `json:"physical_error,omitempty"`
}

// Deps FileService 依赖.
type Deps struct {
	Store     *local.Store
	Repo      repository.FileRepository
	Validator *upload.Validator
	// Publisher 为 nil 时不发布事件.
	Publisher message.Publisher
	Events    configs.EventsConfig
	// DefaultPrefix 请求未指定前缀时使用.
	DefaultPrefix string
}

// FileService 文件管线.
type FileService struct {
	store         *local.Store
	repo          repository.FileRepository
	validator     *upload.Validator
	publisher     message.Publisher
	events        configs.EventsConfig
	defaultPrefix string
}

// NewFileService 用显式依赖创建服务. Validator 为 nil 时使用默认策略与大小限制.
func NewFileService(d Deps) *FileService {
	v := d.Validator
	if v == nil {
		v = upload.NewValidator(upload.DefaultPolicy(), upload.DefaultMaxSize)
	}

	return &FileService{
		store:         d.Store,
		repo:          d.Repo,
		validator:     v,
		publisher:     d.Publisher,
		events:        d.Events,
		defaultPrefix: d.DefaultPrefix,
	}
}

// NewFileServiceFromContext 从 context 中的存储管理器组装服务.
func NewFileServiceFromContext(ctx context.Context) *FileService {
	mgr := ctxPkg.GetManager(ctx)
	if mgr == nil || mgr.Local == nil || mgr.DB == nil {
		nlog.Logger().Fatal().Msg("storage clients not initialized")
	}

	cfg := configs.GetConfig()

	var repo repository.FileRepository = repository.NewFileRepository(mgr.DB.DB)
	if mgr.KV != nil {
		repo = repository.NewCached(repo, cache.NewCache(mgr.KV), cfg.KV.TTL)
	}

	var pub message.Publisher
	if mgr.MQ != nil {
		pub = mgr.MQ.Publisher()
	}

	return NewFileService(Deps{
		Store:         mgr.Local,
		Repo:          repo,
		Publisher:     pub,
		Events:        cfg.Events,
		DefaultPrefix: cfg.Upload.DefaultPrefix,
	})
}

// Validator 返回上传校验器.
func (s *FileService) Validator() *upload.Validator {
	return s.validator
}

// Upload 校验 → 写盘 → 入库. 校验失败时不写入任何字节；入库失败时删除刚写入的文件.
func (s *FileService) Upload(ctx context.Context, who string, t *upload.Transient, opts UploadOptions) (*model.FileRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "files.upload")
	defer span.End()

	category := opts.Category
	if category == "" {
		category = upload.DefaultCategory
	}

	span.SetAttributes(attribute.String("file.category", string(category)))

	rec, err := s.upload(ctx, who, t, category, opts.Prefix)

	switch {
	case err == nil:
		metrics.FileUploads.WithLabelValues(string(category), metrics.ResultOK).Inc()
		metrics.UploadedBytes.Add(float64(rec.Size))
	case errs.Is(err, errs.KindValidation):
		metrics.FileUploads.WithLabelValues(string(category), metrics.ResultRejected).Inc()
	default:
		metrics.FileUploads.WithLabelValues(string(category), metrics.ResultError).Inc()
		tracing.RecordError(span, err)
	}

	return rec, err
}

func (s *FileService) upload(ctx context.Context, who string, t *upload.Transient, category upload.Category, prefix string) (*model.FileRecord, error) {
	if t == nil || !t.HasSource() {
		return nil, errs.Validation("no file uploaded")
	}

	if err := t.DetectMIME(s.store.Fs()); err != nil {
		return nil, errs.PhysicalIO("failed to read uploaded file", err)
	}

	if err := s.validator.Check(t, category); err != nil {
		return nil, err
	}

	if prefix == "" {
		prefix = s.defaultPrefix
	}

	stored, err := s.store.Store(ctx, t, prefix)
	if err != nil {
		return nil, err
	}

	rec := &model.FileRecord{
		Filename:         stored.Filename,
		OriginalFilename: stored.OriginalFilename,
		Path:             stored.Path,
		URL:              stored.URL,
		MimeType:         stored.MimeType,
		FileType:         stored.FileType,
		Size:             stored.Size,
		Checksum:         stored.Checksum,
		UploadedBy:       who,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		if _, rmErr := s.store.Remove(stored.Path); rmErr != nil {
			ctxPkg.Logger(ctx).Error().Err(rmErr).Str("path", stored.Path).Msg("failed to remove file after record insert failure")
		}

		return nil, err
	}

	ctxPkg.Logger(ctx).Info().
		Str("id", rec.ID).
		Str("filename", rec.Filename).
		Str("mime", rec.MimeType).
		Int64("size", rec.Size).
		Str("uploaded_by", who).
		Msg("file uploaded")

	if s.events.Enabled && s.events.File.Stored {
		s.publish(ctx, func(opts ...queue.Option) error {
			return queue.PublishFileStored(s.publisher, queue.FileStoredPayload{
				File:             fileRef(rec),
				OriginalFilename: rec.OriginalFilename,
				Category:         string(category),
				UploadedBy:       who,
			}, opts...)
		})
	}

	return rec, nil
}

// Get 按 ID 查询记录.
func (s *FileService) Get(ctx context.Context, id string) (*model.FileRecord, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByFilename 按存储文件名查询记录.
func (s *FileService) GetByFilename(ctx context.Context, filename string) (*model.FileRecord, error) {
	return s.repo.FindByFilename(ctx, filename)
}

// List 分页列出记录.
func (s *FileService) List(ctx context.Context, q repository.ListQuery) ([]model.FileRecord, int64, error) {
	return s.repo.List(ctx, q)
}

// Open 打开记录对应的文件，用于下载. 记录不存在或文件缺失均返回 NotFound.
// 调用方负责关闭返回的文件.
func (s *FileService) Open(ctx context.Context, filename string) (*model.FileRecord, afero.File, iofs.FileInfo, error) {
	rec, err := s.repo.FindByFilename(ctx, filename)
	if err != nil {
		return nil, nil, nil, err
	}

	f, info, err := s.store.Open(rec.Filename)
	if err != nil {
		return nil, nil, nil, err
	}

	return rec, f, info, nil
}

// Remove 查询 → 尝试删除物理文件 → 删除记录.
// 物理删除失败只记录在结果中；记录删除失败返回错误. 并发删除时后到者得到 NotFound.
func (s *FileService) Remove(ctx context.Context, who, id string) (*DeletionOutcome, error) {
	ctx, span := tracing.StartSpan(ctx, "files.remove")
	defer span.End()

	span.SetAttributes(attribute.String("file.id", id))

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &DeletionOutcome{File: rec}

	res, err := s.store.Remove(rec.Path)
	switch {
	case err != nil:
		out.PhysicalError = errs.PublicMessage(err)
		ctxPkg.Logger(ctx).Error().Err(err).Str("id", rec.ID).Str("path", rec.Path).Msg("failed to remove physical file")
	case res.Missing:
		out.PhysicalDeleteSucceeded = true
		out.FileMissing = true
		ctxPkg.Logger(ctx).Warn().Str("id", rec.ID).Str("path", rec.Path).Msg("physical file already missing")
	default:
		out.PhysicalDeleteSucceeded = true
	}

	if err := s.repo.Delete(ctx, rec); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	metrics.FileDeletes.WithLabelValues(physicalLabel(out)).Inc()

	ctxPkg.Logger(ctx).Info().
		Str("id", rec.ID).
		Str("filename", rec.Filename).
		Bool("physical_deleted", out.PhysicalDeleteSucceeded).
		Bool("file_missing", out.FileMissing).
		Str("deleted_by", who).
		Msg("file removed")

	if s.events.Enabled && s.events.File.Deleted {
		s.publish(ctx, func(opts ...queue.Option) error {
			return queue.PublishFileDeleted(s.publisher, queue.FileDeletedPayload{
				File:                    fileRef(rec),
				PhysicalDeleteSucceeded: out.PhysicalDeleteSucceeded,
				FileMissing:             out.FileMissing,
				PhysicalError:           out.PhysicalError,
				DeletedBy:               who,
			}, opts...)
		})
	}

	return out, nil
}

// publish 发布事件，失败只记录日志.
func (s *FileService) publish(ctx context.Context, fn func(opts ...queue.Option) error) {
	if s.publisher == nil {
		return
	}

	err := fn(queue.WithProducer(producerName), queue.WithTraceID(tracing.TraceID(ctx)))
	if err != nil {
		ctxPkg.Logger(ctx).Warn().Err(err).Msg("failed to publish file event")
	}
}

func physicalLabel(out *DeletionOutcome) string {
	switch {
	case out.FileMissing:
		return "missing"
	case out.PhysicalDeleteSucceeded:
		return "ok"
	default:
		return "failed"
	}
}

func fileRef(rec *model.FileRecord) queue.FileRef {
	return queue.FileRef{
		ID:       rec.ID,
		Filename: rec.Filename,
		Path:     rec.Path,
		URL:      rec.URL,
		MimeType: rec.MimeType,
		Size:     rec.Size,
		Checksum: rec.Checksum,
	}
}
