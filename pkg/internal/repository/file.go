// Package repository 封装文件记录的持久化操作. 所有操作均为单行语义.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yeisme/filedock/pkg/internal/errs"
	"github.com/yeisme/filedock/pkg/internal/model"
	nlog "github.com/yeisme/filedock/pkg/log"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
	iterBatchSize   = 500
)

// FileRepository 文件记录仓储.
type FileRepository interface {
	Create(ctx context.Context, rec *model.FileRecord) error
	FindByID(ctx context.Context, id string) (*model.FileRecord, error)
	FindByFilename(ctx context.Context, filename string) (*model.FileRecord, error)
	// Delete 删除记录，记录已不存在时返回 NotFound.
	Delete(ctx context.Context, rec *model.FileRecord) error
	List(ctx context.Context, q ListQuery) ([]model.FileRecord, int64, error)
	// ForEach 按批遍历全部记录，fn 返回错误时停止.
	ForEach(ctx context.Context, fn func(rec *model.FileRecord) error) error
}

// ListQuery 列表查询条件.
type ListQuery struct {
	Page       int
	PageSize   int
	UploadedBy string
	FileType   string
}

// Normalize 修正分页参数.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}

	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}

	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
}

// GormFileRepository 基于 GORM 的实现.
type GormFileRepository struct {
	db *gorm.DB
}

// NewFileRepository 创建仓储.
func NewFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

// Create 插入记录. 失败时返回 Persistence 错误，原因只记录在日志中.
func (r *GormFileRepository) Create(ctx context.Context, rec *model.FileRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		nlog.Logger().Error().Err(err).
			Str("filename", rec.Filename).
			Msg("failed to create file record")

		return errs.Persistence("failed to create file record", err)
	}

	return nil
}

// FindByID 按 ID 查询.
func (r *GormFileRepository) FindByID(ctx context.Context, id string) (*model.FileRecord, error) {
	return r.findOne(ctx, "id = ?", id, "file "+id+" not found")
}

// FindByFilename 按存储文件名查询.
func (r *GormFileRepository) FindByFilename(ctx context.Context, filename string) (*model.FileRecord, error) {
	return r.findOne(ctx, "filename = ?", filename, "file "+filename+" not found")
}

func (r *GormFileRepository) findOne(ctx context.Context, cond, arg, missing string) (*model.FileRecord, error) {
	var rec model.FileRecord

	err := r.db.WithContext(ctx).Where(cond, arg).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("%s", missing)
	}

	if err != nil {
		nlog.Logger().Error().Err(err).Str("query", cond).Msg("failed to query file record")

		return nil, errs.Persistence("failed to query file record", err)
	}

	return &rec, nil
}

// Delete 删除记录.
func (r *GormFileRepository) Delete(ctx context.Context, rec *model.FileRecord) error {
	res := r.db.WithContext(ctx).Where("id = ?", rec.ID).Delete(&model.FileRecord{})
	if res.Error != nil {
		nlog.Logger().Error().Err(res.Error).Str("id", rec.ID).Msg("failed to delete file record")

		return errs.Persistence("failed to delete file record", res.Error)
	}

	if res.RowsAffected == 0 {
		return errs.NotFound("file %s not found", rec.ID)
	}

	return nil
}

// List 分页查询，按创建时间倒序.
func (r *GormFileRepository) List(ctx context.Context, q ListQuery) ([]model.FileRecord, int64, error) {
	q.Normalize()

	tx := r.db.WithContext(ctx).Model(&model.FileRecord{})
	if q.UploadedBy != "" {
		tx = tx.Where("uploaded_by = ?", q.UploadedBy)
	}

	if q.FileType != "" {
		tx = tx.Where("file_type = ?", q.FileType)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, errs.Persistence("failed to count file records", err)
	}

	records := make([]model.FileRecord, 0, q.PageSize)

	err := tx.Order("created_at DESC").Order("id DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, errs.Persistence("failed to list file records", err)
	}

	return records, total, nil
}

// ForEach 按批遍历.
func (r *GormFileRepository) ForEach(ctx context.Context, fn func(rec *model.FileRecord) error) error {
	var (
		batch   []model.FileRecord
		stopErr error
	)

	res := r.db.WithContext(ctx).Order("id").FindInBatches(&batch, iterBatchSize, func(_ *gorm.DB, _ int) error {
		for i := range batch {
			if err := fn(&batch[i]); err != nil {
				stopErr = err
				return err
			}
		}

		return nil
	})

	if stopErr != nil {
		return stopErr
	}

	if res.Error != nil {
		return errs.Persistence("failed to iterate file records", res.Error)
	}

	return nil
}
