package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yeisme/filedock/pkg/cache"
	"github.com/yeisme/filedock/pkg/internal/model"
	nlog "github.com/yeisme/filedock/pkg/log"
)

// CachedFileRepository 在 FindByID/FindByFilename 前加一层 KV 缓存，Delete 时失效.
// 记录不可修改，因此只需在删除时失效.
type CachedFileRepository struct {
	FileRepository
	cache *cache.Cache
	ttl   time.Duration
}

// NewCached 包装仓储. c 为 nil 时直接返回 next.
func NewCached(next FileRepository, c *cache.Cache, ttl time.Duration) FileRepository {
	if c == nil {
		return next
	}

	return &CachedFileRepository{FileRepository: next, cache: c, ttl: ttl}
}

func idKey(id string) string {
	return "file.id." + id
}

func nameKey(filename string) string {
	return "file.name." + filename
}

// FindByID 先查缓存.
func (r *CachedFileRepository) FindByID(ctx context.Context, id string) (*model.FileRecord, error) {
	return cache.GetOrSet(ctx, r.cache, idKey(id), func() (*model.FileRecord, error) {
		return r.FileRepository.FindByID(ctx, id)
	}, r.ttl)
}

// FindByFilename 先查缓存.
func (r *CachedFileRepository) FindByFilename(ctx context.Context, filename string) (*model.FileRecord, error) {
	return cache.GetOrSet(ctx, r.cache, nameKey(filename), func() (*model.FileRecord, error) {
		return r.FileRepository.FindByFilename(ctx, filename)
	}, r.ttl)
}

// Delete 删除记录并失效两个缓存键. 即使底层返回 NotFound 也会失效.
// 失效写入墓碑，删除前已开始的查询不会把记录写回缓存.
func (r *CachedFileRepository) Delete(ctx context.Context, rec *model.FileRecord) error {
	err := r.FileRepository.Delete(ctx, rec)

	if cerr := r.cache.Invalidate(ctx, r.ttl, idKey(rec.ID), nameKey(rec.Filename)); cerr != nil && !errors.Is(cerr, context.Canceled) {
		nlog.Logger().Warn().Err(cerr).Str("id", rec.ID).Msg("failed to invalidate file record cache")
	}

	return err
}
