package service

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dustin/go-humanize"

	"github.com/yeisme/filedock/pkg/configs"
	"github.com/yeisme/filedock/pkg/internal/errs"
	"github.com/yeisme/filedock/pkg/internal/model"
	"github.com/yeisme/filedock/pkg/internal/repository"
	"github.com/yeisme/filedock/pkg/internal/storage/local"
	nlog "github.com/yeisme/filedock/pkg/log"
	"github.com/yeisme/filedock/pkg/metrics"
	"github.com/yeisme/filedock/pkg/queue"
	"github.com/yeisme/filedock/pkg/tracing"
)

// SweepOptions 单次清理参数.
type SweepOptions struct {
	// Grace 比该时长更新的无记录文件视为写入中，不处理.
	Grace time.Duration
	// DryRun 只报告不删除.
	DryRun bool
}

// SweepItem 一条不一致.
type SweepItem struct {
	ID       string `json:"id,omitempty"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size,omitempty"`
	Removed  bool   `json:"removed"`
	Error    string `json:"error,omitempty"`
}

// SweepReport 清理结果.
type SweepReport struct {
	DryRun          bool        `json:"dry_run"`
	Scanned         int         `json:"scanned"`
	Records         int         `json:"records"`
	OrphanFiles     []SweepItem `json:"orphan_files"`
	DanglingRecords []SweepItem `json:"dangling_records"`
	ReclaimedBytes  int64       `json:"reclaimed_bytes"`
	StartedAt       time.Time   `json:"started_at"`
	FinishedAt      time.Time   `json:"finished_at"`
}

// Summary 人类可读的摘要.
func (r *SweepReport) Summary() string {
	return humanize.Comma(int64(len(r.OrphanFiles))) + " orphan files (" +
		humanize.IBytes(uint64(r.ReclaimedBytes)) + " reclaimed), " +
		humanize.Comma(int64(len(r.DanglingRecords))) + " dangling records"
}

// Sweeper 对账上传目录与文件记录：删除没有记录的旧文件，报告文件缺失的记录.
// 文件缺失的记录只报告不删除，记录删除只通过 FileService.Remove 进行.
type Sweeper struct {
	store     *local.Store
	repo      repository.FileRepository
	publisher message.Publisher
	events    configs.EventsConfig
	now       func() time.Time
}

// NewSweeper 创建清理器，publisher 可为 nil.
func NewSweeper(store *local.Store, repo repository.FileRepository, publisher message.Publisher, events configs.EventsConfig) *Sweeper {
	return &Sweeper{
		store:     store,
		repo:      repo,
		publisher: publisher,
		events:    events,
		now:       time.Now,
	}
}

// Run 执行一次清理.
func (s *Sweeper) Run(ctx context.Context, opts SweepOptions) (*SweepReport, error) {
	ctx, span := tracing.StartSpan(ctx, "files.sweep")
	defer span.End()

	report := &SweepReport{
		DryRun:          opts.DryRun,
		OrphanFiles:     []SweepItem{},
		DanglingRecords: []SweepItem{},
		StartedAt:       s.now().UTC(),
	}

	known := make(map[string]struct{})

	err := s.repo.ForEach(ctx, func(rec *model.FileRecord) error {
		report.Records++
		known[rec.Filename] = struct{}{}

		exists, err := s.store.Exists(rec.Path)
		if err != nil {
			return errs.PhysicalIO("failed to stat file", err)
		}

		if !exists {
			item := SweepItem{ID: rec.ID, Filename: rec.Filename, Path: rec.Path, Size: rec.Size}
			report.DanglingRecords = append(report.DanglingRecords, item)
			s.emit(ctx, queue.OrphanRecord, item, opts.DryRun)
		}

		return nil
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	entries, err := s.store.List()
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	cutoff := s.now().Add(-opts.Grace)

	for _, e := range entries {
		report.Scanned++

		if _, ok := known[e.Name]; ok || e.ModTime.After(cutoff) {
			continue
		}

		item := SweepItem{Filename: e.Name, Path: e.Path, Size: e.Size}

		if !opts.DryRun {
			if _, err := s.store.Remove(e.Path); err != nil {
				item.Error = errs.PublicMessage(err)
				nlog.Logger().Error().Err(err).Str("path", e.Path).Msg("failed to remove orphan file")
			} else {
				item.Removed = true
				report.ReclaimedBytes += e.Size
			}
		}

		report.OrphanFiles = append(report.OrphanFiles, item)
		s.emit(ctx, queue.OrphanFile, item, opts.DryRun)
	}

	report.FinishedAt = s.now().UTC()

	nlog.Logger().Info().
		Bool("dry_run", opts.DryRun).
		Int("scanned", report.Scanned).
		Int("records", report.Records).
		Msg("sweep finished: " + report.Summary())

	return report, nil
}

func (s *Sweeper) emit(ctx context.Context, kind queue.OrphanKind, item SweepItem, dryRun bool) {
	removed := "false"
	if item.Removed {
		removed = "true"
	}

	metrics.SweepFindings.WithLabelValues(string(kind), removed).Inc()

	if s.publisher == nil || !s.events.Enabled || !s.events.File.Orphaned {
		return
	}

	err := queue.PublishFileOrphaned(s.publisher, queue.FileOrphanedPayload{
		Kind: kind,
		File: queue.FileRef{
			ID:       item.ID,
			Filename: item.Filename,
			Path:     item.Path,
			Size:     item.Size,
		},
		Removed:  item.Removed,
		DryRun:   dryRun,
		Error:    item.Error,
		Detected: s.now().UTC(),
	}, queue.WithProducer(producerName), queue.WithTraceID(tracing.TraceID(ctx)))
	if err != nil {
		nlog.Logger().Warn().Err(err).Msg("failed to publish orphan event")
	}
}
