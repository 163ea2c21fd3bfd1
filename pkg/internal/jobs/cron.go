// Package jobs 负责注册业务定时任务（基于 scheduler）.
package jobs

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/filedock/pkg/configs"
	ctxPkg "github.com/yeisme/filedock/pkg/context"
	"github.com/yeisme/filedock/pkg/internal/repository"
	"github.com/yeisme/filedock/pkg/internal/service"
	"github.com/yeisme/filedock/pkg/internal/storage"
	"github.com/yeisme/filedock/pkg/log"
	"github.com/yeisme/filedock/pkg/scheduler"
)

// RegisterCronJobs 注册业务定时任务：按 jobs.sweep_cron 对账上传目录与文件记录.
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager, cfg *configs.AppConfig) error {
	if sched == nil {
		return errors.New("scheduler is nil")
	}

	if mgr == nil {
		return errors.New("storage manager is nil")
	}

	if !cfg.Jobs.Enabled {
		log.Logger().Info().Msg("定时任务已禁用")
		return nil
	}

	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)
	sweeper := NewSweeper(mgr, cfg)
	opts := service.SweepOptions{Grace: cfg.Jobs.SweepGrace, DryRun: cfg.Jobs.SweepDryRun}

	return sched.AddCron(baseCtx, JobOrphanSweep, cfg.Jobs.SweepCron, func(ctx context.Context) error {
		_, err := sweeper.Run(ctx, opts)
		return err
	})
}

// NewSweeper 用存储管理器组装清理器，供定时任务、CLI 与管理接口共用.
func NewSweeper(mgr *storage.Manager, cfg *configs.AppConfig) *service.Sweeper {
	var pub message.Publisher
	if mgr.MQ != nil {
		pub = mgr.MQ.Publisher()
	}

	return service.NewSweeper(mgr.Local, repository.NewFileRepository(mgr.DB.DB), pub, cfg.Events)
}
