// Package scheduler 基于 gocron/v2 的定时任务调度，记录每个任务最近一次运行的结果.
//
//	s, _ := scheduler.NewScheduler()
//	_ = s.AddCron(ctx, "files.orphan_sweep", "0 3 * * *", sweep)
//	s.Start()
//	defer s.Stop()
//
// 同名任务只能注册一次；同一任务不会并发运行，上一次未结束时顺延.
package scheduler

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/yeisme/filedock/pkg/log"
)

// stopTimeout Stop 等待运行中任务的最长时间.
const stopTimeout = 30 * time.Second

// JobStatus 任务状态.
type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled" // 等待下次运行
	StatusRunning   JobStatus = "running"
	StatusError     JobStatus = "error" // 上次运行返回错误或 panic
)

// JobInfo 任务快照，NextRun 与 LastRun 在读取时从 gocron 获取.
type JobInfo struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	CronExpr     string        `json:"cron_expr"`
	NextRun      time.Time     `json:"next_run"`
	LastRun      time.Time     `json:"last_run"`
	LastSuccess  time.Time     `json:"last_success,omitempty"`
	LastDuration time.Duration `json:"last_duration"`
	Status       JobStatus     `json:"status"`
	Error        string        `json:"error,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Task 任务函数，返回的错误记录到 JobInfo.Error.
type Task func(ctx context.Context) error

type entry struct {
	job  gocron.Job
	info JobInfo
}

// Scheduler 对 gocron.Scheduler 的封装，按名称管理任务.
type Scheduler struct {
	cron    gocron.Scheduler
	mu      sync.RWMutex
	entries map[string]*entry
	logger  zerolog.Logger
}

// NewScheduler 创建调度器，时间按 UTC 解释.
func NewScheduler() (*Scheduler, error) {
	cron, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithStopTimeout(stopTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	return &Scheduler{
		cron:    cron,
		entries: make(map[string]*entry),
		logger:  log.Component("scheduler"),
	}, nil
}

// AddCron 以 5 段 cron 表达式注册任务.
func (s *Scheduler) AddCron(ctx context.Context, name, cronExpr string, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	job, err := s.cron.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(s.run, ctx, name, task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("add job %s: %w", name, err)
	}

	s.entries[name] = &entry{
		job: job,
		info: JobInfo{
			ID:        job.ID().String(),
			Name:      name,
			CronExpr:  cronExpr,
			Status:    StatusScheduled,
			CreatedAt: time.Now().UTC(),
		},
	}

	s.logger.Info().Str("job", name).Str("cron", cronExpr).Msg("job registered")

	return nil
}

// run 执行任务并记录结果，panic 视为失败.
func (s *Scheduler) run(ctx context.Context, name string, task Task) {
	start := time.Now()
	s.update(name, func(info *JobInfo) { info.Status = StatusRunning })

	var err error

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()

		err = task(ctx)
	}()

	elapsed := time.Since(start)

	s.update(name, func(info *JobInfo) {
		info.LastDuration = elapsed
		if err != nil {
			info.Status = StatusError
			info.Error = err.Error()

			return
		}

		info.Status = StatusScheduled
		info.Error = ""
		info.LastSuccess = time.Now().UTC()
	})

	if err != nil {
		s.logger.Error().Err(err).Str("job", name).Dur("elapsed", elapsed).Msg("job failed")
		return
	}

	s.logger.Debug().Str("job", name).Dur("elapsed", elapsed).Msg("job finished")
}

func (s *Scheduler) update(name string, fn func(info *JobInfo)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[name]; ok {
		fn(&e.info)
	}
}

// RunNow 立即额外运行一次，不改变原有调度.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("job %s not found", name)
	}

	return e.job.RunNow()
}

// RemoveJobByName 注销任务.
func (s *Scheduler) RemoveJobByName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[name]
	if !ok {
		return fmt.Errorf("job %s not found", name)
	}

	if err := s.cron.RemoveJob(e.job.ID()); err != nil {
		return fmt.Errorf("remove job %s: %w", name, err)
	}

	delete(s.entries, name)
	s.logger.Info().Str("job", name).Msg("job removed")

	return nil
}

// GetJobInfoByName 返回任务快照.
func (s *Scheduler) GetJobInfoByName(name string) (JobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[name]
	if !ok {
		return JobInfo{}, fmt.Errorf("job %s not found", name)
	}

	return snapshot(e), nil
}

// GetJobInfos 返回全部任务快照，按名称排序.
func (s *Scheduler) GetJobInfos() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobInfo, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, snapshot(e))
	}

	slices.SortFunc(out, func(a, b JobInfo) int { return strings.Compare(a.Name, b.Name) })

	return out
}

func snapshot(e *entry) JobInfo {
	info := e.info
	if next, err := e.job.NextRun(); err == nil {
		info.NextRun = next
	}

	if last, err := e.job.LastRun(); err == nil {
		info.LastRun = last
	}

	return info
}

func (s *Scheduler) Start() {
	s.logger.Info().Int("jobs", len(s.GetJobInfos())).Msg("scheduler started")
	s.cron.Start()
}

// Stop 停止调度并等待运行中的任务结束，最长 stopTimeout.
func (s *Scheduler) Stop() error {
	s.logger.Info().Msg("scheduler stopping")
	return s.cron.Shutdown()
}
