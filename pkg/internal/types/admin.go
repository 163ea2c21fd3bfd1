package types

import "github.com/yeisme/filedock/pkg/scheduler"

// SweepQuery 手动触发清理的参数.
type SweepQuery struct {
	DryRun bool `form:"dry_run" json:"dry_run"`
}

// SchedulerJobsResponse 定时任务列表.
type SchedulerJobsResponse struct {
	Jobs []scheduler.JobInfo `json:"jobs"`
}

// HealthResponse 单个组件的健康状态.
type HealthResponse struct {
	Component string `json:"component"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}
