package jobs

// 任务名称常量.
const (
	JobOrphanSweep = "files.orphan_sweep"
)
