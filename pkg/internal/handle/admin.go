package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/filedock/pkg/context"
	"github.com/yeisme/filedock/pkg/internal/service"
	"github.com/yeisme/filedock/pkg/internal/types"
	"github.com/yeisme/filedock/pkg/middleware"
	"github.com/yeisme/filedock/pkg/scheduler"
)

// Sweep 手动执行一次孤儿文件清理.
//
//	@Summary		孤儿文件清理
//	@Description	对比上传目录与文件记录，删除超过宽限期的孤儿文件. dry_run 时只报告
//	@Tags			管理
//	@Produce		json
//	@Param			dry_run	query		bool					false	"只报告不删除"
//	@Success		200		{object}	service.SweepReport	"清理报告"
//	@Failure		401		{object}	map[string]string	"未认证"
//	@Failure		403		{object}	map[string]string	"仅超级管理员"
//	@Failure		500		{object}	map[string]string	"服务器内部错误"
//	@Security		BearerAuth
//	@Router			/api/v1/admin/sweep [post]
func (h *Handlers) Sweep(c *gin.Context, who *middleware.Identity) {
	var q types.SweepQuery
	if err := bindQuery(c, &q); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	report, err := h.sweeper.Run(c.Request.Context(), service.SweepOptions{
		Grace:  h.sweepGrace,
		DryRun: q.DryRun,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	ctxPkg.Logger(c.Request.Context()).Info().
		Str("by", who.Name()).
		Bool("dry_run", q.DryRun).
		Msg("manual sweep: " + report.Summary())

	c.JSON(http.StatusOK, report)
}

// SchedulerJobs 返回所有调度器任务信息.
//
//	@Summary		定时任务列表
//	@Tags			管理
//	@Produce		json
//	@Success		200	{object}	types.SchedulerJobsResponse	"任务信息"
//	@Failure		401	{object}	map[string]string			"未认证"
//	@Failure		403	{object}	map[string]string			"角色不允许"
//	@Security		BearerAuth
//	@Router			/api/v1/admin/scheduler/jobs [get]
func SchedulerJobs(c *gin.Context, _ *middleware.Identity) {
	resp := types.SchedulerJobsResponse{Jobs: []scheduler.JobInfo{}}

	if sched := ctxPkg.GetScheduler(c.Request.Context()); sched != nil {
		resp.Jobs = sched.GetJobInfos()
	}

	c.JSON(http.StatusOK, resp)
}
