package handler

import (
	"LeaveAMark/internal/api/dto"
	"LeaveAMark/internal/pkg/response"
	"context"

	"github.com/gin-gonic/gin"
)

// JobRunner 定时任务的查询与手动触发
type JobRunner interface {
	List() []*dto.JobDTO
	RunNow(ctx context.Context, name string) (*dto.JobRunDTO, error)
}

type JobHandler struct {
	runner JobRunner
}

func NewJobHandler(runner JobRunner) *JobHandler {
	return &JobHandler{
		runner: runner,
	}
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	response.Success(c, h.runner.List())
}

// RunJob 同步执行任务并返回统计
func (h *JobHandler) RunJob(c *gin.Context) {
	res, err := h.runner.RunNow(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
