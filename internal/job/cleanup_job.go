package job

import (
	"LeaveAMark/internal/pkg/consts"
	"LeaveAMark/internal/pkg/logger"
	"LeaveAMark/internal/service"
	"context"
	log "log/slog"
)

const CleanupJobName = "cleanup"

// CleanupJob 每小时清理过期 Mark、快照与浏览记录
type CleanupJob struct {
	guard
	cleanupSvc service.CleanupService
}

func NewCleanupJob(cleanupSvc service.CleanupService) *CleanupJob {
	return &CleanupJob{
		guard:      guard{key: consts.CleanupJobLock},
		cleanupSvc: cleanupSvc,
	}
}

func (s *CleanupJob) Name() string {
	return CleanupJobName
}

func (s *CleanupJob) Run() {
	ctx := logger.WithTraceID(context.Background(), "job-cleanup-")
	_, _ = s.Execute(ctx)
}

func (s *CleanupJob) Execute(ctx context.Context) (any, error) {
	var result *service.CleanupResult
	err := s.do(ctx, func(ctx context.Context) (err error) {
		result, err = s.cleanupSvc.Sweep(ctx)
		return err
	})
	if result == nil {
		log.ErrorContext(ctx, "cleanup sweep error", "err", err)
		return nil, err
	}

	// 部分步骤失败时仍返回已完成的统计
	if err != nil {
		log.ErrorContext(ctx, "cleanup sweep partially failed", "err", err)
	}
	log.InfoContext(ctx, "cleanup sweep finished",
		"marks_deactivated", result.MarksDeactivated,
		"snapshots_deleted", result.SnapshotsDeleted,
		"views_cleaned", result.ViewsCleaned,
	)
	return result, err
}
