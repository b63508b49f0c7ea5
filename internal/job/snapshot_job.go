package job

import (
	"LeaveAMark/internal/pkg/consts"
	"LeaveAMark/internal/pkg/logger"
	"LeaveAMark/internal/service"
	"context"
	log "log/slog"
	"time"
)

const SnapshotJobName = "snapshot"

// SnapshotJob 每日生成位置快照
type SnapshotJob struct {
	guard
	snapshotSvc service.SnapshotService
}

func NewSnapshotJob(snapshotSvc service.SnapshotService) *SnapshotJob {
	return &SnapshotJob{
		guard:       guard{key: consts.SnapshotJobLock},
		snapshotSvc: snapshotSvc,
	}
}

func (s *SnapshotJob) Name() string {
	return SnapshotJobName
}

func (s *SnapshotJob) Run() {
	ctx := logger.WithTraceID(context.Background(), "job-snapshot-")
	_, _ = s.Execute(ctx)
}

// Execute 执行一次快照生成，定时触发与手动触发共用
func (s *SnapshotJob) Execute(ctx context.Context) (any, error) {
	var result *service.GenerateResult
	start := time.Now()
	err := s.do(ctx, func(ctx context.Context) (err error) {
		result, err = s.snapshotSvc.GenerateDailySnapshots(ctx)
		return err
	})
	if err != nil {
		log.ErrorContext(ctx, "generate daily snapshots error", "err", err)
		return nil, err
	}

	log.InfoContext(ctx, "generate daily snapshots success",
		"snapshots_created", result.SnapshotsCreated,
		"locations_processed", result.LocationsProcessed,
		"total_marks", result.TotalMarks,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"cost", time.Since(start),
	)
	return result, nil
}
