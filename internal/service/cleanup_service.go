package service

import (
	"LeaveAMark/internal/pkg/consts"
	"LeaveAMark/internal/repository"
	"context"
	stderrors "errors"
	log "log/slog"
	"time"

	"github.com/pkg/errors"
)

// CleanupResult 一次清理的统计
type CleanupResult struct {
	MarksDeactivated int64     `json:"marks_deactivated"`
	SnapshotsDeleted int64     `json:"snapshots_deleted"`
	ViewsCleaned     int64     `json:"views_cleaned"`
	Timestamp        time.Time `json:"timestamp"`
}

type CleanupService interface {
	// Sweep 失效超过 24 小时的 Mark，删除过期快照与 7 天前的浏览记录
	Sweep(ctx context.Context) (*CleanupResult, error)
}

type cleanupServiceImpl struct {
	markRepo     repository.MarkRepo
	snapshotRepo repository.SnapshotRepo
	viewRepo     repository.MarkViewRepo
	now          func() time.Time
}

func NewCleanupService(
	markRepo repository.MarkRepo,
	snapshotRepo repository.SnapshotRepo,
	viewRepo repository.MarkViewRepo,
) CleanupService {
	return &cleanupServiceImpl{
		markRepo:     markRepo,
		snapshotRepo: snapshotRepo,
		viewRepo:     viewRepo,
		now:          time.Now,
	}
}

// Sweep 三个步骤互不依赖，任一步失败都不影响后续步骤
func (s *cleanupServiceImpl) Sweep(ctx context.Context) (*CleanupResult, error) {
	now := s.now()
	result := &CleanupResult{Timestamp: now}
	var errs []error

	deactivated, err := s.markRepo.DeactivateCreatedBefore(ctx, now.Add(-consts.MarkTTL))
	if err != nil {
		errs = append(errs, errors.Wrap(err, "deactivate expired marks"))
	} else {
		result.MarksDeactivated = deactivated
	}

	deleted, err := s.snapshotRepo.DeleteExpired(ctx, now)
	if err != nil {
		errs = append(errs, errors.Wrap(err, "delete expired snapshots"))
	} else {
		result.SnapshotsDeleted = deleted
	}

	// 浏览记录只影响去重，清理失败不视为任务失败
	cleaned, err := s.viewRepo.DeleteViewedBefore(ctx, now.Add(-consts.MarkViewRetention))
	if err != nil {
		log.WarnContext(ctx, "clean mark views error", "err", err)
	} else {
		result.ViewsCleaned = cleaned
	}

	return result, stderrors.Join(errs...)
}
