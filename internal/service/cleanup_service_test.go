package service

import (
	"LeaveAMark/internal/model"
	"LeaveAMark/internal/repository/mocks"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cleanupFixture struct {
	svc          *cleanupServiceImpl
	markRepo     *mocks.MockMarkRepo
	snapshotRepo *mocks.MockSnapshotRepo
	viewRepo     *mocks.MockMarkViewRepo
}

func newCleanupFixture(now time.Time) *cleanupFixture {
	f := &cleanupFixture{
		markRepo:     mocks.NewMockMarkRepo(),
		snapshotRepo: mocks.NewMockSnapshotRepo(),
		viewRepo:     mocks.NewMockMarkViewRepo(),
	}
	f.svc = NewCleanupService(f.markRepo, f.snapshotRepo, f.viewRepo).(*cleanupServiceImpl)
	f.svc.now = func() time.Time { return now }
	return f
}

func (f *cleanupFixture) seed(now time.Time) {
	f.markRepo.SetData(
		markAt("fresh", model.MarkTypeText, 0, 0, 0, 0, time.Hour),
		markAt("expired-1", model.MarkTypeText, 0, 0, 0, 0, 25*time.Hour),
		markAt("expired-2", model.MarkTypeImage, 0, 0, 0, 0, 48*time.Hour),
	)
	f.snapshotRepo.SetData(
		&model.Snapshot{LocationClusterID: "0_0", SnapshotDate: time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), ExpiresAt: now.Add(-time.Hour)},
		&model.Snapshot{LocationClusterID: "0_0", SnapshotDate: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), ExpiresAt: now.Add(time.Hour)},
	)
	f.viewRepo.SetData(
		&model.MarkView{MarkID: "fresh", SessionID: "s1", ViewedAt: now.Add(-time.Hour)},
		&model.MarkView{MarkID: "expired-2", SessionID: "s1", ViewedAt: now.Add(-8 * 24 * time.Hour)},
	)
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	f := newCleanupFixture(buildNow)
	f.seed(buildNow)

	result, err := f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, &CleanupResult{
		MarksDeactivated: 2,
		SnapshotsDeleted: 1,
		ViewsCleaned:     1,
		Timestamp:        buildNow,
	}, result)

	assert.True(t, f.markRepo.Get("fresh").IsActive)
	assert.False(t, f.markRepo.Get("expired-1").IsActive)
	assert.Len(t, f.snapshotRepo.All(), 1)
	assert.Equal(t, 1, f.viewRepo.Count())

	// 再次执行不会重复失效
	result, err = f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.MarksDeactivated)
	assert.Zero(t, result.SnapshotsDeleted)
	assert.Zero(t, result.ViewsCleaned)
}

func TestSweep_StepsAreIndependent(t *testing.T) {
	ctx := context.Background()
	f := newCleanupFixture(buildNow)
	f.seed(buildNow)
	f.markRepo.DeactivateErr = errors.New("lock wait timeout")
	f.viewRepo.DeleteErr = errors.New("disk full")

	result, err := f.svc.Sweep(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deactivate expired marks")
	assert.Contains(t, err.Error(), "lock wait timeout")
	assert.NotContains(t, err.Error(), "disk full")

	assert.Zero(t, result.MarksDeactivated)
	assert.Equal(t, int64(1), result.SnapshotsDeleted)
	assert.Zero(t, result.ViewsCleaned)
	assert.Equal(t, 1, f.markRepo.DeactivateCalls)
}

func TestSweep_JoinsErrors(t *testing.T) {
	ctx := context.Background()
	f := newCleanupFixture(buildNow)
	markErr := errors.New("mark failure")
	snapshotErr := errors.New("snapshot failure")
	f.markRepo.DeactivateErr = markErr
	f.snapshotRepo.DeleteErr = snapshotErr

	_, err := f.svc.Sweep(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, markErr)
	assert.ErrorIs(t, err, snapshotErr)
}
