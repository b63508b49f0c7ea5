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

func newTestSnapshotService(now time.Time) (*snapshotServiceImpl, *mocks.MockMarkRepo, *mocks.MockSnapshotRepo) {
	markRepo := mocks.NewMockMarkRepo()
	snapshotRepo := mocks.NewMockSnapshotRepo()
	svc := NewSnapshotService(markRepo, snapshotRepo, time.UTC).(*snapshotServiceImpl)
	svc.now = func() time.Time { return now }
	return svc, markRepo, snapshotRepo
}

func TestGenerateDailySnapshots(t *testing.T) {
	ctx := context.Background()
	svc, markRepo, snapshotRepo := newTestSnapshotService(buildNow)

	markRepo.SetData(
		markAt("t1", model.MarkTypeText, 37.77493, -122.41942, 3, 0, time.Hour),
		markAt("i1", model.MarkTypeImage, 37.77493, -122.41942, 0, 0, 2*time.Hour),
		markAt("a1", model.MarkTypeAudio, 51.5074, -0.1278, 0, 0, 3*time.Hour),
		markAt("c1", model.MarkTypeCanvas, 1, 1, 0, 0, time.Hour),
		// 超过 24 小时的不参与
		markAt("old", model.MarkTypeText, 40, 40, 0, 0, 25*time.Hour),
	)
	inactive := markAt("inactive", model.MarkTypeText, 41, 41, 0, 0, time.Hour)
	inactive.IsActive = false
	markRepo.SetData(inactive)

	result, err := svc.GenerateDailySnapshots(ctx)
	require.NoError(t, err)
	assert.Equal(t, &GenerateResult{
		SnapshotsCreated:   2,
		LocationsProcessed: 3,
		TotalMarks:         4,
	}, result)

	all := snapshotRepo.All()
	require.Len(t, all, 2)
	for _, s := range all {
		assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), s.SnapshotDate)
	}
}

func TestGenerateDailySnapshots_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, markRepo, snapshotRepo := newTestSnapshotService(buildNow)
	markRepo.SetData(markAt("t1", model.MarkTypeText, 0, 0, 0, 0, time.Hour))

	_, err := svc.GenerateDailySnapshots(ctx)
	require.NoError(t, err)
	first := snapshotRepo.All()

	svc.now = func() time.Time { return buildNow.Add(time.Hour) }
	markRepo.SetData(markAt("t2", model.MarkTypeText, 0, 0, 9, 0, time.Hour))
	_, err = svc.GenerateDailySnapshots(ctx)
	require.NoError(t, err)
	second := snapshotRepo.All()

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[0].ExpiresAt, second[0].ExpiresAt)
	assert.Equal(t, model.StringList{"t2", "t1"}, second[0].TopTexts)
}

func TestGenerateDailySnapshots_UpsertFailureContinues(t *testing.T) {
	ctx := context.Background()
	svc, markRepo, snapshotRepo := newTestSnapshotService(buildNow)
	markRepo.SetData(
		markAt("t1", model.MarkTypeText, 0, 0, 0, 0, time.Hour),
		markAt("t2", model.MarkTypeText, 10, 10, 0, 0, time.Hour),
		markAt("bad", model.MarkTypeText, 95, 0, 0, 0, time.Hour),
	)
	snapshotRepo.FailClusters["0_0"] = errors.New("deadlock")

	result, err := svc.GenerateDailySnapshots(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SnapshotsCreated)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 3, result.TotalMarks)
	assert.Len(t, snapshotRepo.UpsertCalls, 2)
}

func TestGetSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, markRepo, snapshotRepo := newTestSnapshotService(buildNow)
	markRepo.SetData(
		markAt("t1", model.MarkTypeText, 0, 0, 0, 0, time.Hour),
		markAt("t2", model.MarkTypeText, 0, 0, 0, 0, time.Hour),
		markAt("i1", model.MarkTypeImage, 0, 0, 0, 0, time.Hour),
	)
	snapshotRepo.SetData(&model.Snapshot{
		LocationClusterID: "0_0",
		SnapshotDate:      time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		TopTexts:          model.StringList{"t2", "gone", "t1"},
		TopAudios:         model.StringList{},
		Images:            model.StringList{"i1"},
		CreatedAt:         buildNow,
		ExpiresAt:         buildNow.Add(time.Hour),
	})

	out, err := svc.GetSnapshot(ctx, "0_0")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", out.SnapshotDate)
	require.Len(t, out.TopTexts, 2)
	assert.Equal(t, "t2", out.TopTexts[0].ID)
	assert.Equal(t, "t1", out.TopTexts[1].ID)
	assert.Empty(t, out.TopAudios)
	require.Len(t, out.Images, 1)
	assert.Equal(t, "i1", out.Images[0].ID)

	byCoord, err := svc.GetSnapshotAt(ctx, 0.0001, -0.0002)
	require.NoError(t, err)
	assert.Equal(t, out, byCoord)
}

func TestGetSnapshot_NotFoundOrExpired(t *testing.T) {
	ctx := context.Background()
	svc, _, snapshotRepo := newTestSnapshotService(buildNow)
	snapshotRepo.SetData(&model.Snapshot{
		LocationClusterID: "1_1",
		SnapshotDate:      time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		TopTexts:          model.StringList{"t"},
		ExpiresAt:         buildNow.Add(-time.Minute),
	})

	_, err := svc.GetSnapshot(ctx, "1_1")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	_, err = svc.GetSnapshot(ctx, "2_2")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	_, err = svc.GetSnapshot(ctx, "")
	assert.ErrorIs(t, err, ErrParamInvalid)

	_, err = svc.GetSnapshotAt(ctx, 91, 0)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}
