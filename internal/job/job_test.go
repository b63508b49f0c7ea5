package job

import (
	"LeaveAMark/internal/api/dto"
	"LeaveAMark/internal/pkg/logger"
	"LeaveAMark/internal/service"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshotService struct {
	result  *service.GenerateResult
	err     error
	block   chan struct{}
	started chan struct{}
	traceID string
}

func (f *fakeSnapshotService) GenerateDailySnapshots(ctx context.Context) (*service.GenerateResult, error) {
	f.traceID = logger.TraceID(ctx)
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.result, f.err
}

func (f *fakeSnapshotService) GetSnapshot(context.Context, string) (*dto.SnapshotDTO, error) {
	return nil, service.ErrSnapshotNotFound
}

func (f *fakeSnapshotService) GetSnapshotAt(context.Context, float64, float64) (*dto.SnapshotDTO, error) {
	return nil, service.ErrSnapshotNotFound
}

type fakeCleanupService struct {
	result *service.CleanupResult
	err    error
}

func (f *fakeCleanupService) Sweep(context.Context) (*service.CleanupResult, error) {
	return f.result, f.err
}

func TestSnapshotJob_Execute(t *testing.T) {
	svc := &fakeSnapshotService{result: &service.GenerateResult{SnapshotsCreated: 3}}
	j := NewSnapshotJob(svc)
	assert.Equal(t, SnapshotJobName, j.Name())

	res, err := j.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, svc.result, res)
	assert.False(t, j.Running())
}

func TestSnapshotJob_RunSeedsTraceID(t *testing.T) {
	svc := &fakeSnapshotService{result: &service.GenerateResult{}}
	NewSnapshotJob(svc).Run()
	assert.True(t, strings.HasPrefix(svc.traceID, "job-snapshot-"))
}

func TestSnapshotJob_NoOverlap(t *testing.T) {
	svc := &fakeSnapshotService{
		result:  &service.GenerateResult{},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	j := NewSnapshotJob(svc)

	done := make(chan error, 1)
	go func() {
		_, err := j.Execute(context.Background())
		done <- err
	}()
	<-svc.started
	assert.True(t, j.Running())

	_, err := j.Execute(context.Background())
	assert.ErrorIs(t, err, service.ErrJobRunning)

	close(svc.block)
	require.NoError(t, <-done)
	assert.False(t, j.Running())
}

func TestCleanupJob_PartialFailureKeepsResult(t *testing.T) {
	stepErr := errors.New("delete expired snapshots: timeout")
	svc := &fakeCleanupService{
		result: &service.CleanupResult{MarksDeactivated: 4},
		err:    stepErr,
	}
	j := NewCleanupJob(svc)

	res, err := j.Execute(context.Background())
	assert.ErrorIs(t, err, stepErr)
	require.NotNil(t, res)
	assert.Equal(t, int64(4), res.(*service.CleanupResult).MarksDeactivated)
}

func TestCleanupJob_Failure(t *testing.T) {
	j := NewCleanupJob(&fakeCleanupService{err: errors.New("boom")})
	res, err := j.Execute(context.Background())
	assert.Error(t, err)
	assert.Nil(t, res)
}
