package cron

import (
	"LeaveAMark/internal/service"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name   string
	result any
	err    error
	runs   int
}

func (j *stubJob) Run()          { j.runs++ }
func (j *stubJob) Name() string  { return j.name }
func (j *stubJob) Running() bool { return false }

func (j *stubJob) Execute(context.Context) (any, error) {
	j.runs++
	return j.result, j.err
}

func TestManager_ListAndRunNow(t *testing.T) {
	snapshot := &stubJob{name: "snapshot", result: map[string]int{"snapshots_created": 2}}
	cleanup := &stubJob{name: "cleanup", err: errors.New("db down")}
	mgr := NewCronManager(map[string]string{
		"snapshot": "0 0 0 * * *",
		"cleanup":  "0 0 * * * *",
	}, snapshot, cleanup)
	require.NoError(t, mgr.RegisterJobs())

	jobs := mgr.List()
	require.Len(t, jobs, 2)
	assert.Equal(t, "snapshot", jobs[0].Name)
	assert.Equal(t, "0 0 0 * * *", jobs[0].Spec)
	assert.Equal(t, "cleanup", jobs[1].Name)
	// 引擎未启动时没有调度时间
	assert.Nil(t, jobs[0].NextRun)

	run, err := mgr.RunNow(context.Background(), "snapshot")
	require.NoError(t, err)
	assert.Equal(t, "snapshot", run.Name)
	assert.Equal(t, snapshot.result, run.Result)
	assert.Equal(t, 1, snapshot.runs)

	_, err = mgr.RunNow(context.Background(), "cleanup")
	assert.EqualError(t, err, "db down")

	_, err = mgr.RunNow(context.Background(), "unknown")
	assert.ErrorIs(t, err, service.ErrJobNotFound)
}

func TestManager_InvalidSpec(t *testing.T) {
	mgr := NewCronManager(map[string]string{"snapshot": "every day"}, &stubJob{name: "snapshot"})
	assert.Error(t, mgr.RegisterJobs())
}

func TestManager_EmptySpecManualOnly(t *testing.T) {
	job := &stubJob{name: "cleanup"}
	mgr := NewCronManager(map[string]string{}, job)
	require.NoError(t, mgr.RegisterJobs())

	jobs := mgr.List()
	require.Len(t, jobs, 1)
	assert.Empty(t, jobs[0].Spec)
	assert.Nil(t, jobs[0].NextRun)

	_, err := mgr.RunNow(context.Background(), "cleanup")
	require.NoError(t, err)
}
