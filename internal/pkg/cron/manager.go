package cron

import (
	"LeaveAMark/internal/api/dto"
	"LeaveAMark/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job 可被定时调度、也可被手动触发的任务
type Job interface {
	cron.Job
	Name() string
	Running() bool
	Execute(ctx context.Context) (any, error)
}

type entry struct {
	job  Job
	spec string
	id   cron.EntryID
}

type Manager struct {
	engine  *cron.Cron
	entries []*entry
}

// NewCronManager specs 为任务名到 cron 表达式（含秒）的映射
func NewCronManager(specs map[string]string, jobs ...Job) *Manager {
	mgr := &Manager{
		engine:  cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		entries: make([]*entry, 0, len(jobs)),
	}
	for _, j := range jobs {
		mgr.entries = append(mgr.entries, &entry{job: j, spec: specs[j.Name()]})
	}
	return mgr
}

// RegisterJobs 注册定时任务，表达式为空的任务只能手动触发
func (s *Manager) RegisterJobs() error {
	for _, e := range s.entries {
		if e.spec == "" {
			log.Warn("cron spec not configured, job can only be triggered manually", "job", e.job.Name())
			continue
		}
		id, err := s.engine.AddJob(e.spec, e.job)
		if err != nil {
			return err
		}
		e.id = id
	}
	return nil
}

// List 任务列表及调度时间
func (s *Manager) List() []*dto.JobDTO {
	out := make([]*dto.JobDTO, 0, len(s.entries))
	for _, e := range s.entries {
		item := &dto.JobDTO{
			Name:    e.job.Name(),
			Spec:    e.spec,
			Running: e.job.Running(),
		}
		if e.id != 0 {
			ce := s.engine.Entry(e.id)
			item.PrevRun = nonZero(ce.Prev)
			item.NextRun = nonZero(ce.Next)
		}
		out = append(out, item)
	}
	return out
}

// RunNow 立即同步执行任务
func (s *Manager) RunNow(ctx context.Context, name string) (*dto.JobRunDTO, error) {
	for _, e := range s.entries {
		if e.job.Name() != name {
			continue
		}
		start := time.Now()
		result, err := e.job.Execute(ctx)
		if err != nil && result == nil {
			return nil, err
		}
		return &dto.JobRunDTO{
			Name:      name,
			StartedAt: start,
			Duration:  time.Since(start).String(),
			Result:    result,
		}, err
	}
	return nil, service.ErrJobNotFound
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}

func nonZero(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
