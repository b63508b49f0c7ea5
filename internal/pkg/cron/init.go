package cron

import log "log/slog"

// InitCron 注册并启动快照与清理任务
func InitCron(mgr *Manager) error {
	log.Info("Cron Jobs starting...", "jobs", len(mgr.entries))
	if err := mgr.RegisterJobs(); err != nil {
		return err
	}
	mgr.Start()
	return nil
}
