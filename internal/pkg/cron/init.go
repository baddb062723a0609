package cron

import log "log/slog"

// InitCron 注册并启动定时任务，注册失败时不启动调度
func InitCron(mgr *Manager) error {
	log.Info("Cron Jobs starting...", "entries_before", mgr.Entries())
	if err := mgr.RegisterJobs(); err != nil {
		return err
	}
	mgr.Start()
	return nil
}
