package cron

import (
	"LikeRelay/internal/job"
	"context"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine      *cron.Cron
	likeSyncJob *job.LikeSyncJob
	syncSpec    string
}

func NewCronManager(likeSyncJob *job.LikeSyncJob, syncSpec string) *Manager {
	return &Manager{
		engine: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		likeSyncJob: likeSyncJob,
		syncSpec:    syncSpec,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.syncSpec, s.likeSyncJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动", "like_sync_spec", s.syncSpec)
	s.engine.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Manager) Stop() context.Context {
	log.Info("Cron 定时任务引擎停止")
	return s.engine.Stop()
}

// Entries 已注册任务数
func (s *Manager) Entries() int {
	return len(s.engine.Entries())
}
