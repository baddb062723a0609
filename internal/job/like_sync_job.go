package job

import (
	"LikeRelay/internal/pkg/consts"
	"LikeRelay/internal/service"
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/bsm/redislock"
)

// LikeSyncJob 周期性以 DB 为准重建缓存计数，多实例间用分布式锁互斥
type LikeSyncJob struct {
	syncService service.LikeSyncService
	locker      *redislock.Client
	lockTTL     time.Duration
}

func NewLikeSyncJob(syncService service.LikeSyncService, locker *redislock.Client, lockTTL time.Duration) *LikeSyncJob {
	return &LikeSyncJob{
		syncService: syncService,
		locker:      locker,
		lockTTL:     lockTTL,
	}
}

func (s *LikeSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.lockTTL)
	defer cancel()

	lock, err := s.locker.Obtain(ctx, consts.LikeSyncLock, s.lockTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		log.Info("like sync job skipped, another instance holds the lock")
		return
	}
	if err != nil {
		log.Error("failed to obtain like sync lock", "err", err)
		return
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			log.Warn("failed to release like sync lock", "err", err)
		}
	}()

	summary, err := s.syncService.SyncAll(ctx)
	if err != nil {
		log.Error("like sync job failed", "err", err)
		return
	}
	if summary.Failed > 0 {
		log.Warn("like sync job finished with failures", "synced", summary.Synced, "failed", summary.Failed)
	}
}
