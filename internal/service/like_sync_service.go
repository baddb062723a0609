package service

import (
	"LikeRelay/internal/pkg/redis"
	"LikeRelay/internal/repository"
	"context"
	log "log/slog"
	"time"
)

const defaultSyncBatchSize = 500

// SyncSummary 一次全量对账的结果
type SyncSummary struct {
	Synced   int           `json:"synced"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

type LikeSyncService interface {
	// SyncAll 以 DB 为准覆盖所有帖子的缓存计数，单个帖子失败不会中断
	SyncAll(ctx context.Context) (*SyncSummary, error)
	// SyncPost 单帖对账，回写缓存失败时仍返回 DB 计数
	SyncPost(ctx context.Context, postID uint64) (int64, error)
	// WarmUp 冷启动预热
	WarmUp(ctx context.Context) error
}

type likeSyncServiceImpl struct {
	likeRepo  repository.LikeRepo
	counter   redis.LikeCounter
	batchSize int
}

func NewLikeSyncService(likeRepo repository.LikeRepo, counter redis.LikeCounter, batchSize int) LikeSyncService {
	if batchSize <= 0 {
		batchSize = defaultSyncBatchSize
	}
	return &likeSyncServiceImpl{
		likeRepo:  likeRepo,
		counter:   counter,
		batchSize: batchSize,
	}
}

func (s *likeSyncServiceImpl) SyncAll(ctx context.Context) (*SyncSummary, error) {
	start := time.Now()
	summary := &SyncSummary{}
	log.InfoContext(ctx, "Starting DB to Redis like count sync")

	var cursor uint64
	for {
		ids, err := s.likeRepo.ListPostIDs(ctx, cursor, s.batchSize)
		if err != nil {
			log.ErrorContext(ctx, "list post ids failed", "after", cursor, "err", err)
			summary.Duration = time.Since(start)
			return summary, err
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			if ctx.Err() != nil {
				summary.Duration = time.Since(start)
				return summary, ctx.Err()
			}
			if _, err = s.syncOne(ctx, id); err != nil {
				summary.Failed++
				log.ErrorContext(ctx, "sync post like count failed", "post_id", id, "err", err)
				continue
			}
			summary.Synced++
		}

		cursor = ids[len(ids)-1]
		if len(ids) < s.batchSize {
			break
		}
	}

	summary.Duration = time.Since(start)
	log.InfoContext(ctx, "DB to Redis like count sync completed",
		"synced", summary.Synced, "failed", summary.Failed, "duration", summary.Duration)
	return summary, nil
}

func (s *likeSyncServiceImpl) SyncPost(ctx context.Context, postID uint64) (int64, error) {
	count, err := s.syncOne(ctx, postID)
	if err != nil {
		log.WarnContext(ctx, "sync post like count failed", "post_id", postID, "err", err)
		return count, err
	}
	log.DebugContext(ctx, "post like count synced", "post_id", postID, "count", count)
	return count, nil
}

func (s *likeSyncServiceImpl) WarmUp(ctx context.Context) error {
	log.InfoContext(ctx, "Warming Redis from database...")
	_, err := s.SyncAll(ctx)
	return err
}

func (s *likeSyncServiceImpl) syncOne(ctx context.Context, postID uint64) (int64, error) {
	count, err := s.likeRepo.GetLikeCount(ctx, postID)
	if err != nil {
		return 0, err
	}
	return count, s.counter.Set(ctx, postID, count)
}
