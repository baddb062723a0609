package service

import (
	"LikeRelay/internal/model"
	"LikeRelay/internal/pkg/redis"
	"LikeRelay/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// ToggleResult 切换后的点赞状态与缓存计数
type ToggleResult struct {
	Liked     bool
	LikeCount int64
	EventID   string
}

type LikeService interface {
	// Toggle 以 DB 中的关系决定点赞或取消，先改缓存计数再发布事件，不等待落库
	Toggle(ctx context.Context, postID, userID uint64) (*ToggleResult, error)
	// GetLikeCount 读缓存计数，读到 0 时回源 DB；不返回错误
	GetLikeCount(ctx context.Context, postID uint64) int64
}

type likeServiceImpl struct {
	likeRepo    repository.LikeRepo
	counter     redis.LikeCounter
	producer    EventProducer
	syncService LikeSyncService
}

func NewLikeService(
	likeRepo repository.LikeRepo,
	counter redis.LikeCounter,
	producer EventProducer,
	syncService LikeSyncService,
) LikeService {
	return &likeServiceImpl{
		likeRepo:    likeRepo,
		counter:     counter,
		producer:    producer,
		syncService: syncService,
	}
}

func (s *likeServiceImpl) Toggle(ctx context.Context, postID, userID uint64) (*ToggleResult, error) {
	liked, err := s.likeRepo.IsLiked(ctx, postID, userID)
	if err != nil {
		log.ErrorContext(ctx, "lookup like membership failed", "post_id", postID, "user_id", userID, "err", err)
		return nil, ErrLikeProcessFailed
	}

	action := model.LikeActionLike
	var count int64
	if liked {
		action = model.LikeActionUnlike
		count, err = s.counter.Decrement(ctx, postID)
	} else {
		count, err = s.counter.Increment(ctx, postID)
	}
	if err != nil {
		log.ErrorContext(ctx, "update like counter failed", "post_id", postID, "action", action, "err", err)
		return nil, ErrLikeProcessFailed
	}

	evt := &model.LikeEventMessage{
		EventID:   uuid.NewString(),
		PostID:    postID,
		UserID:    userID,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
	if err = s.producer.PublishLikeEvent(ctx, evt); err != nil {
		// 计数已修改，由对账任务收敛
		log.ErrorContext(ctx, "publish like event failed, counter diverged until next sync",
			"post_id", postID, "user_id", userID, "action", action, "event_id", evt.EventID, "err", err)
		return nil, ErrLikeProcessFailed
	}

	return &ToggleResult{
		Liked:     action == model.LikeActionLike,
		LikeCount: count,
		EventID:   evt.EventID,
	}, nil
}

func (s *likeServiceImpl) GetLikeCount(ctx context.Context, postID uint64) int64 {
	count, err := s.counter.Get(ctx, postID)
	if err != nil {
		log.WarnContext(ctx, "like counter unavailable, falling back to database", "post_id", postID, "err", err)
		durable, dbErr := s.likeRepo.GetLikeCount(ctx, postID)
		if dbErr != nil {
			log.ErrorContext(ctx, "database fallback failed", "post_id", postID, "err", dbErr)
			return 0
		}
		return durable
	}
	if count != 0 {
		return count
	}

	// 0 既可能是未预热也可能是真实值，统一回源
	durable, err := s.syncService.SyncPost(ctx, postID)
	if err != nil {
		log.WarnContext(ctx, "resync on zero read failed", "post_id", postID, "err", err)
	}
	return durable
}
