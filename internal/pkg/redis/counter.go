package redis

import (
	"LikeRelay/internal/pkg/consts"
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// decrFloorZero DECR 后若小于 0 则在同一脚本内回写 0，保证原子性
var decrFloorZero = redis.NewScript(`
local v = redis.call('DECR', KEYS[1])
if v < 0 then
	redis.call('SET', KEYS[1], 0)
	return 0
end
return v
`)

// LikeCounter 帖子点赞数快速计数器
type LikeCounter interface {
	Increment(ctx context.Context, postID uint64) (int64, error)
	Decrement(ctx context.Context, postID uint64) (int64, error)
	Get(ctx context.Context, postID uint64) (int64, error)
	Set(ctx context.Context, postID uint64, count int64) error
}

type LikeCounterImpl struct {
	rdb redis.Cmdable
}

func NewLikeCounter(rdb redis.Cmdable) LikeCounter {
	return &LikeCounterImpl{rdb: rdb}
}

func likeCountKey(postID uint64) string {
	return fmt.Sprintf(consts.PostLikeCountKey, postID)
}

func (s *LikeCounterImpl) Increment(ctx context.Context, postID uint64) (int64, error) {
	return s.rdb.Incr(ctx, likeCountKey(postID)).Result()
}

func (s *LikeCounterImpl) Decrement(ctx context.Context, postID uint64) (int64, error) {
	return decrFloorZero.Run(ctx, s.rdb, []string{likeCountKey(postID)}).Int64()
}

// Get key 不存在时返回 0
func (s *LikeCounterImpl) Get(ctx context.Context, postID uint64) (int64, error) {
	count, err := s.rdb.Get(ctx, likeCountKey(postID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return count, err
}

func (s *LikeCounterImpl) Set(ctx context.Context, postID uint64, count int64) error {
	if count < 0 {
		count = 0
	}
	return s.rdb.Set(ctx, likeCountKey(postID), count, 0).Err()
}
