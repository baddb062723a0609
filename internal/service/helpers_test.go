package service

import (
	"LikeRelay/internal/model"
	"LikeRelay/internal/pkg/redis"
	"LikeRelay/internal/repository"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) repository.LikeRepo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.Post{}, &model.Like{}))
	return repository.NewLikeRepo(db)
}

func newTestCounter(t *testing.T) (redis.LikeCounter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	return redis.NewLikeCounter(rdb), mr
}

// fakeBroker 同时充当事件发布端与死信发送端
type fakeBroker struct {
	mu          sync.Mutex
	published   []*model.LikeEventMessage
	deadLetters []deadLetter
	publishErr  error
	dlqErr      error
}

type deadLetter struct {
	msg   *model.BrokerMessage
	cause error
}

func (f *fakeBroker) PublishLikeEvent(_ context.Context, evt *model.LikeEventMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, evt)
	return nil
}

func (f *fakeBroker) SendToDeadLetter(_ context.Context, msg *model.BrokerMessage, cause error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dlqErr != nil {
		return f.dlqErr
	}
	f.deadLetters = append(f.deadLetters, deadLetter{msg: msg, cause: cause})
	return nil
}

// flakyRepo 在事务阶段注入失败，行创建等其余操作走真实仓储
type flakyRepo struct {
	repository.LikeRepo
	mu       sync.Mutex
	failures int
	calls    int
	panicky  bool
}

var errDurableWrite = errors.New("durable write timeout")

func (f *flakyRepo) Transaction(ctx context.Context, fn func(tx repository.LikeRepo) error) error {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.failures
	f.mu.Unlock()
	if fail {
		if f.panicky {
			panic("driver exploded")
		}
		return errDurableWrite
	}
	return f.LikeRepo.Transaction(ctx, fn)
}

// brokenRepo 所有读操作失败
type brokenRepo struct {
	repository.LikeRepo
}

var errDBDown = errors.New("database unavailable")

func (brokenRepo) IsLiked(context.Context, uint64, uint64) (bool, error) { return false, errDBDown }
func (brokenRepo) GetLikeCount(context.Context, uint64) (int64, error)   { return 0, errDBDown }
