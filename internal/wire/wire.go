package wire

import (
	"LikeRelay/internal/api"
	"LikeRelay/internal/api/config"
	"LikeRelay/internal/api/handler"
	"LikeRelay/internal/job"
	"LikeRelay/internal/pkg/cron"
	"LikeRelay/internal/pkg/kafka"
	"LikeRelay/internal/pkg/redis"
	"LikeRelay/internal/pkg/retry"
	"LikeRelay/internal/pkg/statemachine"
	"LikeRelay/internal/repository"
	"LikeRelay/internal/service"
	"time"

	"github.com/IBM/sarama"
	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	Producer     *kafka.Producer
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
	SyncService  service.LikeSyncService
}

// BuildApplication 组装所有依赖，外部连接由调用方创建并传入
func BuildApplication(db *gorm.DB, rdb *goredis.Client, syncProducer sarama.SyncProducer, cfg *config.Config) (*ApplicationContainer, error) {
	likeRepo := repository.NewLikeRepo(db)
	likeCounter := redis.NewLikeCounter(rdb)
	producer := kafka.NewProducer(syncProducer, cfg.KafkaLikeConsumer)

	retryCtl := retry.NewController(retry.Options{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  time.Duration(cfg.Retry.BaseDelay) * time.Millisecond,
		MaxDelay:   time.Duration(cfg.Retry.MaxDelay) * time.Millisecond,
	})

	likeSyncService := service.NewLikeSyncService(likeRepo, likeCounter, cfg.Sync.BatchSize)
	likeService := service.NewLikeService(likeRepo, likeCounter, producer, likeSyncService)
	likeEventService := service.NewLikeEventService(likeRepo, statemachine.NewLikeStateMachine(), retryCtl, producer)

	handlers := &api.HandlersGroup{
		LikeHandler: handler.NewLikeHandler(likeService, likeSyncService),
	}
	router := api.SetupRouter(handlers)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, likeEventService)
	if err != nil {
		return nil, err
	}

	likeSyncJob := job.NewLikeSyncJob(likeSyncService, redislock.New(rdb), time.Duration(cfg.Sync.LockTTL)*time.Second)
	cronMgr := cron.NewCronManager(likeSyncJob, cfg.Sync.Spec)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		Producer:     producer,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
		SyncService:  likeSyncService,
	}, nil
}
