package kafka

import (
	"LikeRelay/internal/api/config"
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
)

const consumeRetryInterval = time.Second

// ConsumerManager 管理点赞事件消费组
type ConsumerManager struct {
	likeConsumer sarama.ConsumerGroup
	likeHandler  sarama.ConsumerGroupHandler
	topic        string
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config, processor MessageProcessor) (*ConsumerManager, error) {
	saramaCfg, err := newSaramaConfig(cfg.Kafka)
	if err != nil {
		return nil, err
	}

	likeConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaLikeConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		likeConsumer: likeConsumer,
		likeHandler:  NewLikeEventsHandler(processor),
		topic:        cfg.KafkaLikeConsumer.Topic,
	}, nil
}

// Start 阻塞消费直到 ctx 结束，随后关闭消费组
func (m *ConsumerManager) Start(ctx context.Context) error {
	go func() {
		for err := range m.likeConsumer.Errors() {
			log.Error("Error from like consumer group", "err", err)
		}
	}()

	log.Info("Like consumer started", "topic", m.topic)
	for {
		err := m.likeConsumer.Consume(ctx, []string{m.topic}, m.likeHandler)
		if errors.Is(err, sarama.ErrClosedConsumerGroup) {
			return nil
		}
		if err != nil {
			log.Error("Error from consumer", "err", err)
			select {
			case <-time.After(consumeRetryInterval):
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			break
		}
	}

	log.Info("Kafka Manager shutting down...")
	if err := m.likeConsumer.Close(); err != nil {
		log.Error("Failed to close like consumer", "err", err)
		return err
	}
	return nil
}
