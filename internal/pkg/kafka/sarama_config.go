package kafka

import (
	"LikeRelay/internal/api/config"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// newSaramaConfig 统一初始化 sarama.Config，生产者与消费组共用
func newSaramaConfig(kafkaCfg config.KafkaConfig) (*sarama.Config, error) {
	c := sarama.NewConfig()

	version, err := sarama.ParseKafkaVersion(kafkaCfg.Version)
	if err != nil {
		return nil, fmt.Errorf("invalid kafka version %q: %w", kafkaCfg.Version, err)
	}
	c.Version = version
	if kafkaCfg.ClientID != "" {
		c.ClientID = kafkaCfg.ClientID
	}

	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}

	// 幂等生产者要求 acks=all 且单连接同时只有一个在途请求
	c.Producer.Idempotent = true
	c.Producer.RequiredAcks = sarama.WaitForAll
	c.Net.MaxOpenRequests = 1
	c.Producer.Return.Successes = true
	c.Producer.Return.Errors = true
	c.Producer.Retry.Max = kafkaCfg.Producer.RetryMax
	c.Producer.Retry.Backoff = time.Duration(kafkaCfg.Producer.RetryBackoff) * time.Millisecond
	c.Producer.Timeout = time.Duration(kafkaCfg.Producer.Timeout) * time.Second

	c.Consumer.Return.Errors = true
	c.Consumer.Offsets.Initial = sarama.OffsetOldest

	c.Consumer.Group.Session.Timeout = time.Duration(kafkaCfg.Consumer.SessionTimeout) * time.Second
	c.Consumer.Group.Heartbeat.Interval = time.Duration(kafkaCfg.Consumer.HeartbeatInterval) * time.Second
	c.Consumer.Group.Rebalance.Timeout = time.Duration(kafkaCfg.Consumer.RebalanceTimeout) * time.Second
	c.Consumer.Offsets.AutoCommit.Enable = false
	c.Consumer.MaxProcessingTime = time.Duration(kafkaCfg.Consumer.MaxProcessingTime) * time.Second

	if err = c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sarama config: %w", err)
	}
	return c, nil
}
