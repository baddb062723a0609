package config

import (
	"LikeRelay/internal/pkg/consts"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_open", 50)
	v.SetDefault("database.max_lifetime", 30)
	v.SetDefault("database.slow_threshold", 200)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("kafka.brokers", []string{"kafka:9092"})
	v.SetDefault("kafka.client_id", "like-relay")
	v.SetDefault("kafka.version", "2.8.0")
	v.SetDefault("kafka.producer.retry_max", 8)
	v.SetDefault("kafka.producer.retry_backoff", 100)
	v.SetDefault("kafka.producer.timeout", 25)
	v.SetDefault("kafka.consumer.session_timeout", 30)
	v.SetDefault("kafka.consumer.heartbeat_interval", 3)
	v.SetDefault("kafka.consumer.rebalance_timeout", 60)
	v.SetDefault("kafka.consumer.max_processing_time", 60)
	v.SetDefault("kafka_like_consumer.topic", "like-events")
	v.SetDefault("kafka_like_consumer.dlq_topic", "like-events-dlq")
	v.SetDefault("kafka_like_consumer.group_id", "like-events-group")
	v.SetDefault("kafka_like_consumer.partition_key", "pair")
	v.SetDefault("retry.max_retries", 5)
	v.SetDefault("retry.base_delay", 1000)
	v.SetDefault("retry.max_delay", 30000)
	v.SetDefault("sync.spec", "@every 5m")
	v.SetDefault("sync.batch_size", 500)
	v.SetDefault("sync.lock_ttl", 240)
	v.SetDefault("sync.warm_up", true)
}

// LoadConfig 从 ./configs/config.yaml 与环境变量加载配置
// 环境变量以 "." -> "_" 映射，例如 KAFKA_LIKE_CONSUMER_TOPIC
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers must not be empty")
	}
	switch c.KafkaLikeConsumer.PartitionKey {
	case consts.PartitionKeyPair, consts.PartitionKeyEventID:
	default:
		return fmt.Errorf("unknown kafka_like_consumer.partition_key %q", c.KafkaLikeConsumer.PartitionKey)
	}
	if c.Retry.MaxRetries < 0 || c.Retry.BaseDelay <= 0 || c.Retry.MaxDelay < c.Retry.BaseDelay {
		return fmt.Errorf("invalid retry config: %+v", c.Retry)
	}
	return nil
}
