package config

// Config 配置主体
type Config struct {
	Server            ServerConfig      `mapstructure:"server"`
	Log               LogConfig         `mapstructure:"log"`
	DB                DBConfig          `mapstructure:"database"`
	Redis             RedisConfig       `mapstructure:"redis"`
	Kafka             KafkaConfig       `mapstructure:"kafka"`
	KafkaLikeConsumer KafkaLikeConsumer `mapstructure:"kafka_like_consumer"`
	Retry             RetryConfig       `mapstructure:"retry"`
	Sync              SyncConfig        `mapstructure:"sync"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LogConfig 日志配置，Logstash 地址为空时只输出到 stdout
type LogConfig struct {
	Level         string `mapstructure:"level"`
	LogstashAddr  string `mapstructure:"logstash_addr"`
	LogstashIndex string `mapstructure:"logstash_index"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN           string `mapstructure:"dsn"`
	MaxIdle       int    `mapstructure:"max_idle"`
	MaxOpen       int    `mapstructure:"max_open"`
	MaxLifetime   int    `mapstructure:"max_lifetime"`
	SlowThreshold int    `mapstructure:"slow_threshold"`
	AutoMigrate   bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	ClientID string         `mapstructure:"client_id"`
	Version  string         `mapstructure:"version"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Producer ProducerConfig `mapstructure:"producer"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ProducerConfig struct {
	RetryMax     int `mapstructure:"retry_max"`
	RetryBackoff int `mapstructure:"retry_backoff"` // 毫秒
	Timeout      int `mapstructure:"timeout"`       // 秒
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

// KafkaLikeConsumer 点赞事件 topic / 死信 topic / 消费组
type KafkaLikeConsumer struct {
	Topic        string `mapstructure:"topic"`
	DLQTopic     string `mapstructure:"dlq_topic"`
	GroupID      string `mapstructure:"group_id"`
	PartitionKey string `mapstructure:"partition_key"` // pair | event_id
}

// RetryConfig 消费失败重试策略，单位毫秒
type RetryConfig struct {
	MaxRetries int `mapstructure:"max_retries"`
	BaseDelay  int `mapstructure:"base_delay"`
	MaxDelay   int `mapstructure:"max_delay"`
}

// SyncConfig DB -> Redis 对账任务
type SyncConfig struct {
	Spec      string `mapstructure:"spec"`
	BatchSize int    `mapstructure:"batch_size"`
	LockTTL   int    `mapstructure:"lock_ttl"` // 秒
	WarmUp    bool   `mapstructure:"warm_up"`
}
