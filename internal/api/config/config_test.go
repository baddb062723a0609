package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "like-events", cfg.KafkaLikeConsumer.Topic)
	assert.Equal(t, "like-events-dlq", cfg.KafkaLikeConsumer.DLQTopic)
	assert.Equal(t, "like-events-group", cfg.KafkaLikeConsumer.GroupID)
	assert.Equal(t, "pair", cfg.KafkaLikeConsumer.PartitionKey)
	assert.Equal(t, 5, cfg.Retry.MaxRetries)
	assert.Equal(t, 1000, cfg.Retry.BaseDelay)
	assert.Equal(t, 30000, cfg.Retry.MaxDelay)
	assert.Equal(t, "@every 5m", cfg.Sync.Spec)
	assert.True(t, cfg.Sync.WarmUp)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := writeConfig(t, `
redis:
  addr: "cache:6379"
kafka:
  brokers: ["k1:9092", "k2:9092"]
kafka_like_consumer:
  partition_key: event_id
retry:
  max_retries: 3
`)
	t.Setenv("REDIS_ADDR", "override:6380")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "override:6380", cfg.Redis.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "event_id", cfg.KafkaLikeConsumer.PartitionKey)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, 1000, cfg.Retry.BaseDelay)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"partition key": "kafka_like_consumer:\n  partition_key: random\n",
		"retry delays":  "retry:\n  base_delay: 5000\n  max_delay: 100\n",
		"no brokers":    "kafka:\n  brokers: []\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
