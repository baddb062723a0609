package kafka

import (
	"LikeRelay/internal/api/config"
	"LikeRelay/internal/model"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLikeCfg = config.KafkaLikeConsumer{
	Topic:        "like-events",
	DLQTopic:     "like-events-dlq",
	GroupID:      "like-events-group",
	PartitionKey: "pair",
}

func headerValue(headers []sarama.RecordHeader, key string) string {
	for _, h := range headers {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func encoded(t *testing.T, e sarama.Encoder) []byte {
	t.Helper()
	b, err := e.Encode()
	require.NoError(t, err)
	return b
}

func TestPublishLikeEventPairKey(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	p := NewProducer(sp, testLikeCfg)
	t.Cleanup(func() { _ = p.Close() })

	evt := &model.LikeEventMessage{
		EventID:   "evt-1",
		PostID:    123,
		UserID:    1,
		Action:    model.LikeActionLike,
		Timestamp: time.Now().UTC(),
	}

	sp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "like-events", msg.Topic)
		assert.Equal(t, "123:1", string(encoded(t, msg.Key)))
		assert.Equal(t, "evt-1", headerValue(msg.Headers, "event_id"))
		assert.Equal(t, "123", headerValue(msg.Headers, "post_id"))
		assert.Equal(t, "1", headerValue(msg.Headers, "user_id"))

		got, err := model.ParseLikeEvent(encoded(t, msg.Value))
		require.NoError(t, err)
		assert.Equal(t, evt.EventID, got.EventID)
		assert.Equal(t, model.LikeActionLike, got.Action)
		return nil
	})

	require.NoError(t, p.PublishLikeEvent(context.Background(), evt))
}

func TestPublishLikeEventEventIDKey(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	cfg := testLikeCfg
	cfg.PartitionKey = "event_id"
	p := NewProducer(sp, cfg)
	t.Cleanup(func() { _ = p.Close() })

	sp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "evt-2", string(encoded(t, msg.Key)))
		return nil
	})

	require.NoError(t, p.PublishLikeEvent(context.Background(), &model.LikeEventMessage{
		EventID: "evt-2", PostID: 1, UserID: 2, Action: model.LikeActionUnlike,
	}))
}

func TestPublishLikeEventBrokerError(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	p := NewProducer(sp, testLikeCfg)
	t.Cleanup(func() { _ = p.Close() })

	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := p.PublishLikeEvent(context.Background(), &model.LikeEventMessage{
		EventID: "evt-3", PostID: 1, UserID: 1, Action: model.LikeActionLike,
	})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

func TestPublishLikeEventCancelledContext(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	p := NewProducer(sp, testLikeCfg)
	t.Cleanup(func() { _ = p.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.PublishLikeEvent(ctx, &model.LikeEventMessage{EventID: "x", PostID: 1, UserID: 1, Action: model.LikeActionLike})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSendToDeadLetter(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	p := NewProducer(sp, testLikeCfg)
	t.Cleanup(func() { _ = p.Close() })

	original := &model.BrokerMessage{
		Topic:     "like-events",
		Partition: 2,
		Offset:    41,
		Key:       []byte("123:1"),
		Value:     []byte(`not json`),
		Headers:   map[string]string{"event_id": "evt-9"},
	}

	sp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "like-events-dlq", msg.Topic)
		assert.Equal(t, "123:1", string(encoded(t, msg.Key)))
		assert.Equal(t, "evt-9", headerValue(msg.Headers, "event_id"))

		var dl model.DeadLetter
		require.NoError(t, json.Unmarshal(encoded(t, msg.Value), &dl))
		assert.Equal(t, "not json", dl.OriginalMessage)
		assert.Equal(t, "boom", dl.Error)
		assert.False(t, dl.Timestamp.IsZero())
		return nil
	})

	require.NoError(t, p.SendToDeadLetter(context.Background(), original, errors.New("boom")))
}

func TestNewSaramaConfigIdempotentProducer(t *testing.T) {
	c, err := newSaramaConfig(config.KafkaConfig{
		Brokers:  []string{"localhost:9092"},
		ClientID: "like-relay",
		Version:  "2.8.0",
		Producer: config.ProducerConfig{RetryMax: 8, RetryBackoff: 100, Timeout: 25},
		Consumer: config.ConsumerConfig{SessionTimeout: 30, HeartbeatInterval: 3, RebalanceTimeout: 60, MaxProcessingTime: 60},
	})
	require.NoError(t, err)

	assert.True(t, c.Producer.Idempotent)
	assert.Equal(t, sarama.WaitForAll, c.Producer.RequiredAcks)
	assert.Equal(t, 1, c.Net.MaxOpenRequests)
	assert.False(t, c.Consumer.Offsets.AutoCommit.Enable)
	assert.Equal(t, "like-relay", c.ClientID)
}

func TestNewSaramaConfigBadVersion(t *testing.T) {
	_, err := newSaramaConfig(config.KafkaConfig{Version: "not-a-version"})
	assert.Error(t, err)
}
