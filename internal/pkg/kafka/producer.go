package kafka

import (
	"LikeRelay/internal/api/config"
	"LikeRelay/internal/model"
	"LikeRelay/internal/pkg/consts"
	"context"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// NewSyncProducer 创建幂等同步生产者
func NewSyncProducer(cfg config.KafkaConfig) (sarama.SyncProducer, error) {
	saramaCfg, err := newSaramaConfig(cfg)
	if err != nil {
		return nil, err
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, errors.Wrap(err, "create kafka producer")
	}
	log.Info("Kafka producer connected", "brokers", cfg.Brokers)
	return producer, nil
}

// Producer 点赞事件与死信的发送端
type Producer struct {
	producer     sarama.SyncProducer
	topic        string
	dlqTopic     string
	partitionKey string
}

func NewProducer(producer sarama.SyncProducer, cfg config.KafkaLikeConsumer) *Producer {
	return &Producer{
		producer:     producer,
		topic:        cfg.Topic,
		dlqTopic:     cfg.DLQTopic,
		partitionKey: cfg.PartitionKey,
	}
}

// messageKey 默认按 (post_id, user_id) 分区，同一用户对同一帖子的事件保持顺序
func (p *Producer) messageKey(evt *model.LikeEventMessage) string {
	if p.partitionKey == consts.PartitionKeyEventID {
		return evt.EventID
	}
	return evt.PairKey()
}

// PublishLikeEvent 写入点赞事件 topic，broker 确认后返回
func (p *Producer) PublishLikeEvent(ctx context.Context, evt *model.LikeEventMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return errors.Wrap(err, "marshal like event")
	}

	msg := &sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.StringEncoder(p.messageKey(evt)),
		Value:   sarama.ByteEncoder(body),
		Headers: toRecordHeaders(evt.Headers()),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return errors.Wrapf(err, "publish like event %s", evt.EventID)
	}

	log.DebugContext(ctx, "like event published",
		"topic", p.topic, "partition", partition, "offset", offset, "action", evt.Action)
	return nil
}

// SendToDeadLetter 原始消息体、错误描述与时间戳写入死信 topic，key 与 header 保持不变
func (p *Producer) SendToDeadLetter(ctx context.Context, msg *model.BrokerMessage, cause error) error {
	reason := "unknown error"
	if cause != nil {
		reason = cause.Error()
	}
	body, err := json.Marshal(&model.DeadLetter{
		OriginalMessage: string(msg.Value),
		Error:           reason,
		Timestamp:       time.Now().UTC(),
	})
	if err != nil {
		return errors.Wrap(err, "marshal dead letter")
	}

	out := &sarama.ProducerMessage{
		Topic:   p.dlqTopic,
		Value:   sarama.ByteEncoder(body),
		Headers: toRecordHeaders(msg.Headers),
	}
	if len(msg.Key) > 0 {
		out.Key = sarama.ByteEncoder(msg.Key)
	}
	if _, _, err = p.producer.SendMessage(out); err != nil {
		return errors.Wrapf(err, "send to dead letter topic %s", p.dlqTopic)
	}

	log.WarnContext(ctx, "message moved to dead letter queue",
		"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "reason", reason)
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}

func toRecordHeaders(headers map[string]string) []sarama.RecordHeader {
	if len(headers) == 0 {
		return nil
	}
	out := make([]sarama.RecordHeader, 0, len(headers))
	for k, v := range headers {
		out = append(out, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	return out
}
