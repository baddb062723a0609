package kafka

import (
	"LikeRelay/internal/model"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// MessageProcessor 处理一条消息
// 返回 nil 表示消息已经落定 (成功或已进入死信)，可以提交 offset
type MessageProcessor interface {
	HandleMessage(ctx context.Context, msg *model.BrokerMessage) error
}

// pullMessageSequential 逐条处理分区内的消息，保证同一分区内的处理顺序
// 消息未落定时不提交 offset 并结束本次 claim，由下一轮会话重新投递
func pullMessageSequential(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim, processor MessageProcessor) error {
	ctx := session.Context()
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			err := processor.HandleMessage(ctx, toBrokerMessage(msg))
			if ctx.Err() != nil {
				// 关闭或再均衡中，放弃当前消息
				return nil
			}
			if err != nil {
				log.Error("message not settled, offset left uncommitted",
					"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "err", err)
				return err
			}
			session.MarkMessage(msg, "")
			session.Commit()
		case <-ctx.Done():
			return nil
		}
	}
}

// toBrokerMessage 转成与客户端无关的结构
func toBrokerMessage(msg *sarama.ConsumerMessage) *model.BrokerMessage {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		if h == nil {
			continue
		}
		headers[string(h.Key)] = string(h.Value)
	}
	return &model.BrokerMessage{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
	}
}
