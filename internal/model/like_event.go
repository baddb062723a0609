package model

import (
	"LikeRelay/internal/pkg/consts"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

type LikeAction string

const (
	LikeActionLike   LikeAction = "LIKE"
	LikeActionUnlike LikeAction = "UNLIKE"
)

// ErrMalformedEvent 消息体无法解析或字段缺失，重放也不会成功
var ErrMalformedEvent = errors.New("malformed like event")

// LikeEventMessage 点赞/取消点赞意图，Kafka 消息体
type LikeEventMessage struct {
	EventID   string     `json:"event_id"`
	PostID    uint64     `json:"post_id"`
	UserID    uint64     `json:"user_id"`
	Action    LikeAction `json:"action"`
	Timestamp time.Time  `json:"timestamp"`
}

// PairKey (post_id, user_id) 分区键
func (m *LikeEventMessage) PairKey() string {
	return strconv.FormatUint(m.PostID, 10) + ":" + strconv.FormatUint(m.UserID, 10)
}

// Headers 与消息体镜像的字符串 header
func (m *LikeEventMessage) Headers() map[string]string {
	return map[string]string{
		consts.HeaderEventID: m.EventID,
		consts.HeaderPostID:  strconv.FormatUint(m.PostID, 10),
		consts.HeaderUserID:  strconv.FormatUint(m.UserID, 10),
	}
}

func (m *LikeEventMessage) Validate() error {
	if m.EventID == "" {
		return fmt.Errorf("%w: empty event_id", ErrMalformedEvent)
	}
	if m.PostID == 0 || m.UserID == 0 {
		return fmt.Errorf("%w: post_id and user_id are required", ErrMalformedEvent)
	}
	if m.Action != LikeActionLike && m.Action != LikeActionUnlike {
		return fmt.Errorf("%w: unknown action %q", ErrMalformedEvent, m.Action)
	}
	return nil
}

// ParseLikeEvent 解析并校验消息体
func ParseLikeEvent(value []byte) (*LikeEventMessage, error) {
	if len(value) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedEvent)
	}
	var evt LikeEventMessage
	if err := json.Unmarshal(value, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := evt.Validate(); err != nil {
		return nil, err
	}
	return &evt, nil
}

// BrokerMessage 与具体 MQ 客户端无关的原始消息
type BrokerMessage struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
}

// DeadLetter 死信消息体
type DeadLetter struct {
	OriginalMessage string    `json:"originalMessage"`
	Error           string    `json:"error"`
	Timestamp       time.Time `json:"timestamp"`
}
