package kafka

import (
	log "log/slog"

	"github.com/IBM/sarama"
)

type LikeEventsHandler struct {
	processor MessageProcessor
}

func NewLikeEventsHandler(processor MessageProcessor) *LikeEventsHandler {
	return &LikeEventsHandler{processor: processor}
}

func (s *LikeEventsHandler) Setup(session sarama.ConsumerGroupSession) error {
	log.Info("like events consumer setup", "member", session.MemberID(), "claims", session.Claims())
	return nil
}

func (s *LikeEventsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("like events consumer cleanup")
	return nil
}

func (s *LikeEventsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("like events consume claim", "topic", claim.Topic(), "partition", claim.Partition(),
		"initial_offset", claim.InitialOffset())
	return pullMessageSequential(session, claim, s.processor)
}
