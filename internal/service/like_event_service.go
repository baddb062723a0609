package service

import (
	"LikeRelay/internal/model"
	"LikeRelay/internal/pkg/consts"
	"LikeRelay/internal/pkg/logger"
	"LikeRelay/internal/pkg/retry"
	"LikeRelay/internal/pkg/statemachine"
	"LikeRelay/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"runtime/debug"
	"time"
)

// EventProducer 点赞意图发布端
type EventProducer interface {
	PublishLikeEvent(ctx context.Context, evt *model.LikeEventMessage) error
}

// DeadLetterSink 死信发送端
type DeadLetterSink interface {
	SendToDeadLetter(ctx context.Context, msg *model.BrokerMessage, cause error) error
}

type LikeEventService interface {
	// HandleMessage 消费一条原始消息
	// 返回 nil 表示已落定 (成功、跳过或进入死信)；返回错误表示需要 broker 重新投递
	HandleMessage(ctx context.Context, msg *model.BrokerMessage) error
	// ProcessLikeEvent 幂等检查后带重试执行持久化，重试耗尽时返回最后一次错误
	ProcessLikeEvent(ctx context.Context, evt *model.LikeEventMessage) error
}

type likeEventServiceImpl struct {
	likeRepo repository.LikeRepo
	machine  *statemachine.LikeStateMachine
	retry    *retry.Controller
	dlq      DeadLetterSink
}

func NewLikeEventService(
	likeRepo repository.LikeRepo,
	machine *statemachine.LikeStateMachine,
	retryCtl *retry.Controller,
	dlq DeadLetterSink,
) LikeEventService {
	return &likeEventServiceImpl{
		likeRepo: likeRepo,
		machine:  machine,
		retry:    retryCtl,
		dlq:      dlq,
	}
}

func (s *likeEventServiceImpl) HandleMessage(ctx context.Context, msg *model.BrokerMessage) (err error) {
	if id := msg.Headers[consts.HeaderEventID]; id != "" {
		ctx = logger.WithEventID(ctx, id)
	}
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "panic while handling like event",
				"panic", r, "stack", string(debug.Stack()))
			err = s.deadLetter(ctx, msg, fmt.Errorf("panic: %v", r))
		}
	}()

	evt, err := model.ParseLikeEvent(msg.Value)
	if err != nil {
		log.WarnContext(ctx, "malformed like event", "offset", msg.Offset, "err", err)
		return s.deadLetter(ctx, msg, err)
	}
	ctx = logger.WithEventID(ctx, evt.EventID)

	if err = s.ProcessLikeEvent(ctx, evt); err != nil {
		if ctx.Err() != nil {
			log.WarnContext(ctx, "like event abandoned on shutdown", "err", err)
			return ctx.Err()
		}
		s.markFailed(ctx, evt)
		return s.deadLetter(ctx, msg, err)
	}
	return nil
}

func (s *likeEventServiceImpl) ProcessLikeEvent(ctx context.Context, evt *model.LikeEventMessage) error {
	existing, err := s.likeRepo.FindLikeByEventID(ctx, evt.EventID)
	if err != nil {
		// 查询失败不影响后续流程，持久化函数内部会再次查询
		log.WarnContext(ctx, "idempotency check failed", "err", err)
	}
	if existing != nil && existing.Status == model.LikeStatusSuccess {
		log.InfoContext(ctx, "like event already applied, skip", "post_id", evt.PostID, "user_id", evt.UserID)
		return nil
	}

	label := fmt.Sprintf("like-event %s %s", evt.Action, evt.EventID)
	return s.retry.Execute(ctx, label,
		func() error { return s.applyOnce(ctx, evt) },
		func(err error, attempt int, next time.Duration) { s.markRetrying(ctx, evt) },
	)
}

// applyOnce 单次尝试，panic 视为可重试错误，非法迁移视为不可重试
func (s *likeEventServiceImpl) applyOnce(ctx context.Context, evt *model.LikeEventMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in durable write: %v", r)
		}
	}()

	switch evt.Action {
	case model.LikeActionLike:
		err = s.applyLike(ctx, evt)
	case model.LikeActionUnlike:
		err = s.applyUnlike(ctx, evt)
	default:
		err = fmt.Errorf("%w: unknown action %q", model.ErrMalformedEvent, evt.Action)
	}
	if errors.Is(err, statemachine.ErrInvalidTransition) || errors.Is(err, model.ErrMalformedEvent) {
		return retry.Permanent(err)
	}
	return err
}

func (s *likeEventServiceImpl) applyLike(ctx context.Context, evt *model.LikeEventMessage) error {
	if err := s.likeRepo.EnsurePostExists(ctx, evt.PostID); err != nil {
		return err
	}
	like, err := s.findOrCreateLike(ctx, evt)
	if err != nil {
		return err
	}

	return s.likeRepo.Transaction(ctx, func(tx repository.LikeRepo) error {
		if like.Status != model.LikeStatusSuccess {
			next := *like
			if _, err := s.machine.Trigger(like.Status, model.LikeEventSetSuccess, &next); err != nil {
				return err
			}
			if err := tx.UpdateLike(ctx, &next); err != nil {
				return err
			}
			*like = next
		}
		count, err := tx.RefreshPostLikeCount(ctx, evt.PostID)
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "like applied", "post_id", evt.PostID, "user_id", evt.UserID, "like_count", count)
		return nil
	})
}

func (s *likeEventServiceImpl) applyUnlike(ctx context.Context, evt *model.LikeEventMessage) error {
	if err := s.likeRepo.EnsurePostExists(ctx, evt.PostID); err != nil {
		return err
	}
	return s.likeRepo.Transaction(ctx, func(tx repository.LikeRepo) error {
		deleted, err := tx.DeleteLike(ctx, evt.PostID, evt.UserID)
		if err != nil {
			return err
		}
		count, err := tx.RefreshPostLikeCount(ctx, evt.PostID)
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "unlike applied",
			"post_id", evt.PostID, "user_id", evt.UserID, "deleted", deleted, "like_count", count)
		return nil
	})
}

// findOrCreateLike 先按 event_id 查找，不存在则创建 PENDING 行
// (post_id, user_id) 已被其他事件占用时沿用那一行
func (s *likeEventServiceImpl) findOrCreateLike(ctx context.Context, evt *model.LikeEventMessage) (*model.Like, error) {
	like, err := s.likeRepo.FindLikeByEventID(ctx, evt.EventID)
	if err != nil || like != nil {
		return like, err
	}

	like = &model.Like{
		EventID: evt.EventID,
		PostID:  evt.PostID,
		UserID:  evt.UserID,
		Status:  model.LikeStatusPending,
	}
	err = s.likeRepo.CreateLike(ctx, like)
	if err == nil {
		return like, nil
	}
	if !errors.Is(err, repository.ErrLikeExists) {
		return nil, err
	}

	holder, err := s.likeRepo.FindLikeByPostAndUser(ctx, evt.PostID, evt.UserID)
	if err != nil {
		return nil, err
	}
	if holder == nil {
		return nil, errors.New("like row vanished after unique conflict")
	}
	log.InfoContext(ctx, "pair already held by another event, adopting it",
		"holder_event_id", holder.EventID, "holder_status", holder.Status)
	return holder, nil
}

// markRetrying 重试等待前将本事件的行迁移到 RETRYING
func (s *likeEventServiceImpl) markRetrying(ctx context.Context, evt *model.LikeEventMessage) {
	like, err := s.likeRepo.FindLikeByEventID(ctx, evt.EventID)
	if err != nil {
		log.WarnContext(ctx, "load like for retrying failed", "err", err)
		return
	}
	if like == nil {
		return
	}
	if _, err = s.machine.Trigger(like.Status, model.LikeEventSetRetrying, like); err != nil {
		log.WarnContext(ctx, "cannot mark like retrying", "status", like.Status, "err", err)
		return
	}
	if err = s.likeRepo.UpdateLike(ctx, like); err != nil {
		log.WarnContext(ctx, "persist retrying status failed", "err", err)
	}
}

// markFailed 重试耗尽后将本事件的行迁移到 FAILED，行不存在时在 (post_id, user_id) 空闲的前提下创建
func (s *likeEventServiceImpl) markFailed(ctx context.Context, evt *model.LikeEventMessage) {
	like, err := s.likeRepo.FindLikeByEventID(ctx, evt.EventID)
	if err != nil {
		log.ErrorContext(ctx, "load like for failure failed", "err", err)
		return
	}

	if like != nil {
		if _, err = s.machine.Trigger(like.Status, model.LikeEventSetFailed, like); err != nil {
			log.WarnContext(ctx, "cannot mark like failed", "status", like.Status, "err", err)
			return
		}
		if err = s.likeRepo.UpdateLike(ctx, like); err != nil {
			log.ErrorContext(ctx, "persist failed status failed", "err", err)
		}
		return
	}

	like = &model.Like{
		EventID: evt.EventID,
		PostID:  evt.PostID,
		UserID:  evt.UserID,
		Status:  model.LikeStatusPending,
	}
	if _, err = s.machine.Trigger(like.Status, model.LikeEventSetFailed, like); err != nil {
		log.ErrorContext(ctx, "cannot mark like failed", "err", err)
		return
	}
	err = s.likeRepo.CreateLike(ctx, like)
	if errors.Is(err, repository.ErrLikeExists) {
		log.InfoContext(ctx, "pair held by another event, failed record not stored")
		return
	}
	if err != nil {
		log.ErrorContext(ctx, "store failed like record failed", "err", err)
	}
}

func (s *likeEventServiceImpl) deadLetter(ctx context.Context, msg *model.BrokerMessage, cause error) error {
	if err := s.dlq.SendToDeadLetter(ctx, msg, cause); err != nil {
		log.ErrorContext(ctx, "dead letter publish failed", "cause", cause, "err", err)
		return err
	}
	return nil
}
