package statemachine

import (
	"LikeRelay/internal/model"
	"fmt"
)

type LikeStateMachine = StateMachine[model.LikeStatus, model.LikeStatusEvent, model.Like]

type LikeHandler = Handler[model.LikeStatus, model.LikeStatusEvent, model.Like]

// SetLikeStatus 写入目标状态，进入 RETRYING 时 retry_count + 1
var SetLikeStatus LikeHandler = HandlerFunc[model.LikeStatus, model.LikeStatusEvent, model.Like](
	func(from, to model.LikeStatus, event model.LikeStatusEvent, like *model.Like) error {
		if like == nil {
			return fmt.Errorf("%w: event %s from %s to %s", ErrMissingEntity, event, from, to)
		}
		like.Status = to
		if to == model.LikeStatusRetrying {
			like.RetryCount++
		}
		return nil
	},
)

func likeTransition(from, to model.LikeStatus, event model.LikeStatusEvent) Transition[model.LikeStatus, model.LikeStatusEvent, model.Like] {
	return Transition[model.LikeStatus, model.LikeStatusEvent, model.Like]{
		From:     from,
		To:       to,
		Event:    event,
		Handlers: []LikeHandler{SetLikeStatus},
	}
}

// LikeTransitions SUCCESS 与 FAILED 为终态
func LikeTransitions() []Transition[model.LikeStatus, model.LikeStatusEvent, model.Like] {
	return []Transition[model.LikeStatus, model.LikeStatusEvent, model.Like]{
		likeTransition(model.LikeStatusPending, model.LikeStatusRetrying, model.LikeEventSetRetrying),
		likeTransition(model.LikeStatusPending, model.LikeStatusSuccess, model.LikeEventSetSuccess),
		likeTransition(model.LikeStatusPending, model.LikeStatusFailed, model.LikeEventSetFailed),
		likeTransition(model.LikeStatusRetrying, model.LikeStatusSuccess, model.LikeEventSetSuccess),
		likeTransition(model.LikeStatusRetrying, model.LikeStatusFailed, model.LikeEventSetFailed),
		likeTransition(model.LikeStatusRetrying, model.LikeStatusRetrying, model.LikeEventSetRetrying),
	}
}

func NewLikeStateMachine() *LikeStateMachine {
	m := New[model.LikeStatus, model.LikeStatusEvent, model.Like]()
	if err := m.Register(LikeTransitions()...); err != nil {
		panic(err)
	}
	return m
}
