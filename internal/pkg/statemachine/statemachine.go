package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrMissingEntity       = errors.New("state machine handler called without an entity")
	ErrDuplicateTransition = errors.New("duplicate state transition")
)

// Handler 迁移命中后依次执行，可以原地修改 entity
type Handler[S, E comparable, T any] interface {
	Handle(from, to S, event E, entity *T) error
}

// HandlerFunc 函数适配为 Handler
type HandlerFunc[S, E comparable, T any] func(from, to S, event E, entity *T) error

func (f HandlerFunc[S, E, T]) Handle(from, to S, event E, entity *T) error {
	return f(from, to, event, entity)
}

type Transition[S, E comparable, T any] struct {
	From     S
	To       S
	Event    E
	Handlers []Handler[S, E, T]
}

type transitionKey[S, E comparable] struct {
	from  S
	event E
}

// StateMachine 以 (from, event) 为键的迁移表，注册后只读，可并发 Trigger
type StateMachine[S, E comparable, T any] struct {
	transitions map[transitionKey[S, E]]Transition[S, E, T]
}

func New[S, E comparable, T any]() *StateMachine[S, E, T] {
	return &StateMachine[S, E, T]{
		transitions: make(map[transitionKey[S, E]]Transition[S, E, T]),
	}
}

// Register 注册迁移，同一 (from, event) 只允许一条
func (m *StateMachine[S, E, T]) Register(transitions ...Transition[S, E, T]) error {
	for _, t := range transitions {
		key := transitionKey[S, E]{from: t.From, event: t.Event}
		if _, ok := m.transitions[key]; ok {
			return fmt.Errorf("%w: %v --%v-->", ErrDuplicateTransition, t.From, t.Event)
		}
		m.transitions[key] = t
	}
	return nil
}

// CanTrigger 是否存在 (from, event) 的迁移
func (m *StateMachine[S, E, T]) CanTrigger(from S, event E) bool {
	_, ok := m.transitions[transitionKey[S, E]{from: from, event: event}]
	return ok
}

// Trigger 执行迁移，返回目标状态
// 没有匹配的迁移时返回 ErrInvalidTransition，entity 不会被修改
func (m *StateMachine[S, E, T]) Trigger(from S, event E, entity *T) (S, error) {
	t, ok := m.transitions[transitionKey[S, E]{from: from, event: event}]
	if !ok {
		return from, fmt.Errorf("%w: no transition from %v on %v", ErrInvalidTransition, from, event)
	}
	for _, h := range t.Handlers {
		if err := h.Handle(t.From, t.To, event, entity); err != nil {
			return from, err
		}
	}
	return t.To, nil
}
