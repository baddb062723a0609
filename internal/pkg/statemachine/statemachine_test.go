package statemachine

import (
	"LikeRelay/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeTransitionTable(t *testing.T) {
	m := NewLikeStateMachine()

	cases := []struct {
		from  model.LikeStatus
		event model.LikeStatusEvent
		to    model.LikeStatus
	}{
		{model.LikeStatusPending, model.LikeEventSetRetrying, model.LikeStatusRetrying},
		{model.LikeStatusPending, model.LikeEventSetSuccess, model.LikeStatusSuccess},
		{model.LikeStatusPending, model.LikeEventSetFailed, model.LikeStatusFailed},
		{model.LikeStatusRetrying, model.LikeEventSetSuccess, model.LikeStatusSuccess},
		{model.LikeStatusRetrying, model.LikeEventSetFailed, model.LikeStatusFailed},
		{model.LikeStatusRetrying, model.LikeEventSetRetrying, model.LikeStatusRetrying},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"/"+string(tc.event), func(t *testing.T) {
			like := &model.Like{Status: tc.from}
			to, err := m.Trigger(tc.from, tc.event, like)
			require.NoError(t, err)
			assert.Equal(t, tc.to, to)
			assert.Equal(t, tc.to, like.Status)
		})
	}
}

func TestTerminalStatesRejectEveryEvent(t *testing.T) {
	m := NewLikeStateMachine()
	events := []model.LikeStatusEvent{model.LikeEventSetRetrying, model.LikeEventSetSuccess, model.LikeEventSetFailed}

	for _, from := range []model.LikeStatus{model.LikeStatusSuccess, model.LikeStatusFailed} {
		for _, event := range events {
			like := &model.Like{EventID: "e1", Status: from, RetryCount: 2}
			before := *like

			_, err := m.Trigger(from, event, like)
			require.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, before, *like, "entity must not be mutated")
			assert.False(t, m.CanTrigger(from, event))
		}
	}
}

func TestRetryCountIncrementsOnlyOnRetrying(t *testing.T) {
	m := NewLikeStateMachine()
	like := &model.Like{Status: model.LikeStatusPending}

	sequence := []model.LikeStatusEvent{
		model.LikeEventSetRetrying,
		model.LikeEventSetRetrying,
		model.LikeEventSetRetrying,
		model.LikeEventSetSuccess,
	}
	for i, event := range sequence {
		_, err := m.Trigger(like.Status, event, like)
		require.NoError(t, err)
		if i < 3 {
			assert.Equal(t, i+1, like.RetryCount)
		}
	}

	assert.Equal(t, model.LikeStatusSuccess, like.Status)
	assert.Equal(t, 3, like.RetryCount)
}

func TestMissingEntity(t *testing.T) {
	m := NewLikeStateMachine()
	_, err := m.Trigger(model.LikeStatusPending, model.LikeEventSetSuccess, nil)
	assert.ErrorIs(t, err, ErrMissingEntity)
}

func TestHandlersRunInRegistrationOrder(t *testing.T) {
	type doc struct{ trail []string }
	m := New[string, string, doc]()

	record := func(name string) Handler[string, string, doc] {
		return HandlerFunc[string, string, doc](func(from, to, event string, d *doc) error {
			d.trail = append(d.trail, name)
			return nil
		})
	}
	require.NoError(t, m.Register(Transition[string, string, doc]{
		From: "draft", To: "published", Event: "publish",
		Handlers: []Handler[string, string, doc]{record("a"), record("b"), record("c")},
	}))

	d := &doc{}
	to, err := m.Trigger("draft", "publish", d)
	require.NoError(t, err)
	assert.Equal(t, "published", to)
	assert.Equal(t, []string{"a", "b", "c"}, d.trail)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	m := New[model.LikeStatus, model.LikeStatusEvent, model.Like]()
	require.NoError(t, m.Register(LikeTransitions()...))
	err := m.Register(LikeTransitions()[0])
	assert.ErrorIs(t, err, ErrDuplicateTransition)
}
