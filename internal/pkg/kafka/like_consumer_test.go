package kafka

import (
	"LikeRelay/internal/model"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	ctx     context.Context
	mu      sync.Mutex
	marked  []int64
	commits int
}

func (f *fakeSession) Claims() map[string][]int32 { return nil }
func (f *fakeSession) MemberID() string           { return "member-1" }
func (f *fakeSession) GenerationID() int32        { return 1 }
func (f *fakeSession) MarkOffset(string, int32, int64, string) {
}
func (f *fakeSession) ResetOffset(string, int32, int64, string) {
}
func (f *fakeSession) Commit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits++
}
func (f *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, msg.Offset)
}
func (f *fakeSession) Context() context.Context { return f.ctx }

type fakeClaim struct {
	msgs chan *sarama.ConsumerMessage
}

func (f *fakeClaim) Topic() string                            { return "like-events" }
func (f *fakeClaim) Partition() int32                         { return 0 }
func (f *fakeClaim) InitialOffset() int64                     { return 0 }
func (f *fakeClaim) HighWaterMarkOffset() int64               { return int64(len(f.msgs)) }
func (f *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return f.msgs }

type recordingProcessor struct {
	seen   []*model.BrokerMessage
	failAt int64
	onCall func()
}

func (r *recordingProcessor) HandleMessage(_ context.Context, msg *model.BrokerMessage) error {
	r.seen = append(r.seen, msg)
	if r.onCall != nil {
		r.onCall()
	}
	if msg.Offset == r.failAt {
		return errors.New("dead letter unavailable")
	}
	return nil
}

func newClaim(n int) *fakeClaim {
	c := &fakeClaim{msgs: make(chan *sarama.ConsumerMessage, n)}
	for i := 0; i < n; i++ {
		c.msgs <- &sarama.ConsumerMessage{
			Topic:     "like-events",
			Partition: 0,
			Offset:    int64(i),
			Key:       []byte("1:1"),
			Value:     []byte(`{}`),
			Headers:   []*sarama.RecordHeader{{Key: []byte("event_id"), Value: []byte("e")}},
		}
	}
	close(c.msgs)
	return c
}

func TestConsumeClaimSequentialAndCommits(t *testing.T) {
	session := &fakeSession{ctx: context.Background()}
	proc := &recordingProcessor{failAt: -1}

	err := NewLikeEventsHandler(proc).ConsumeClaim(session, newClaim(3))
	require.NoError(t, err)

	require.Len(t, proc.seen, 3)
	for i, m := range proc.seen {
		assert.Equal(t, int64(i), m.Offset)
		assert.Equal(t, "e", m.Headers["event_id"])
		assert.Equal(t, []byte("1:1"), m.Key)
	}
	assert.Equal(t, []int64{0, 1, 2}, session.marked)
	assert.Equal(t, 3, session.commits)
}

func TestConsumeClaimUnsettledStopsWithoutMark(t *testing.T) {
	session := &fakeSession{ctx: context.Background()}
	proc := &recordingProcessor{failAt: 1}

	err := NewLikeEventsHandler(proc).ConsumeClaim(session, newClaim(3))
	assert.Error(t, err)

	assert.Len(t, proc.seen, 2)
	assert.Equal(t, []int64{0}, session.marked)
}

func TestConsumeClaimCancelledDuringProcessing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	session := &fakeSession{ctx: ctx}
	proc := &recordingProcessor{failAt: -1, onCall: cancel}

	err := NewLikeEventsHandler(proc).ConsumeClaim(session, newClaim(2))
	require.NoError(t, err)

	assert.Len(t, proc.seen, 1)
	assert.Empty(t, session.marked)
	assert.Zero(t, session.commits)
}
