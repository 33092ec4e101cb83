package workers

import (
	"conference-lab/contract"
	"conference-lab/domain"
	"conference-lab/domain/event"
	"conference-lab/mocks"
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func committedJoin(seq uint64, id string) event.Committed {
	return event.Committed{
		Record:  event.Record{Seq: seq, Event: event.ParticipantJoined{Participant: domain.Participant{ID: id}}},
		Applied: true,
	}
}

func TestEventFanout_Fanout(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockSink := mocks.NewMockEventSink(ctrl)
	mockSink1 := mocks.NewMockEventSink(ctrl)

	fanout := NewEventFanout(log, mockRegistry, nil, time.Second)
	c := committedJoin(1, "alice")

	// Given two sinks are subscribed
	mockRegistry.EXPECT().Sinks().Return([]contract.EventSink{mockSink, mockSink1}).Times(1)
	// Then both consume the change, in subscription order
	gomock.InOrder(
		mockSink.EXPECT().Consume(gomock.Any(), c).Return(nil).Times(1),
		mockSink1.EXPECT().Consume(gomock.Any(), c).Return(nil).Times(1),
	)

	// When a change is committed
	fanout.Fanout(context.Background(), c)
}

func TestEventFanout_Failing_Sink_Does_Not_Stop_Others(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRegistry := mocks.NewMockIRegistry(ctrl)
	failing := mocks.NewMockEventSink(ctrl)
	healthy := mocks.NewMockEventSink(ctrl)

	fanout := NewEventFanout(log, mockRegistry, nil, time.Second)

	mockRegistry.EXPECT().Sinks().Return([]contract.EventSink{failing, healthy})
	failing.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(errors.New("renderer gone"))
	healthy.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	fanout.Fanout(context.Background(), committedJoin(1, "alice"))
}

func TestEventFanout_SinkTimeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRegistry := mocks.NewMockIRegistry(ctrl)
	slow := mocks.NewMockEventSink(ctrl)
	fast := mocks.NewMockEventSink(ctrl)

	sinkTimeout := 20 * time.Millisecond
	fanout := NewEventFanout(log, mockRegistry, nil, sinkTimeout)

	mockRegistry.EXPECT().Sinks().Return([]contract.EventSink{slow, fast})
	// Given a sink slower than the timeout
	slow.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ event.Committed) error {
			<-ctx.Done()
			return ctx.Err()
		})
	fast.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	// When the change is delivered
	start := time.Now()
	fanout.Fanout(context.Background(), committedJoin(1, "alice"))

	// Then the slow sink is abandoned after the timeout
	req.Less(time.Since(start), 500*time.Millisecond)
}

// orderSink records the seqs it consumed. Consume for slowSeq takes delay and
// ignores the context, like a renderer stuck in a draw call.
type orderSink struct {
	mu      sync.Mutex
	seqs    []uint64
	slowSeq uint64
	delay   time.Duration
}

func (s *orderSink) Consume(_ context.Context, c event.Committed) error {
	if c.Seq == s.slowSeq {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqs = append(s.seqs, c.Seq)
	return nil
}

func (s *orderSink) Seqs() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.seqs)
}

func TestEventFanout_SinkTimeout_Keeps_Order(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRegistry := mocks.NewMockIRegistry(ctrl)

	// Given a sink whose first change outlives the timeout but finishes
	// within the grace given to the next delivery
	sink := &orderSink{slowSeq: 1, delay: 60 * time.Millisecond}
	fanout := NewEventFanout(log, mockRegistry, nil, 50*time.Millisecond)
	mockRegistry.EXPECT().Sinks().Return([]contract.EventSink{sink}).Times(3)

	// When three changes are fanned out
	for seq := uint64(1); seq <= 3; seq++ {
		fanout.Fanout(context.Background(), committedJoin(seq, "alice"))
	}

	// Then the sink saw them in commit order
	req.Equal([]uint64{1, 2, 3}, sink.Seqs())
}

func TestEventFanout_Busy_Sink_Is_Skipped_Not_Overlapped(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRegistry := mocks.NewMockIRegistry(ctrl)

	// Given a sink stuck far longer than the timeout on the first change
	sink := &orderSink{slowSeq: 1, delay: 200 * time.Millisecond}
	fanout := NewEventFanout(log, mockRegistry, nil, 10*time.Millisecond)
	mockRegistry.EXPECT().Sinks().Return([]contract.EventSink{sink}).Times(3)

	// When more changes follow while it is still busy
	for seq := uint64(1); seq <= 3; seq++ {
		fanout.Fanout(context.Background(), committedJoin(seq, "alice"))
	}

	// Then the later changes are dropped for that sink instead of overtaking
	req.Eventually(func() bool { return len(sink.Seqs()) > 0 }, time.Second, 5*time.Millisecond)
	req.Equal([]uint64{1}, sink.Seqs())

	// And once it has caught up it receives new changes again
	mockRegistry.EXPECT().Sinks().Return([]contract.EventSink{sink})
	fanout.Fanout(context.Background(), committedJoin(4, "alice"))
	req.Equal([]uint64{1, 4}, sink.Seqs())
}

func TestEventFanout_Run_Delivers_In_Order(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockSink := mocks.NewMockEventSink(ctrl)

	committed := make(chan event.Committed, 3)
	fanout := NewEventFanout(log, mockRegistry, committed, time.Second)

	var seqs []uint64
	mockRegistry.EXPECT().Sinks().Return([]contract.EventSink{mockSink}).Times(3)
	mockSink.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, c event.Committed) error {
			seqs = append(seqs, c.Seq)
			return nil
		}).Times(3)

	committed <- committedJoin(1, "a")
	committed <- committedJoin(2, "b")
	committed <- committedJoin(3, "c")
	close(committed)

	// When the channel is drained and closed, Run returns
	req.NoError(fanout.Run(context.Background()))
	req.Equal([]uint64{1, 2, 3}, seqs)
}

func TestEventFanout_Run_Stops_On_Context(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRegistry := mocks.NewMockIRegistry(ctrl)

	fanout := NewEventFanout(log, mockRegistry, make(chan event.Committed), time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req.NoError(fanout.Run(ctx))
}
