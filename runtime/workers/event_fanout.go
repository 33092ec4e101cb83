package workers

import (
	"conference-lab/contract"
	"conference-lab/domain/event"
	"context"
	"log/slog"
	"time"
)

// EventFanout delivers each committed registry change to every subscribed sink.
//
// Delivery is best effort: a sink that fails or exceeds sinkTimeout is logged
// and skipped, the remaining sinks still receive the change. A sink is never
// called while its previous Consume is still running, so each sees commits in
// sequence order. Fanout is not safe for concurrent use; Run is its only caller.
type EventFanout struct {
	log         *slog.Logger
	registry    contract.IRegistry
	committed   <-chan event.Committed
	sinkTimeout time.Duration
	// Consume calls that outlived sinkTimeout, by sink.
	overrun map[contract.EventSink]<-chan struct{}
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry,
	committed <-chan event.Committed, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:         log,
		registry:    registry,
		committed:   committed,
		sinkTimeout: sinkTimeout,
		overrun:     make(map[contract.EventSink]<-chan struct{}),
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case c, ok := <-w.committed:
			if !ok {
				return nil
			}
			w.Fanout(ctx, c)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping committed change fanout")
			return nil
		}
	}
}

// Fanout calls every sink once for c.
func (w *EventFanout) Fanout(ctx context.Context, c event.Committed) {
	for _, sink := range w.registry.Sinks() {
		w.deliver(ctx, sink, c)
	}
}

func (w *EventFanout) deliver(ctx context.Context, sink contract.EventSink, c event.Committed) {
	if !w.settle(ctx, sink) {
		w.log.Warn("Sink still busy with an earlier change, skipping", "seq", c.Seq, "kind", c.Event.Kind())
		return
	}

	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()

	var err error
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		err = sink.Consume(sinkCtx, c)
	}()

	select {
	case <-finished:
		if err != nil {
			w.log.Warn("Sink failed to consume change", "seq", c.Seq, "kind", c.Event.Kind(), "error", err)
		}
	case <-sinkCtx.Done():
		w.overrun[sink] = finished
		w.log.Warn("Sink timed out", "seq", c.Seq, "kind", c.Event.Kind(), "timeout", w.sinkTimeout)
	}
}

// settle waits, at most sinkTimeout, for an overrunning Consume of sink to
// return. It reports whether the sink is free to take the next change.
func (w *EventFanout) settle(ctx context.Context, sink contract.EventSink) bool {
	finished, ok := w.overrun[sink]
	if !ok {
		return true
	}

	timer := time.NewTimer(w.sinkTimeout)
	defer timer.Stop()
	select {
	case <-finished:
		delete(w.overrun, sink)
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}
