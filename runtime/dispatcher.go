// Package runtime handles event submission, ordering and propagation.
// It orchestrates the registry without containing transition rules.
package runtime

import (
	"conference-lab/domain"
	"conference-lab/domain/event"
	"conference-lab/errors"
	"conference-lab/projection"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Dispatcher serializes events from any number of producers into one total
// order and applies them to the registry on a single goroutine (Run).
// Readers get the last committed snapshot without locking.
type Dispatcher struct {
	log       *slog.Logger
	strict    bool
	committed chan<- event.Committed
	now       func() time.Time
	step      func(domain.Registry, event.Event) (domain.Registry, bool)
	check     func(domain.Registry) error

	mu        sync.Mutex
	queue     []event.Record
	submitted uint64
	applied   uint64
	closed    bool
	progress  chan struct{}
	wake      chan struct{}

	state atomic.Pointer[domain.Registry]
}

type DispatcherOption func(*Dispatcher)

// WithStrictInvariants makes an invariant violation panic instead of being repaired.
func WithStrictInvariants(strict bool) DispatcherOption {
	return func(d *Dispatcher) { d.strict = strict }
}

// WithCommittedChannel publishes every commit on ch. Publishing blocks the
// apply loop, never the producers.
func WithCommittedChannel(ch chan<- event.Committed) DispatcherOption {
	return func(d *Dispatcher) { d.committed = ch }
}

func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

func NewDispatcher(log *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		log:      log,
		now:      time.Now,
		step:     projection.Step,
		check:    domain.Check,
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	empty := domain.NewRegistry()
	d.state.Store(&empty)
	return d
}

// Submit validates e and appends it to the queue. It never blocks on the
// apply loop. Malformed events are rejected and never enqueued.
// The returned sequence number can be passed to Await.
func (d *Dispatcher) Submit(e event.Event) (uint64, error) {
	if err := event.Validate(e); err != nil {
		return 0, err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return 0, errors.ErrDispatcherStopped
	}
	d.submitted++
	rec := event.Record{Seq: d.submitted, ID: uuid.New(), At: d.now().UTC(), Event: e}
	d.queue = append(d.queue, rec)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
		// A wake-up is already pending
	}
	return rec.Seq, nil
}

// Run is the single consumer of the queue. It returns nil once ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		rec, ok := d.next()
		if !ok {
			select {
			case <-ctx.Done():
				d.log.Debug("Context done, stopping dispatcher")
				return nil
			case <-d.wake:
				continue
			}
		}
		d.apply(ctx, rec)
	}
}

func (d *Dispatcher) next() (event.Record, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return event.Record{}, false
	}
	rec := d.queue[0]
	d.queue[0] = event.Record{}
	d.queue = d.queue[1:]
	return rec, true
}

func (d *Dispatcher) apply(ctx context.Context, rec event.Record) {
	next, applied := d.step(d.Snapshot(), rec.Event)

	if err := d.check(next); err != nil {
		if d.strict {
			d.markApplied(rec.Seq)
			panic(fmt.Errorf("seq %d (%s): %w", rec.Seq, rec.Event.Kind(), err))
		}
		d.log.Error("Registry invariant repaired", "seq", rec.Seq, "kind", rec.Event.Kind(), "error", err)
		next = domain.Repair(next)
	}

	d.state.Store(&next)
	d.markApplied(rec.Seq)

	if !applied {
		id, local := event.Target(rec.Event)
		d.log.Debug("Event had no effect", "seq", rec.Seq, "kind", rec.Event.Kind(),
			"participant_id", id, "local", local)
	}

	if d.committed == nil {
		return
	}
	select {
	case d.committed <- event.Committed{Record: rec, Applied: applied, State: next}:
	case <-ctx.Done():
	}
}

func (d *Dispatcher) markApplied(seq uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applied = seq
	close(d.progress)
	d.progress = make(chan struct{})
}

// Snapshot returns the last committed registry.
func (d *Dispatcher) Snapshot() domain.Registry {
	return *d.state.Load()
}

// Await blocks until the event with sequence number seq is committed.
func (d *Dispatcher) Await(ctx context.Context, seq uint64) error {
	for {
		d.mu.Lock()
		if d.applied >= seq {
			d.mu.Unlock()
			return nil
		}
		if d.closed {
			d.mu.Unlock()
			return errors.ErrDispatcherStopped
		}
		progress := d.progress
		d.mu.Unlock()

		select {
		case <-progress:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Sync blocks until every event submitted before the call is committed.
func (d *Dispatcher) Sync(ctx context.Context) error {
	d.mu.Lock()
	seq := d.submitted
	d.mu.Unlock()
	return d.Await(ctx, seq)
}

// QueueDepth returns the number of submitted events not yet applied.
func (d *Dispatcher) QueueDepth() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Applied returns the sequence number of the last committed event.
func (d *Dispatcher) Applied() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.applied
}

// Close rejects further submissions and releases every Await caller.
// Pending events are discarded with the session.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.queue = nil
	close(d.progress)
	d.progress = make(chan struct{})
}
