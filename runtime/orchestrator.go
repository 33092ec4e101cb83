package runtime

import (
	"conference-lab/contract"
	"conference-lab/domain"
	"conference-lab/domain/event"
	"conference-lab/errors"
	"conference-lab/internal"
	"conference-lab/projection"
	"conference-lab/runtime/workers"
	"conference-lab/sink"
	"context"
	"log/slog"
	"sync"
)

const journalSubscriberID = "journal"

// Orchestrator owns one conference session: the dispatcher, the fanout of
// committed changes, health sampling and the optional session journal.
// Lifecycle: NewOrchestrator + Start (init, empty registry), Stop (teardown).
type Orchestrator struct {
	mu         sync.Mutex
	log        *slog.Logger
	supervisor contract.ISupervisor
	registry   contract.IRegistry
	journal    contract.IJournal
	dispatcher *Dispatcher
	committed  chan event.Committed
	config     internal.Config
	cancel     context.CancelFunc
	done       chan struct{}
	stopOnce   sync.Once
}

// NewOrchestrator wires a session. journal may be nil to run without one.
func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, journal contract.IJournal, config internal.Config) *Orchestrator {
	committed := make(chan event.Committed, config.BufferSize)
	return &Orchestrator{
		log:        log,
		supervisor: supervisor,
		registry:   registry,
		journal:    journal,
		committed:  committed,
		config:     config,
		dispatcher: NewDispatcher(log,
			WithStrictInvariants(config.StrictInvariants),
			WithCommittedChannel(committed)),
	}
}

// Start registers the session workers and runs them under the supervisor.
// It returns immediately; Stop tears the session down.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done != nil {
		return nil
	}

	if o.journal != nil {
		o.registry.Subscribe(journalSubscriberID, sink.NewJournalSink(o.journal, o.log))
	}

	o.supervisor.Add(
		o.dispatcher,
		workers.NewEventFanout(o.log, o.registry, o.committed, o.config.SinkTimeout),
		workers.NewHealthMonitoringWorker(o.log, o.dispatcher, o.config.MetricInterval, nil),
		workers.NewChannelCapacityWorker(o.log,
			[]workers.NamedChannel{{Name: "committed", Channel: o.committed}},
			o.config.MetricInterval, nil),
	)

	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		o.supervisor.Run(runCtx)
	}(o.done)

	o.log.Info("Conference session started", "journal", o.journal != nil,
		"strict_invariants", o.config.StrictInvariants)
	return nil
}

// Stop discards the session: pending events are dropped, workers stop and
// the journal is closed.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		o.log.Info("Requesting conference session teardown")
		o.dispatcher.Close()
		o.supervisor.Stop()

		o.mu.Lock()
		cancel, done := o.cancel, o.done
		o.mu.Unlock()
		if cancel != nil {
			cancel()
			<-done
		}

		if o.journal != nil {
			o.registry.Unsubscribe(journalSubscriberID)
			if err := o.journal.Close(); err != nil {
				o.log.Warn("Closing journal failed", "error", err)
			}
		}
		o.log.Info("Conference session stopped", "applied_seq", o.dispatcher.Applied())
	})
}

func (o *Orchestrator) Submit(e event.Event) (uint64, error) {
	return o.dispatcher.Submit(e)
}

func (o *Orchestrator) Await(ctx context.Context, seq uint64) error {
	return o.dispatcher.Await(ctx, seq)
}

func (o *Orchestrator) Sync(ctx context.Context) error {
	return o.dispatcher.Sync(ctx)
}

func (o *Orchestrator) Snapshot() domain.Registry {
	return o.dispatcher.Snapshot()
}

func (o *Orchestrator) Query() Query {
	return NewQuery(o.dispatcher)
}

// Subscribe registers a sink notified after every commit.
func (o *Orchestrator) Subscribe(subscriberID string, s contract.EventSink) {
	o.registry.Subscribe(subscriberID, s)
}

func (o *Orchestrator) Unsubscribe(subscriberID string) {
	o.registry.Unsubscribe(subscriberID)
}

// Replay rebuilds the registry from the session journal.
// Changes still in flight to the journal are not included.
func (o *Orchestrator) Replay(ctx context.Context) (domain.Registry, uint64, error) {
	if o.journal == nil {
		return domain.NewRegistry(), 0, errors.ErrJournalDisabled
	}
	return projection.Replay(ctx, o.journal)
}
