package sink

import (
	"conference-lab/domain/event"
	"context"
	"log/slog"
	"sync"
	"time"
)

// Entry is one line of the roster timeline.
type Entry struct {
	Seq           uint64
	Kind          event.Kind
	ParticipantID string
	Local         bool
	Applied       bool
	Count         int
	At            time.Time
}

// Timeline records a human readable history of the roster and logs each
// change that had an effect.
type Timeline struct {
	mu      sync.Mutex
	log     *slog.Logger
	entries []Entry
}

func NewTimeline(log *slog.Logger) *Timeline {
	return &Timeline{log: log}
}

func (t *Timeline) Consume(_ context.Context, c event.Committed) error {
	id, local := event.Target(c.Event)
	entry := Entry{
		Seq:           c.Seq,
		Kind:          c.Event.Kind(),
		ParticipantID: id,
		Local:         local,
		Applied:       c.Applied,
		Count:         c.State.Len(),
		At:            c.At,
	}

	t.mu.Lock()
	t.entries = append(t.entries, entry)
	t.mu.Unlock()

	if c.Applied {
		t.log.Info("Roster changed", "seq", c.Seq, "kind", entry.Kind,
			"participant_id", id, "count", entry.Count)
	}
	return nil
}

// Entries returns a copy of the timeline in commit order.
func (t *Timeline) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.entries...)
}
