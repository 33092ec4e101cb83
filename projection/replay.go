package projection

import (
	"conference-lab/domain"
	"conference-lab/domain/event"
	"context"
	"fmt"
)

const replayPageSize = 200

// EventLog is an ordered source of committed records.
type EventLog interface {
	ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]event.Record, error)
}

// ReplayOptions bounds a replay.
type ReplayOptions struct {
	AfterSeq uint64
	UntilSeq uint64
}

// Replay rebuilds a registry by applying every record of log in order.
// It returns the registry and the last sequence number applied.
func Replay(ctx context.Context, log EventLog) (domain.Registry, uint64, error) {
	return ReplayWith(ctx, log, domain.NewRegistry(), ReplayOptions{})
}

// ReplayWith applies records after options.AfterSeq on top of state,
// stopping after options.UntilSeq when it is set.
func ReplayWith(ctx context.Context, log EventLog, state domain.Registry, options ReplayOptions) (domain.Registry, uint64, error) {
	if log == nil {
		return state, options.AfterSeq, fmt.Errorf("event log is not configured")
	}
	lastSeq := options.AfterSeq
	for {
		if err := ctx.Err(); err != nil {
			return state, lastSeq, err
		}
		records, err := log.ListEvents(ctx, lastSeq, replayPageSize)
		if err != nil {
			return state, lastSeq, err
		}
		if len(records) == 0 {
			return state, lastSeq, nil
		}
		for _, rec := range records {
			if options.UntilSeq > 0 && rec.Seq > options.UntilSeq {
				return state, lastSeq, nil
			}
			lastSeq = rec.Seq
			state = Apply(state, rec.Event)
		}
	}
}
