package sink

import (
	"conference-lab/contract"
	"conference-lab/domain/event"
	"context"
	"fmt"
	"log/slog"
)

// JournalSink appends every committed event to the session journal,
// no-ops included, so a replay walks the exact commit order.
type JournalSink struct {
	journal contract.IJournal
	log     *slog.Logger
}

func NewJournalSink(journal contract.IJournal, log *slog.Logger) JournalSink {
	return JournalSink{journal: journal, log: log}
}

func (s JournalSink) Consume(ctx context.Context, c event.Committed) error {
	if err := s.journal.Append(ctx, c.Record); err != nil {
		return fmt.Errorf("journal append seq %d: %w", c.Seq, err)
	}
	return nil
}
