package main

import (
	"bufio"
	"conference-lab/domain/event"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type feedStats struct {
	lines    int
	accepted int
	rejected int
}

type submitter interface {
	Submit(e event.Event) (uint64, error)
}

// feed decodes every non-empty, non-comment line and submits it.
// Undecodable or malformed events are logged and counted, never fatal.
func feed(ctx context.Context, r io.Reader, dispatcher submitter, log *slog.Logger) (feedStats, error) {
	var stats feedStats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		evt, err := event.Decode([]byte(line))
		if err != nil {
			stats.rejected++
			log.Warn("Skipping undecodable line", "line", stats.lines, "error", err)
			continue
		}
		if _, err := dispatcher.Submit(evt); err != nil {
			stats.rejected++
			log.Warn("Skipping rejected event", "line", stats.lines, "kind", evt.Kind(), "error", err)
			continue
		}
		stats.accepted++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("reading script: %w", err)
	}
	return stats, nil
}
