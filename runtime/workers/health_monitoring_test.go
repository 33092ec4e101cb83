package workers

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type fixedStats struct {
	depth   int
	applied uint64
}

func (s fixedStats) QueueDepth() int { return s.depth }
func (s fixedStats) Applied() uint64 { return s.applied }

func TestHealthMonitoringWorker_Reports_Samples(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	var mu sync.Mutex
	var samples []HealthSample
	worker := NewHealthMonitoringWorker(log, fixedStats{depth: 3, applied: 42}, 10*time.Millisecond,
		func(s HealthSample) {
			mu.Lock()
			defer mu.Unlock()
			samples = append(samples, s)
		})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	// Then samples are reported periodically
	req.Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(samples) >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	req.NoError(<-done)

	mu.Lock()
	defer mu.Unlock()
	req.Equal(3, samples[0].QueueDepth)
	req.Equal(uint64(42), samples[0].Applied)
	req.False(samples[0].At.IsZero())
}
