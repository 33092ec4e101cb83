package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// QueueStats is implemented by the dispatcher.
type QueueStats interface {
	QueueDepth() int
	Applied() uint64
}

// HealthSample is one periodic reading of the session health.
type HealthSample struct {
	QueueDepth int
	Applied    uint64
	Cpu        float64
	Ram        float32
	At         time.Time
}

// HealthMonitoringWorker periodically samples the dispatcher backlog and the
// process CPU and memory usage, logs it and hands it to an optional reporter.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	stats          QueueStats
	metricInterval time.Duration
	report         func(HealthSample)
	pid            int32
}

func NewHealthMonitoringWorker(log *slog.Logger, stats QueueStats,
	metricInterval time.Duration, report func(HealthSample)) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:            log,
		stats:          stats,
		metricInterval: metricInterval,
		report:         report,
		pid:            int32(os.Getpid()),
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(w.pid)
	if err != nil {
		w.log.Debug("Error while retrieving process, sampling queue only", "pid", w.pid, "err", err)
		p = nil
	}

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health sampling")
			return nil
		case <-ticker.C:
			w.sample(p)
		}
	}
}

func (w *HealthMonitoringWorker) sample(p *process.Process) {
	s := HealthSample{
		QueueDepth: w.stats.QueueDepth(),
		Applied:    w.stats.Applied(),
		At:         time.Now().UTC(),
	}
	if p != nil {
		if cpu, err := p.CPUPercent(); err == nil {
			s.Cpu = cpu
		} else {
			w.log.Debug("Error while finding process cpu usage", "err", err)
		}
		if ram, err := p.MemoryPercent(); err == nil {
			s.Ram = ram
		} else {
			w.log.Debug("Error while finding process ram usage", "err", err)
		}
	}
	w.log.Debug("Registry health",
		"queue_depth", s.QueueDepth, "applied_seq", s.Applied, "cpu", s.Cpu, "ram", s.Ram)
	if w.report != nil {
		w.report(s)
	}
}
