package workers

import (
	"context"
	"log/slog"
	"reflect"
	"time"
)

// highWaterRatio is the fill ratio above which a channel is reported as saturated.
const highWaterRatio = 0.8

type NamedChannel struct {
	Name    string
	Channel any
}

type ChannelCapacity struct {
	Name     string
	Capacity int
	Length   int
}

// ChannelCapacityWorker periodically reports the current channel capacity and length.
// Reading len(channel) and cap(channel) is non-blocking, so this won't interfere
// with the dispatcher or the fanout.
type ChannelCapacityWorker struct {
	log            *slog.Logger
	channels       []NamedChannel
	metricInterval time.Duration
	report         func(ChannelCapacity)
}

func NewChannelCapacityWorker(log *slog.Logger, channels []NamedChannel,
	metricInterval time.Duration, report func(ChannelCapacity)) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log:            log,
		channels:       channels,
		metricInterval: metricInterval,
		report:         report,
	}
}

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping channel sampling")
			return nil
		case <-ticker.C:
			for _, c := range w.Sample() {
				w.publish(c)
			}
		}
	}
}

// Sample reads every channel once.
func (w *ChannelCapacityWorker) Sample() []ChannelCapacity {
	res := make([]ChannelCapacity, 0, len(w.channels))
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		// Verify if this is a channel
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		res = append(res, ChannelCapacity{Name: nc.Name, Capacity: v.Cap(), Length: v.Len()})
	}
	return res
}

func (w *ChannelCapacityWorker) publish(c ChannelCapacity) {
	if c.Capacity > 0 && float64(c.Length) >= highWaterRatio*float64(c.Capacity) {
		w.log.Warn("Channel almost full, sinks are lagging behind",
			"name", c.Name, "length", c.Length, "capacity", c.Capacity)
	} else {
		w.log.Debug("Channel capacity", "name", c.Name, "length", c.Length, "capacity", c.Capacity)
	}
	if w.report != nil {
		w.report(c)
	}
}
