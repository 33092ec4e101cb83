package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	LogLevel         string        `env:"LOG_LEVEL,default=INFO"`
	BufferSize       int           `env:"BUFFER_SIZE,default=256"`
	SinkTimeout      time.Duration `env:"SINK_TIMEOUT,default=2s"`
	RestartInterval  time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricInterval   time.Duration `env:"METRIC_INTERVAL,default=30s"`
	StrictInvariants bool          `env:"STRICT_INVARIANTS,default=false"`
	JournalEnabled   bool          `env:"JOURNAL_ENABLED,default=true"`
	ScriptPath       string        `env:"SCRIPT_PATH"`
	Colours          bool          `env:"COLOURS,default=true"`
	DebugPort        int           `env:"DEBUG_PORT,default=0"`
}

// Validate reports settings that would stall or spin the runtime.
func (c Config) Validate() error {
	var problems []string
	if c.BufferSize < 1 {
		problems = append(problems, "BUFFER_SIZE must be at least 1")
	}
	if c.SinkTimeout <= 0 {
		problems = append(problems, "SINK_TIMEOUT must be positive")
	}
	if c.RestartInterval <= 0 {
		problems = append(problems, "RESTART_INTERVAL must be positive")
	}
	if c.MetricInterval <= 0 {
		problems = append(problems, "METRIC_INTERVAL must be positive")
	}
	if c.DebugPort < 0 || c.DebugPort > 65535 {
		problems = append(problems, "DEBUG_PORT must be a valid port, 0 disables the inspector")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, ", "))
	}
	return nil
}
