// Command roster replays a captured stream of conference events through a
// participant registry session and prints the resulting roster.
//
// Input is one JSON envelope per line ({"kind": ..., "payload": {...}}),
// read from SCRIPT_PATH or stdin.
package main

import (
	"conference-lab/contract"
	"conference-lab/internal"
	"conference-lab/repositories"
	"conference-lab/runtime"
	"conference-lab/runtime/workers"
	"conference-lab/sink"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const (
	timelineSubscriberID = "timeline"
	inspectEndpoint      = "/inspect"
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "roster terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run keeps every deferred cleanup inside a function that returns,
// main only translates the result into an exit code.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	color.Enable = config.Colours

	// 2. Input
	input, closeInput, err := openScript(config.ScriptPath)
	if err != nil {
		return exitConfig, err
	}
	defer closeInput()

	// 3. Session journal
	var journal contract.IJournal
	if config.JournalEnabled {
		j, err := repositories.OpenJournal(log)
		if err != nil {
			return exitRuntime, err
		}
		journal = j
		if config.DebugPort > 0 {
			url := fmt.Sprintf("http://localhost:%d%s", config.DebugPort, inspectEndpoint)
			log.Info("Debug journal inspector available", "url", url)
			j.StartInspector(config.DebugPort, inspectEndpoint)
		}
	}

	// 4. Session
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	orchestrator := runtime.NewOrchestrator(log, supervisor, runtime.NewRegistry(), journal, config)
	timeline := sink.NewTimeline(log)
	orchestrator.Subscribe(timelineSubscriberID, timeline)

	if err := orchestrator.Start(ctx); err != nil {
		return exitRuntime, fmt.Errorf("session failed to start: %w", err)
	}
	defer orchestrator.Stop()

	// 5. Feed the script
	stats, err := feed(ctx, input, orchestrator, log)
	if err != nil {
		return exitRuntime, err
	}
	if err := orchestrator.Sync(ctx); err != nil {
		return exitRuntime, fmt.Errorf("waiting for commits: %w", err)
	}

	// 6. Report
	out := os.Stdout
	renderRoster(out, orchestrator.Query())
	renderTimeline(out, waitTimeline(ctx, timeline, stats.accepted))
	fmt.Fprintf(out, "\n%d lines, %d accepted, %d rejected\n", stats.lines, stats.accepted, stats.rejected)

	if journal != nil {
		if err := crossCheck(ctx, out, orchestrator, stats.accepted); err != nil {
			return exitRuntime, err
		}
	}

	// The journal lives as long as the session, keep it open for the inspector
	if journal != nil && config.DebugPort > 0 {
		fmt.Fprintln(out, "\nsession kept open for the inspector, interrupt to exit")
		<-ctx.Done()
	}
	return exitOK, nil
}

func openScript(path string) (io.Reader, func(), error) {
	if path == "" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening script: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// waitTimeline gives the fanout a moment to deliver the last commits.
func waitTimeline(ctx context.Context, timeline *sink.Timeline, want int) []sink.Entry {
	deadline := time.Now().Add(2 * time.Second)
	for {
		entries := timeline.Entries()
		if len(entries) >= want || time.Now().After(deadline) || ctx.Err() != nil {
			return entries
		}
		time.Sleep(10 * time.Millisecond)
	}
}
