package e2e

import (
	"conference-lab/internal"
	"conference-lab/repositories"
	"conference-lab/runtime"
	"conference-lab/runtime/workers"
	"conference-lab/services"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseSessionSuite struct {
	suite.Suite
	Config       Config
	Orchestrator *runtime.Orchestrator
	Service      *services.ConferenceService
	cancel       context.CancelFunc
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSessionSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

// SetupTest starts a fresh conference session with an in-memory journal.
func (s *BaseSessionSuite) SetupTest() {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	config := internal.Config{
		BufferSize:       64,
		SinkTimeout:      time.Second,
		RestartInterval:  50 * time.Millisecond,
		MetricInterval:   time.Second,
		StrictInvariants: s.Config.StrictInvariants,
		JournalEnabled:   true,
	}
	journal, err := repositories.OpenJournal(log)
	s.Require().NoError(err)

	s.Orchestrator = runtime.NewOrchestrator(log,
		workers.NewSupervisor(log, config.RestartInterval), runtime.NewRegistry(), journal, config)
	s.Service = services.NewConferenceService(s.Orchestrator, log)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.Require().NoError(s.Orchestrator.Start(ctx))
}

// TearDownTest discards the session.
func (s *BaseSessionSuite) TearDownTest() {
	s.Orchestrator.Stop()
	s.cancel()
}

// Step runs fn as a named step, then waits for every submitted event to be
// committed before handing the step over to the assertions.
func (s *BaseSessionSuite) Step(name string, fn func()) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	fn()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Require().NoError(s.Orchestrator.Sync(ctx))

	if s.Config.DebugJSON {
		snapshot, err := json.MarshalIndent(s.Orchestrator.Snapshot(), "", "  ")
		s.Require().NoError(err)
		s.T().Log("SNAPSHOT:\n" + string(snapshot))
	}
}

// Submitted fails the step when a producer call was rejected.
func (s *BaseSessionSuite) Submitted(_ uint64, err error) {
	s.Require().NoError(err)
}
