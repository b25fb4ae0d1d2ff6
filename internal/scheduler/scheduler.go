package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"SignalReplay/internal/notifier"
	"SignalReplay/internal/recorder"
	"SignalReplay/internal/report"
	"SignalReplay/internal/runner"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// recentRuns is the number of runs listed by /runs.
const recentRuns = 10

// Scheduler re-runs the configured backtests on a cron and answers chat
// commands.
type Scheduler struct {
	Cron       *cron.Cron
	Runner     *runner.Runner
	Notifier   *notifier.TelegramNotifier
	Recorder   recorder.Recorder
	Symbols    []string
	ResultsDir string
	Log        zerolog.Logger
	Ctx        context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, r *runner.Runner, tn *notifier.TelegramNotifier, rec recorder.Recorder, symbols []string, log zerolog.Logger) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   r,
		Notifier: tn,
		Recorder: rec,
		Symbols:  symbols,
		Log:      log,
		Ctx:      ctx,
	}
}

// Register adds the backtest task on backtestCron (six fields, seconds first).
func (s *Scheduler) Register(backtestCron string) error {
	if _, err := s.Cron.AddFunc(backtestCron, s.backtestTask); err != nil {
		return fmt.Errorf("register backtest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info().Msg("scheduler stopped")
}

// RunNow executes the backtest task immediately (RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.backtestTask()
}

func (s *Scheduler) backtestTask() {
	s.Log.Info().Strs("symbols", s.Symbols).Msg("running scheduled backtests")
	started := time.Now()
	reports, err := s.Runner.RunAll(s.Ctx, s.Symbols)
	if err != nil {
		s.Log.Error().Err(err).Msg("scheduled backtests failed")
		s.trySend(fmt.Sprintf("❌ Scheduled backtests failed: %v", err))
		return
	}
	s.saveReports(reports)
	s.trySend(notifier.FormatSummary(reports, time.Since(started)))
}

func (s *Scheduler) saveReports(reports []*report.Report) {
	if s.ResultsDir == "" {
		return
	}
	for _, r := range reports {
		path := filepath.Join(s.ResultsDir, report.FileName(r))
		if err := report.Save(path, r); err != nil {
			s.Log.Error().Err(err).Str("path", path).Msg("save report")
		}
	}
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText()
	}
	// Telegram appends @botname to commands in groups.
	name, _, _ := strings.Cut(fields[0], "@")
	arg := ""
	if len(fields) > 1 {
		arg = strings.ToUpper(fields[1])
	}

	switch name {
	case "/backtest":
		if arg == "" {
			return "Usage: /backtest &lt;SYMBOL&gt;"
		}
		rep, err := s.Runner.RunSymbol(ctx, arg)
		if err != nil {
			return fmt.Sprintf("❌ Backtest %s failed: %v", arg, err)
		}
		s.saveReports([]*report.Report{rep})
		return notifier.FormatRunReport(rep)
	case "/last":
		if arg == "" {
			return "Usage: /last &lt;SYMBOL&gt;"
		}
		sum, err := s.Recorder.LatestRun(ctx, arg)
		if errors.Is(err, recorder.ErrNotFound) {
			return fmt.Sprintf("No runs recorded for %s.", arg)
		}
		if err != nil {
			return fmt.Sprintf("❌ Lookup failed: %v", err)
		}
		return notifier.FormatRunSummary(*sum)
	case "/runs":
		runs, err := s.Recorder.ListRuns(ctx, recentRuns)
		if err != nil {
			return fmt.Sprintf("❌ Lookup failed: %v", err)
		}
		return notifier.FormatRunList(runs)
	default:
		return notifier.HelpText()
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Log.Error().Err(err).Msg("send notification")
	}
}
