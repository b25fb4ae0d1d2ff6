package recorder

import (
	"context"
	"errors"

	"SignalReplay/internal/report"
)

// ErrNotFound is returned when no run matches a lookup.
var ErrNotFound = errors.New("run not found")

// Recorder persists backtest runs for later comparison.
type Recorder interface {
	// RecordRun stores the run summary together with its trade log and
	// equity curve.
	RecordRun(ctx context.Context, r *report.Report) error
	// LatestRun returns the most recent run for symbol.
	LatestRun(ctx context.Context, symbol string) (*report.Summary, error)
	// ListRuns returns up to limit runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]report.Summary, error)
	Close() error
}
