package recorder

import (
	"context"

	"SignalReplay/internal/report"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ context.Context, _ *report.Report) error { return nil }
func (n *NoopRecorder) LatestRun(_ context.Context, _ string) (*report.Summary, error) {
	return nil, ErrNotFound
}
func (n *NoopRecorder) ListRuns(_ context.Context, _ int) ([]report.Summary, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                                { return nil }
