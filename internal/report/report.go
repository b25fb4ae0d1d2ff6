// Package report describes one completed backtest run and its JSON form.
package report

import (
	"time"

	"SignalReplay/internal/backtest"
)

// Report is a full backtest run: identification plus the simulation result.
type Report struct {
	RunID     string           `json:"run_id"`
	Symbol    string           `json:"symbol"`
	Source    string           `json:"signal_source"`
	Provider  string           `json:"data_provider"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration_ns"`
	Result    *backtest.Result `json:"result"`
}

// Summary is the run without its trade log and equity curve.
type Summary struct {
	RunID          string            `json:"run_id"`
	Symbol         string            `json:"symbol"`
	Source         string            `json:"signal_source"`
	Provider       string            `json:"data_provider"`
	StartedAt      time.Time         `json:"started_at"`
	Duration       time.Duration     `json:"duration_ns"`
	InitialCapital float64           `json:"initial_capital"`
	FeeRate        float64           `json:"fee_rate"`
	Samples        int               `json:"samples"`
	Empty          bool              `json:"empty"`
	Metrics        *backtest.Metrics `json:"metrics,omitempty"`
}

// Summary drops the per-sample data.
func (r *Report) Summary() Summary {
	s := Summary{
		RunID:     r.RunID,
		Symbol:    r.Symbol,
		Source:    r.Source,
		Provider:  r.Provider,
		StartedAt: r.StartedAt,
		Duration:  r.Duration,
		Empty:     true,
	}
	if r.Result == nil {
		return s
	}
	s.InitialCapital = r.Result.Config.InitialCapital
	s.FeeRate = r.Result.Config.FeeRate
	s.Samples = len(r.Result.Equity)
	s.Empty = r.Result.Empty()
	s.Metrics = r.Result.Metrics
	return s
}
