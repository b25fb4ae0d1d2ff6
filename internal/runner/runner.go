// Package runner ties data collection, signal generation, simulation and
// persistence together for one or more symbols.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"SignalReplay/internal/backtest"
	"SignalReplay/internal/collector"
	"SignalReplay/internal/metrics"
	"SignalReplay/internal/model"
	"SignalReplay/internal/recorder"
	"SignalReplay/internal/report"
	"SignalReplay/internal/strategy"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultLookbackDays = 365
	DefaultConcurrency  = 4
)

// Runner executes backtests. All fields except Recorder are required.
type Runner struct {
	Collector    *collector.Collector
	Source       strategy.Source
	Simulator    *backtest.Simulator
	Recorder     recorder.Recorder
	LookbackDays int
	Concurrency  int
	Log          zerolog.Logger
}

// RunSymbol fetches prices for symbol, generates signals and simulates them.
func (r *Runner) RunSymbol(ctx context.Context, symbol string) (*report.Report, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol")
	}
	started := time.Now()

	days := r.LookbackDays
	if days <= 0 {
		days = DefaultLookbackDays
	}
	series, err := r.Collector.Collect(ctx, symbol, days)
	if err != nil {
		metrics.RunsTotal.WithLabelValues(symbol, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("collect %s: %w", symbol, err)
	}

	signals, err := r.Source.Generate(series.Points)
	if err != nil {
		metrics.RunsTotal.WithLabelValues(symbol, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("generate signals for %s: %w", symbol, err)
	}

	return r.simulate(ctx, symbol, r.Collector.Fetcher.Name(), started, series.Points, signals)
}

// Replay simulates caller-provided series without touching a fetcher.
func (r *Runner) Replay(ctx context.Context, symbol string, prices []model.PricePoint, signals []model.SignalPoint) (*report.Report, error) {
	return r.simulate(ctx, strings.ToUpper(strings.TrimSpace(symbol)), "replay", time.Now(), prices, signals)
}

func (r *Runner) simulate(ctx context.Context, symbol, provider string, started time.Time,
	prices []model.PricePoint, signals []model.SignalPoint) (*report.Report, error) {
	res, err := r.Simulator.Simulate(signals, prices)
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, backtest.ErrInvalidInput) {
			outcome = metrics.OutcomeInvalid
		}
		metrics.RunsTotal.WithLabelValues(symbol, outcome).Inc()
		return nil, fmt.Errorf("simulate %s: %w", symbol, err)
	}

	rep := &report.Report{
		RunID:     uuid.NewString(),
		Symbol:    symbol,
		Source:    r.sourceName(),
		Provider:  provider,
		StartedAt: started.UTC(),
		Duration:  time.Since(started),
		Result:    res,
	}
	metrics.ObserveResult(symbol, res, rep.Duration)

	if r.Recorder != nil {
		if err := r.Recorder.RecordRun(ctx, rep); err != nil {
			r.Log.Error().Err(err).Str("symbol", symbol).Str("run_id", rep.RunID).Msg("failed to record run")
		}
	}

	ev := r.Log.Info().Str("symbol", symbol).Str("run_id", rep.RunID).
		Int("samples", len(res.Equity)).Int("trades", len(res.Trades))
	if !res.Empty() {
		ev = ev.Float64("total_return_pct", res.Metrics.TotalReturnPct).
			Float64("max_drawdown_pct", res.Metrics.MaxDrawdownPct)
	}
	ev.Dur("took", rep.Duration).Msg("backtest complete")
	return rep, nil
}

func (r *Runner) sourceName() string {
	if r.Source == nil {
		return "external"
	}
	return r.Source.Name()
}

// RunAll runs every symbol with bounded concurrency. Reports are returned
// in input order; the first failure cancels the remaining runs.
func (r *Runner) RunAll(ctx context.Context, symbols []string) ([]*report.Report, error) {
	out := make([]*report.Report, len(symbols))
	limit := r.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, sym := range symbols {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := r.RunSymbol(gctx, sym)
			if err != nil {
				return err
			}
			out[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
