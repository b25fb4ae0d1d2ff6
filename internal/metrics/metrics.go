package metrics

import (
	"net/http"
	"time"

	"SignalReplay/internal/backtest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtest_runs_total", Help: "Backtest runs by outcome"},
		[]string{"symbol", "outcome"},
	)
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtest_trades_total", Help: "Simulated trades"},
		[]string{"symbol", "action"},
	)
	TotalReturn = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "backtest_total_return_pct", Help: "Total return of the latest run"},
		[]string{"symbol"},
	)
	MaxDrawdown = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "backtest_max_drawdown_pct", Help: "Max drawdown of the latest run"},
		[]string{"symbol"},
	)
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "backtest_duration_seconds", Help: "Wall time of a backtest run", Buckets: prometheus.DefBuckets},
	)
)

// Outcomes recorded on RunsTotal.
const (
	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

func init() {
	prometheus.MustRegister(RunsTotal, TradesTotal, TotalReturn, MaxDrawdown, RunDuration)
}

// ObserveResult records a finished simulation.
func ObserveResult(symbol string, res *backtest.Result, took time.Duration) {
	RunDuration.Observe(took.Seconds())
	if res.Empty() {
		RunsTotal.WithLabelValues(symbol, OutcomeEmpty).Inc()
		return
	}
	RunsTotal.WithLabelValues(symbol, OutcomeOK).Inc()
	for _, t := range res.Trades {
		TradesTotal.WithLabelValues(symbol, string(t.Action)).Inc()
	}
	TotalReturn.WithLabelValues(symbol).Set(res.Metrics.TotalReturnPct)
	MaxDrawdown.WithLabelValues(symbol).Set(res.Metrics.MaxDrawdownPct)
}

// Handler exposes the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// Serve starts a /metrics endpoint on addr in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
