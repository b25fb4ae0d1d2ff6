package backtest

import (
	"math"

	"SignalReplay/internal/calculator"
	"SignalReplay/internal/model"
)

const (
	TradingDaysPerYear = 252
	RiskFreeRatePct    = 2.0
)

// Metrics summarises an equity curve. Percentages are expressed as 0-100.
type Metrics struct {
	Samples             int     `json:"samples"`
	TotalReturnPct      float64 `json:"total_return_pct"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`
	VolatilityPct       float64 `json:"volatility_pct"`
	SharpeRatio         float64 `json:"sharpe_ratio"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`
	NumTrades           int     `json:"num_trades"`
	FinalValue          float64 `json:"final_value"`
	RoundTrips          int     `json:"round_trips"`
	WinRatePct          float64 `json:"win_rate_pct"`
	BenchmarkReturnPct  float64 `json:"benchmark_return_pct"`
}

// ComputeMetrics derives the statistics of a non-empty equity curve. It
// returns nil for an empty curve.
//
// The annualized return uses 252/N as exponent, which is extreme for very
// short curves (N=1 raises the ratio to the 252nd power). That is reported
// as computed.
func ComputeMetrics(initialCapital float64, equity []model.EquitySample, trades []model.Trade) *Metrics {
	n := len(equity)
	if n == 0 {
		return nil
	}
	final := equity[n-1].Value
	m := &Metrics{
		Samples:    n,
		NumTrades:  len(trades),
		FinalValue: final,
	}

	ratio := final / initialCapital
	m.TotalReturnPct = (ratio - 1) * 100
	m.AnnualizedReturnPct = (math.Pow(ratio, float64(TradingDaysPerYear)/float64(n)) - 1) * 100

	m.VolatilityPct = calculator.SampleStdDev(stepReturns(equity)) * math.Sqrt(TradingDaysPerYear) * 100
	if m.VolatilityPct > 0 {
		m.SharpeRatio = (m.AnnualizedReturnPct - RiskFreeRatePct) / m.VolatilityPct
	}

	m.MaxDrawdownPct = maxDrawdown(equity) * 100
	m.RoundTrips, m.WinRatePct = winRate(trades)
	return m
}

// AsMap flattens the metrics into named values.
func (m *Metrics) AsMap() map[string]float64 {
	return map[string]float64{
		"samples":               float64(m.Samples),
		"total_return_pct":      m.TotalReturnPct,
		"annualized_return_pct": m.AnnualizedReturnPct,
		"volatility_pct":        m.VolatilityPct,
		"sharpe_ratio":          m.SharpeRatio,
		"max_drawdown_pct":      m.MaxDrawdownPct,
		"num_trades":            float64(m.NumTrades),
		"final_value":           m.FinalValue,
		"round_trips":           float64(m.RoundTrips),
		"win_rate_pct":          m.WinRatePct,
		"benchmark_return_pct":  m.BenchmarkReturnPct,
	}
}

// stepReturns computes v[i]/v[i-1]-1 for i >= 1. A non-positive previous
// value contributes a zero return.
func stepReturns(equity []model.EquitySample) []float64 {
	if len(equity) < 2 {
		return nil
	}
	out := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Value
		if prev <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, equity[i].Value/prev-1)
	}
	return out
}

// maxDrawdown returns the largest (peak-value)/peak as a fraction, with the
// running peak starting at the first sample.
func maxDrawdown(equity []model.EquitySample) float64 {
	peak := equity[0].Value
	worst := 0.0
	for _, s := range equity {
		if s.Value > peak {
			peak = s.Value
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - s.Value) / peak; dd > worst {
			worst = dd
		}
	}
	return worst
}

// winRate pairs each SELL with the preceding BUY. A round trip wins when
// the net revenue exceeds the cost paid.
func winRate(trades []model.Trade) (roundTrips int, pct float64) {
	var entryCost float64
	var open bool
	wins := 0
	for _, t := range trades {
		switch t.Action {
		case model.ActionBuy:
			entryCost = t.Amount
			open = true
		case model.ActionSell:
			if !open {
				continue
			}
			roundTrips++
			if t.Amount > entryCost {
				wins++
			}
			open = false
		}
	}
	if roundTrips == 0 {
		return 0, 0
	}
	return roundTrips, float64(wins) / float64(roundTrips) * 100
}
