package backtest

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"SignalReplay/internal/model"

	"github.com/rs/zerolog"
)

const tolerance = 1e-6

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(i int) time.Time { return day0.AddDate(0, 0, i) }

func inputs(signals, prices []float64) ([]model.SignalPoint, []model.PricePoint) {
	sp := make([]model.SignalPoint, len(signals))
	for i, s := range signals {
		sp[i] = model.SignalPoint{Time: at(i), Strength: s}
	}
	pp := make([]model.PricePoint, len(prices))
	for i, p := range prices {
		pp[i] = model.PricePoint{Time: at(i), Price: p}
	}
	return sp, pp
}

func newSim(t *testing.T, cfg Config) *Simulator {
	t.Helper()
	sim, err := NewSimulator(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	return sim
}

func TestSimulate_Scenario(t *testing.T) {
	sim := newSim(t, DefaultConfig())
	res, err := sim.Simulate(inputs([]float64{0.7, 0.7, 0.2}, []float64{100, 110, 90}))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(res.Trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(res.Trades))
	}

	buy := res.Trades[0]
	if buy.Action != model.ActionBuy || buy.Shares != 950 || math.Abs(buy.Amount-95095) > tolerance {
		t.Errorf("unexpected buy: %+v", buy)
	}
	sell := res.Trades[1]
	if sell.Action != model.ActionSell || sell.Shares != 950 || math.Abs(sell.Amount-85414.5) > tolerance {
		t.Errorf("unexpected sell: %+v", sell)
	}

	wantValues := []float64{99905, 109405, 90319.5}
	wantPositions := []int64{950, 950, 0}
	if len(res.Equity) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(res.Equity))
	}
	for i, s := range res.Equity {
		if math.Abs(s.Value-wantValues[i]) > tolerance {
			t.Errorf("sample %d: expected value %.4f, got %.4f", i, wantValues[i], s.Value)
		}
		if s.Position != wantPositions[i] {
			t.Errorf("sample %d: expected position %d, got %d", i, wantPositions[i], s.Position)
		}
	}

	m := res.Metrics
	if m == nil {
		t.Fatal("expected metrics")
	}
	if m.NumTrades != 2 {
		t.Errorf("expected 2 trades in metrics, got %d", m.NumTrades)
	}
	if math.Abs(m.FinalValue-90319.5) > tolerance {
		t.Errorf("expected final value 90319.5, got %.4f", m.FinalValue)
	}
	if math.Abs(m.TotalReturnPct-(-9.6805)) > tolerance {
		t.Errorf("expected total return -9.6805%%, got %.6f", m.TotalReturnPct)
	}
	wantDD := (109405 - 90319.5) / 109405 * 100
	if math.Abs(m.MaxDrawdownPct-wantDD) > tolerance {
		t.Errorf("expected max drawdown %.6f, got %.6f", wantDD, m.MaxDrawdownPct)
	}
	if m.RoundTrips != 1 || m.WinRatePct != 0 {
		t.Errorf("expected one losing round trip, got %d trips at %.1f%%", m.RoundTrips, m.WinRatePct)
	}
	if math.Abs(m.BenchmarkReturnPct-(-10)) > tolerance {
		t.Errorf("expected benchmark -10%%, got %.6f", m.BenchmarkReturnPct)
	}
}

func TestSimulate_NoTradeIdempotence(t *testing.T) {
	sim := newSim(t, DefaultConfig())
	signals := []float64{0.5, 0.5, 0.5, 0.5, 0.5}
	prices := []float64{100, 120, 80, 95, 130}
	res, err := sim.Simulate(inputs(signals, prices))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(res.Trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(res.Trades))
	}
	for i, s := range res.Equity {
		if s.Value != DefaultInitialCapital || s.Cash != DefaultInitialCapital || s.Position != 0 {
			t.Errorf("sample %d not flat: %+v", i, s)
		}
	}
	m := res.Metrics
	if res.Empty() || m.TotalReturnPct != 0 || m.VolatilityPct != 0 || m.SharpeRatio != 0 || m.MaxDrawdownPct != 0 {
		t.Errorf("unexpected metrics for a flat run: %+v", m)
	}
}

func TestSimulate_RoundTripExact(t *testing.T) {
	tests := []struct {
		p1, p2, fee float64
	}{
		{100, 110, 0.001},
		{37.13, 29.87, 0.0025},
		{512.5, 512.5, 0},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.FeeRate = tt.fee
		sim := newSim(t, cfg)
		res, err := sim.Simulate(inputs([]float64{0.9, 0.1}, []float64{tt.p1, tt.p2}))
		if err != nil {
			t.Fatalf("Simulate: %v", err)
		}
		shares := math.Floor(cfg.InitialCapital * 0.95 / tt.p1)
		want := cfg.InitialCapital - shares*tt.p1*(1+tt.fee) + shares*tt.p2*(1-tt.fee)
		got := res.Equity[len(res.Equity)-1].Cash
		if got != want {
			t.Errorf("p1=%.2f p2=%.2f fee=%.4f: expected cash %v, got %v", tt.p1, tt.p2, tt.fee, want, got)
		}
		if res.Trades[0].Shares != int64(shares) {
			t.Errorf("expected %v shares, got %d", shares, res.Trades[0].Shares)
		}
	}
}

func TestSimulate_BuyAndHoldRisingHasNoDrawdown(t *testing.T) {
	sim := newSim(t, DefaultConfig())
	signals := []float64{0.8, 0.5, 0.7, 0.9, 0.55, 0.6}
	prices := []float64{10, 11, 12.5, 13, 15, 15.2}
	res, err := sim.Simulate(inputs(signals, prices))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("expected a single buy, got %d trades", len(res.Trades))
	}
	if res.Metrics.MaxDrawdownPct != 0 {
		t.Errorf("expected zero drawdown, got %.6f", res.Metrics.MaxDrawdownPct)
	}
	if res.Metrics.VolatilityPct <= 0 || res.Metrics.SharpeRatio == 0 {
		t.Errorf("expected positive volatility and a Sharpe ratio, got %+v", res.Metrics)
	}
}

func TestSimulate_RandomWalkAccounting(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	n := 500
	signals := make([]float64, n)
	prices := make([]float64, n)
	price := 50.0
	for i := 0; i < n; i++ {
		signals[i] = r.Float64()*1.4 - 0.2
		price *= 1 + (r.Float64()-0.5)*0.08
		prices[i] = price
	}
	cfg := DefaultConfig()
	cfg.FeeRate = 0.01
	res, err := newSim(t, cfg).Simulate(inputs(signals, prices))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(res.Equity) != n {
		t.Fatalf("expected %d samples, got %d", n, len(res.Equity))
	}
	for i, s := range res.Equity {
		want := s.Cash + float64(s.Position)*prices[i]
		if math.Abs(s.Value-want) > 1e-9*math.Max(1, want) {
			t.Fatalf("sample %d: value %.6f != cash+position*price %.6f", i, s.Value, want)
		}
		if s.Position < 0 {
			t.Fatalf("sample %d: negative position %d", i, s.Position)
		}
		if s.Cash < 0 {
			t.Fatalf("sample %d: negative cash %.6f", i, s.Cash)
		}
	}
	for _, v := range res.Metrics.AsMap() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite metric in %+v", res.Metrics)
		}
	}
}

func TestSimulate_EmptyResult(t *testing.T) {
	sim := newSim(t, DefaultConfig())
	signals := []model.SignalPoint{{Time: at(0), Strength: 0.9}}
	prices := []model.PricePoint{{Time: at(5), Price: 100}}
	res, err := sim.Simulate(signals, prices)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if !res.Empty() {
		t.Fatal("expected empty result")
	}
	if len(res.Equity) != 0 || len(res.Trades) != 0 {
		t.Errorf("expected no samples or trades, got %+v", res)
	}

	res, err = sim.Simulate(nil, nil)
	if err != nil || !res.Empty() {
		t.Fatalf("expected empty result for no input, got %+v, %v", res, err)
	}
}

func TestSimulate_SkipsUnalignedTimestamps(t *testing.T) {
	sim := newSim(t, DefaultConfig())
	signals := []model.SignalPoint{
		{Time: at(0), Strength: 0.5},
		{Time: at(1), Strength: 0.9},
		{Time: at(2), Strength: 0.1},
	}
	prices := []model.PricePoint{
		{Time: at(0), Price: 100},
		{Time: at(2), Price: 100},
	}
	res, err := sim.Simulate(signals, prices)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(res.Equity) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(res.Equity))
	}
	if len(res.Trades) != 0 {
		t.Errorf("the BUY signal had no price and must not trade, got %d trades", len(res.Trades))
	}
}

func TestSimulate_SortsSignals(t *testing.T) {
	sim := newSim(t, DefaultConfig())
	signals := []model.SignalPoint{
		{Time: at(1), Strength: 0.1},
		{Time: at(0), Strength: 0.9},
	}
	prices := []model.PricePoint{{Time: at(0), Price: 10}, {Time: at(1), Price: 12}}
	res, err := sim.Simulate(signals, prices)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(res.Trades) != 2 || res.Trades[0].Action != model.ActionBuy || res.Trades[1].Action != model.ActionSell {
		t.Fatalf("expected BUY then SELL, got %+v", res.Trades)
	}
	if !res.Equity[0].Time.Equal(at(0)) {
		t.Errorf("equity must be in time order")
	}
	if signals[0].Time != at(1) {
		t.Errorf("caller's slice must not be reordered")
	}
}

func TestSimulate_InsufficientCashSkipsBuy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialCapital = 1000
	cfg.FeeRate = 0.06
	res, err := newSim(t, cfg).Simulate(inputs([]float64{0.9, 0.9}, []float64{1, 1}))
	if err != nil {
		t.Fatalf("insufficient cash must not be an error: %v", err)
	}
	if len(res.Trades) != 0 {
		t.Errorf("expected skipped buys, got %+v", res.Trades)
	}
	if res.Empty() || res.Metrics.FinalValue != 1000 {
		t.Errorf("expected an untouched non-empty run, got %+v", res.Metrics)
	}
}

func TestSimulate_ZeroSharesSkipsBuy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialCapital = 50
	res, err := newSim(t, cfg).Simulate(inputs([]float64{0.9}, []float64{100}))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(res.Trades) != 0 {
		t.Errorf("expected no zero-share trade, got %+v", res.Trades)
	}
}

func TestSimulate_InvalidInput(t *testing.T) {
	sim := newSim(t, DefaultConfig())
	tests := []struct {
		name    string
		signals []model.SignalPoint
		prices  []model.PricePoint
	}{
		{"zero price", []model.SignalPoint{{Time: at(0), Strength: 1}}, []model.PricePoint{{Time: at(0), Price: 0}}},
		{"negative price", nil, []model.PricePoint{{Time: at(3), Price: -1}}},
		{"nan price", nil, []model.PricePoint{{Time: at(0), Price: math.NaN()}}},
		{"inf price", nil, []model.PricePoint{{Time: at(0), Price: math.Inf(1)}}},
		{"price without time", nil, []model.PricePoint{{Price: 10}}},
		{"duplicate price", nil, []model.PricePoint{{Time: at(0), Price: 1}, {Time: at(0), Price: 2}}},
		{"nan signal", []model.SignalPoint{{Time: at(0), Strength: math.NaN()}}, nil},
		{"signal without time", []model.SignalPoint{{Strength: 0.5}}, nil},
		{"duplicate signal", []model.SignalPoint{{Time: at(1), Strength: 0.5}, {Time: at(1), Strength: 0.7}}, nil},
	}
	for _, tt := range tests {
		_, err := sim.Simulate(tt.signals, tt.prices)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", tt.name, err)
		}
	}
}

func TestNewSimulator_InvalidConfig(t *testing.T) {
	tests := []Config{
		{InitialCapital: 0, FeeRate: 0.001},
		{InitialCapital: -5, FeeRate: 0.001},
		{InitialCapital: 1000, FeeRate: -0.1},
		{InitialCapital: 1000, FeeRate: 1},
		{InitialCapital: math.NaN(), FeeRate: 0},
	}
	for _, cfg := range tests {
		cfg.Policy = DefaultConfig().Policy
		if _, err := NewSimulator(cfg, zerolog.Nop()); err == nil {
			t.Errorf("%+v: expected error", cfg)
		}
	}
}

func TestSimulate_ConcurrentRunsAreIsolated(t *testing.T) {
	sim := newSim(t, DefaultConfig())
	signals, prices := inputs([]float64{0.7, 0.7, 0.2}, []float64{100, 110, 90})

	var wg sync.WaitGroup
	results := make([]*Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := sim.Simulate(signals, prices)
			if err != nil {
				t.Errorf("Simulate: %v", err)
				return
			}
			results[i] = res
		}(i)
	}
	wg.Wait()
	for i, res := range results {
		if res == nil {
			continue
		}
		if len(res.Trades) != 2 || res.Metrics.FinalValue != results[0].Metrics.FinalValue {
			t.Errorf("run %d diverged: %+v", i, res.Metrics)
		}
	}
}
