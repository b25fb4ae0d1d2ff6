// Package backtest replays a signal stream against prices under a threshold
// policy and derives performance statistics from the resulting equity curve.
package backtest

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"SignalReplay/internal/model"
	"SignalReplay/internal/strategy"

	"github.com/rs/zerolog"
)

const (
	DefaultInitialCapital = 100000.0
	DefaultFeeRate        = 0.001

	// CapitalFraction is the share of cash committed on every BUY.
	CapitalFraction = 0.95
)

// ErrInvalidInput rejects a run whose prices or timestamps cannot produce
// meaningful metrics.
var ErrInvalidInput = errors.New("invalid input")

// Config holds the per-run simulation parameters.
type Config struct {
	InitialCapital float64         `yaml:"initial_capital" json:"initial_capital"`
	FeeRate        float64         `yaml:"fee_rate" json:"fee_rate"`
	Policy         strategy.Policy `yaml:"policy" json:"policy"`
}

// DefaultConfig returns 100000 starting capital, a 0.1% fee and the
// default 0.6/0.4 policy.
func DefaultConfig() Config {
	return Config{
		InitialCapital: DefaultInitialCapital,
		FeeRate:        DefaultFeeRate,
		Policy:         strategy.DefaultPolicy,
	}
}

// Validate checks the capital, fee and policy thresholds.
func (c Config) Validate() error {
	if !(c.InitialCapital > 0) || math.IsInf(c.InitialCapital, 0) {
		return fmt.Errorf("initial capital must be positive, got %v", c.InitialCapital)
	}
	if !(c.FeeRate >= 0 && c.FeeRate < 1) {
		return fmt.Errorf("fee rate must be in [0,1), got %v", c.FeeRate)
	}
	return c.Policy.Validate()
}

// Result is the outcome of one simulation. Metrics is nil when no
// timestamp was shared by the signal and price inputs.
type Result struct {
	Config  Config               `json:"config"`
	Trades  []model.Trade        `json:"trades"`
	Equity  []model.EquitySample `json:"equity"`
	Metrics *Metrics             `json:"metrics"`
}

// Empty reports whether the run processed no timestamps at all, as opposed
// to a run that processed timestamps without trading.
func (r *Result) Empty() bool { return r.Metrics == nil }

// Simulator runs simulations for a fixed Config. It holds no per-run state,
// so one Simulator may serve concurrent runs.
type Simulator struct {
	cfg Config
	log zerolog.Logger
}

// NewSimulator validates cfg and returns a Simulator.
func NewSimulator(cfg Config, log zerolog.Logger) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("backtest config: %w", err)
	}
	return &Simulator{cfg: cfg, log: log}, nil
}

// Config returns the simulation parameters.
func (s *Simulator) Config() Config { return s.cfg }

// run is the state owned by a single Simulate call.
type run struct {
	cfg      Config
	log      zerolog.Logger
	cash     float64
	position int64
	trades   []model.Trade
	equity   []model.EquitySample
}

// Simulate replays signals in ascending time order. Only timestamps present
// in both inputs are processed, each producing one equity sample.
func (s *Simulator) Simulate(signals []model.SignalPoint, prices []model.PricePoint) (*Result, error) {
	priceAt, err := indexPrices(prices)
	if err != nil {
		return nil, err
	}
	ordered, err := orderSignals(signals)
	if err != nil {
		return nil, err
	}

	r := &run{cfg: s.cfg, log: s.log, cash: s.cfg.InitialCapital}
	var firstPrice, lastPrice float64
	for _, sig := range ordered {
		price, ok := priceAt[sig.Time.UnixNano()]
		if !ok {
			continue
		}
		if len(r.equity) == 0 {
			firstPrice = price
		}
		lastPrice = price

		switch s.cfg.Policy.Decide(sig.Strength, r.position) {
		case model.ActionBuy:
			r.buy(sig.Time, price)
		case model.ActionSell:
			r.sell(sig.Time, price)
		}
		r.mark(sig.Time, price)
	}

	res := &Result{Config: s.cfg, Trades: r.trades, Equity: r.equity}
	if len(r.equity) == 0 {
		s.log.Info().Int("signals", len(signals)).Int("prices", len(prices)).Msg("no aligned timestamps, empty result")
		return res, nil
	}
	res.Metrics = ComputeMetrics(s.cfg.InitialCapital, r.equity, r.trades)
	res.Metrics.BenchmarkReturnPct = (lastPrice/firstPrice - 1) * 100
	return res, nil
}

func (r *run) buy(ts time.Time, price float64) {
	shares := int64(math.Floor(r.cash * CapitalFraction / price))
	cost := float64(shares) * price * (1 + r.cfg.FeeRate)
	if shares <= 0 || cost > r.cash {
		r.log.Debug().Time("ts", ts).Float64("price", price).Float64("cash", r.cash).
			Int64("shares", shares).Msg("buy skipped: insufficient cash")
		return
	}
	r.cash -= cost
	r.position = shares
	r.trades = append(r.trades, model.Trade{
		Time: ts, Action: model.ActionBuy, Shares: shares, Price: price, Amount: cost,
	})
}

func (r *run) sell(ts time.Time, price float64) {
	revenue := float64(r.position) * price * (1 - r.cfg.FeeRate)
	r.cash += revenue
	r.trades = append(r.trades, model.Trade{
		Time: ts, Action: model.ActionSell, Shares: r.position, Price: price, Amount: revenue,
	})
	r.position = 0
}

func (r *run) mark(ts time.Time, price float64) {
	value := r.cash
	if r.position > 0 {
		value += float64(r.position) * price
	}
	r.equity = append(r.equity, model.EquitySample{
		Time: ts, Value: value, Position: r.position, Cash: r.cash,
	})
}

func indexPrices(prices []model.PricePoint) (map[int64]float64, error) {
	out := make(map[int64]float64, len(prices))
	for i, p := range prices {
		if p.Time.IsZero() {
			return nil, fmt.Errorf("%w: price %d has no timestamp", ErrInvalidInput, i)
		}
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price <= 0 {
			return nil, fmt.Errorf("%w: price %v at %s", ErrInvalidInput, p.Price, p.Time.Format(time.RFC3339))
		}
		key := p.Time.UnixNano()
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("%w: duplicate price timestamp %s", ErrInvalidInput, p.Time.Format(time.RFC3339))
		}
		out[key] = p.Price
	}
	return out, nil
}

func orderSignals(signals []model.SignalPoint) ([]model.SignalPoint, error) {
	ordered := make([]model.SignalPoint, len(signals))
	copy(ordered, signals)
	for i, s := range ordered {
		if s.Time.IsZero() {
			return nil, fmt.Errorf("%w: signal %d has no timestamp", ErrInvalidInput, i)
		}
		if math.IsNaN(s.Strength) || math.IsInf(s.Strength, 0) {
			return nil, fmt.Errorf("%w: signal %v at %s", ErrInvalidInput, s.Strength, s.Time.Format(time.RFC3339))
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Time.Before(ordered[j].Time) })
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Time.Equal(ordered[i-1].Time) {
			return nil, fmt.Errorf("%w: duplicate signal timestamp %s", ErrInvalidInput, ordered[i].Time.Format(time.RFC3339))
		}
	}
	return ordered, nil
}
