package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"SignalReplay/internal/model"

	"github.com/rs/zerolog"
)

// ErrNoData is returned when a fetcher yields no usable bars.
var ErrNoData = errors.New("no market data")

// Collector turns raw fetcher output into a clean, ordered price series.
type Collector struct {
	Fetcher Fetcher
	Log     zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, log zerolog.Logger) *Collector {
	return &Collector{Fetcher: fetcher, Log: log}
}

// Collect fetches up to days daily bars for symbol. Bars are sorted by time,
// duplicate timestamps keep the last bar, and non-positive closes are
// dropped.
func (c *Collector) Collect(ctx context.Context, symbol string, days int) (*model.PriceSeries, error) {
	raw, err := c.Fetcher.FetchDailyBars(ctx, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars from %s: %w", c.Fetcher.Name(), err)
	}

	bars := make([]model.OHLCV, len(raw))
	copy(bars, raw)
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	clean := bars[:0]
	dropped := 0
	for _, b := range bars {
		if !(b.Close > 0) {
			dropped++
			continue
		}
		if n := len(clean); n > 0 && clean[n-1].Time.Equal(b.Time) {
			clean[n-1] = b
			continue
		}
		clean = append(clean, b)
	}
	if dropped > 0 {
		c.Log.Warn().Str("symbol", symbol).Int("dropped", dropped).Msg("dropped bars without a positive close")
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}

	c.Log.Debug().Str("symbol", symbol).Str("source", c.Fetcher.Name()).Int("bars", len(clean)).Msg("collected bars")
	return &model.PriceSeries{
		Symbol:    symbol,
		Bars:      clean,
		Points:    model.ClosePoints(clean),
		FetchedAt: time.Now(),
	}, nil
}
