package collector

import (
	"context"
	"fmt"
	"path/filepath"

	"SignalReplay/internal/dataset"
	"SignalReplay/internal/model"
)

// CSVFetcher reads `timestamp,close` files named <Dir>/<SYMBOL>.csv.
type CSVFetcher struct {
	Dir string
}

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) FetchDailyBars(_ context.Context, symbol string, days int) ([]model.OHLCV, error) {
	rows, err := dataset.LoadCSV(filepath.Join(f.Dir, symbol+".csv"))
	if err != nil {
		return nil, fmt.Errorf("csv fetch: %w", err)
	}
	bars := make([]model.OHLCV, len(rows))
	for i, r := range rows {
		bars[i] = model.OHLCV{Time: r.Time, Open: r.Value, High: r.Value, Low: r.Value, Close: r.Value}
	}
	if days > 0 && len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}
