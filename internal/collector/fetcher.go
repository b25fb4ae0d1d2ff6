package collector

import (
	"context"
	"fmt"
	"strings"

	"SignalReplay/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	Name() string
}

// NewFetcher selects a Fetcher by provider name: "yahoo", "vstrader",
// "csv" or "mock". An empty provider picks vstrader when a base URL is set
// and yahoo otherwise.
func NewFetcher(provider, baseURL, apiKey, csvDir, proxyURL string) (Fetcher, error) {
	if provider == "" {
		provider = "yahoo"
		if baseURL != "" {
			provider = "vstrader"
		}
	}
	switch strings.ToLower(provider) {
	case "yahoo":
		return NewYahooFetcher(proxyURL), nil
	case "vstrader":
		if baseURL == "" {
			return nil, fmt.Errorf("vstrader provider requires a base URL")
		}
		return NewVsTraderFetcher(baseURL, apiKey, proxyURL), nil
	case "csv":
		if csvDir == "" {
			return nil, fmt.Errorf("csv provider requires a directory")
		}
		return &CSVFetcher{Dir: csvDir}, nil
	case "mock":
		return &MockFetcher{Price: 100}, nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", provider)
	}
}
