package collector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"SignalReplay/internal/model"

	"github.com/rs/zerolog"
)

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestCollect_CleansBars(t *testing.T) {
	fetcher := &MockFetcher{Bars: []model.OHLCV{
		{Time: day0.AddDate(0, 0, 2), Close: 102},
		{Time: day0, Close: 100},
		{Time: day0.AddDate(0, 0, 1), Close: 0},
		{Time: day0.AddDate(0, 0, 2), Close: 103},
		{Time: day0.AddDate(0, 0, 3), Close: 104},
	}}
	series, err := NewCollector(fetcher, zerolog.Nop()).Collect(context.Background(), "SPX500", 10)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := []float64{100, 103, 104}
	if len(series.Points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(series.Points))
	}
	for i, p := range series.Points {
		if p.Price != want[i] {
			t.Errorf("point %d: expected %.0f, got %.0f", i, want[i], p.Price)
		}
		if i > 0 && !p.Time.After(series.Points[i-1].Time) {
			t.Errorf("point %d is out of order", i)
		}
	}
	if series.Symbol != "SPX500" {
		t.Errorf("unexpected symbol %s", series.Symbol)
	}
	if fetcher.Bars[0].Close != 102 {
		t.Errorf("fetcher bars must not be mutated")
	}
}

func TestCollect_NoData(t *testing.T) {
	fetcher := &MockFetcher{Bars: []model.OHLCV{{Time: day0, Close: -1}}}
	_, err := NewCollector(fetcher, zerolog.Nop()).Collect(context.Background(), "X", 5)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestCollect_FetchError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewCollector(&MockFetcher{Err: boom}, zerolog.Nop()).Collect(context.Background(), "X", 5)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
}

func TestMockFetcher_Generated(t *testing.T) {
	bars, err := (&MockFetcher{Price: 100, Start: day0}).FetchDailyBars(context.Background(), "X", 30)
	if err != nil {
		t.Fatalf("FetchDailyBars: %v", err)
	}
	if len(bars) != 30 || !bars[0].Time.Equal(day0) {
		t.Fatalf("unexpected mock bars: %d starting %s", len(bars), bars[0].Time)
	}
	for _, b := range bars {
		if b.Close <= 0 {
			t.Fatalf("mock close must be positive, got %.2f", b.Close)
		}
	}
}

func TestCSVFetcher(t *testing.T) {
	dir := t.TempDir()
	body := "date,close\n2024-03-01,10\n2024-03-02,11\n2024-03-03,12\n"
	if err := os.WriteFile(filepath.Join(dir, "AAPL.csv"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	bars, err := (&CSVFetcher{Dir: dir}).FetchDailyBars(context.Background(), "AAPL", 2)
	if err != nil {
		t.Fatalf("FetchDailyBars: %v", err)
	}
	if len(bars) != 2 || bars[0].Close != 11 || bars[1].Close != 12 {
		t.Fatalf("unexpected bars: %+v", bars)
	}
	if _, err := (&CSVFetcher{Dir: dir}).FetchDailyBars(context.Background(), "MSFT", 2); err == nil {
		t.Fatal("expected error for missing symbol file")
	}
}

func TestNewFetcher(t *testing.T) {
	tests := []struct {
		provider, baseURL, csvDir string
		name                      string
		wantErr                   bool
	}{
		{"", "", "", "yahoo", false},
		{"", "http://vs.local", "", "vstrader", false},
		{"vstrader", "", "", "", true},
		{"csv", "", "data", "csv", false},
		{"csv", "", "", "", true},
		{"mock", "", "", "mock", false},
		{"bloomberg", "", "", "", true},
	}
	for _, tt := range tests {
		f, err := NewFetcher(tt.provider, tt.baseURL, "", tt.csvDir, "")
		if tt.wantErr {
			if err == nil {
				t.Errorf("provider %q: expected error", tt.provider)
			}
			continue
		}
		if err != nil {
			t.Fatalf("provider %q: %v", tt.provider, err)
		}
		if f.Name() != tt.name {
			t.Errorf("provider %q: expected %s, got %s", tt.provider, tt.name, f.Name())
		}
	}
}
