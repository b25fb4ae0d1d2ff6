package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PricePoint is a single observed price.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// PriceSeries holds raw price data for one symbol.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	Points    []PricePoint
	FetchedAt time.Time
}

// ClosePoints converts bars into close-price points, keeping bar order.
func ClosePoints(bars []OHLCV) []PricePoint {
	points := make([]PricePoint, len(bars))
	for i, b := range bars {
		points[i] = PricePoint{Time: b.Time, Price: b.Close}
	}
	return points
}
