package strategy

import (
	"SignalReplay/internal/calculator"
	"SignalReplay/internal/model"
)

const (
	trendBullish = 0.7
	trendBearish = 0.3
	trendNeutral = 0.5
)

// TrendSource reads the close against its simple moving average: above is
// bullish, below is bearish.
type TrendSource struct {
	Period int
}

// NewTrendSource defaults to a 20-period SMA.
func NewTrendSource(period int) *TrendSource {
	if period <= 0 {
		period = 20
	}
	return &TrendSource{Period: period}
}

func (s *TrendSource) Name() string { return "trend" }

func (s *TrendSource) Generate(prices []model.PricePoint) ([]model.SignalPoint, error) {
	sma, ok, err := calculator.SMASeries(calculator.Prices(prices), s.Period)
	if err != nil {
		return nil, err
	}
	var out []model.SignalPoint
	for i, p := range prices {
		if !ok[i] {
			continue
		}
		strength := trendNeutral
		switch {
		case p.Price > sma[i]:
			strength = trendBullish
		case p.Price < sma[i]:
			strength = trendBearish
		}
		out = append(out, model.SignalPoint{Time: p.Time, Strength: strength})
	}
	return out, nil
}
