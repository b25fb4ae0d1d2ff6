package strategy

import (
	"SignalReplay/internal/calculator"
	"SignalReplay/internal/model"
)

// RSISource is a mean-reversion signal: strength = 1 - RSI/100, so an
// oversold market reads as bullish.
type RSISource struct {
	Period int
}

// NewRSISource defaults to the 14-period RSI.
func NewRSISource(period int) *RSISource {
	if period <= 0 {
		period = 14
	}
	return &RSISource{Period: period}
}

func (s *RSISource) Name() string { return "rsi" }

func (s *RSISource) Generate(prices []model.PricePoint) ([]model.SignalPoint, error) {
	rsi, ok, err := calculator.RSISeries(calculator.Prices(prices), s.Period)
	if err != nil {
		return nil, err
	}
	var out []model.SignalPoint
	for i, p := range prices {
		if !ok[i] {
			continue
		}
		out = append(out, model.SignalPoint{Time: p.Time, Strength: 1 - rsi[i]/100})
	}
	return out, nil
}
