package calculator

import (
	"errors"

	"SignalReplay/internal/model"
)

// CalculateSMA computes the simple moving average of the last period values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// SMASeries returns the rolling SMA aligned with values. Entries before the
// window fills are zero; ok reports whether index i carries a value.
func SMASeries(values []float64, period int) (sma []float64, ok []bool, err error) {
	if period <= 0 {
		return nil, nil, errors.New("period must be positive")
	}
	sma = make([]float64, len(values))
	ok = make([]bool, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			sma[i] = sum / float64(period)
			ok[i] = true
		}
	}
	return sma, ok, nil
}

// Prices extracts the price column of a point series.
func Prices(points []model.PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Price
	}
	return out
}
