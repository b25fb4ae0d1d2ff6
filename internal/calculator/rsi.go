package calculator

import "errors"

// CalculateRSI computes the Wilder-smoothed RSI of the whole close series.
// Requires at least period+1 closes. Returns 50.0 if data is insufficient.
func CalculateRSI(closes []float64, period int) (float64, error) {
	series, ok, err := RSISeries(closes, period)
	if err != nil {
		return 0, err
	}
	if len(series) == 0 || !ok[len(series)-1] {
		return 50.0, nil // default when data insufficient
	}
	return series[len(series)-1], nil
}

// RSISeries returns the Wilder RSI at every index. The first value is
// available at index period; ok marks the populated entries.
func RSISeries(closes []float64, period int) (rsi []float64, ok []bool, err error) {
	if period <= 0 {
		return nil, nil, errors.New("period must be positive")
	}
	rsi = make([]float64, len(closes))
	ok = make([]bool, len(closes))
	if len(closes) < period+1 {
		return rsi, ok, nil
	}

	// Initial average gain/loss over the first `period` changes
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	rsi[period] = rsiValue(avgGain, avgLoss)
	ok[period] = true

	// Wilder smoothing for remaining closes
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		rsi[i] = rsiValue(avgGain, avgLoss)
		ok[i] = true
	}
	return rsi, ok, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
