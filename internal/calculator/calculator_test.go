package calculator

import (
	"math"
	"testing"
)

func TestCalculateSMA(t *testing.T) {
	got, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 4 {
		t.Errorf("expected 4, got %.4f", got)
	}
	if _, err := CalculateSMA([]float64{1}, 3); err == nil {
		t.Error("expected error for short input")
	}
	if _, err := CalculateSMA([]float64{1}, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestSMASeries(t *testing.T) {
	sma, ok, err := SMASeries([]float64{2, 4, 6, 8}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0, 3, 5, 7}
	for i := range want {
		if ok[i] != (i >= 1) {
			t.Errorf("index %d: ok=%v", i, ok[i])
		}
		if sma[i] != want[i] {
			t.Errorf("index %d: expected %.2f, got %.2f", i, want[i], sma[i])
		}
	}
}

func TestCalculateRSI_Insufficient(t *testing.T) {
	got, err := CalculateRSI([]float64{1, 2, 3}, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 50 {
		t.Errorf("expected default 50, got %.2f", got)
	}
}

func TestCalculateRSI_AllGains(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(100 + i)
	}
	got, err := CalculateRSI(closes, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 100 {
		t.Errorf("expected 100 for monotonic gains, got %.2f", got)
	}
}

func TestRSISeries_Bounds(t *testing.T) {
	closes := []float64{10, 11, 10.5, 10.8, 10.2, 10.9, 11.4, 11.1, 10.7, 11.3}
	rsi, ok, err := RSISeries(closes, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range closes {
		if ok[i] != (i >= 3) {
			t.Errorf("index %d: ok=%v", i, ok[i])
		}
		if rsi[i] < 0 || rsi[i] > 100 {
			t.Errorf("index %d: rsi %.2f out of range", i, rsi[i])
		}
	}
}

func TestSampleStdDev(t *testing.T) {
	tests := []struct {
		values []float64
		want   float64
	}{
		{nil, 0},
		{[]float64{3}, 0},
		{[]float64{2, 4, 4, 4, 5, 5, 7, 9}, math.Sqrt(32.0 / 7.0)},
	}
	for _, tt := range tests {
		if got := SampleStdDev(tt.values); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("SampleStdDev(%v): expected %.6f, got %.6f", tt.values, tt.want, got)
		}
	}
}
