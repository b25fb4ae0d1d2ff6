package strategy

import (
	"math/rand"

	"SignalReplay/internal/model"
)

// DefaultWarmup is the number of leading prices without a random signal.
const DefaultWarmup = 60

// RandomSource emits 0 or 1 with equal probability after a warm-up window.
// It stands in for a trained model and is reproducible for a given seed.
type RandomSource struct {
	Seed   int64
	Warmup int
}

// NewRandomSource creates a seeded RandomSource.
func NewRandomSource(seed int64, warmup int) *RandomSource {
	if warmup < 0 {
		warmup = 0
	}
	return &RandomSource{Seed: seed, Warmup: warmup}
}

func (s *RandomSource) Name() string { return "random" }

func (s *RandomSource) Generate(prices []model.PricePoint) ([]model.SignalPoint, error) {
	if len(prices) <= s.Warmup {
		return nil, nil
	}
	r := rand.New(rand.NewSource(s.Seed))
	out := make([]model.SignalPoint, 0, len(prices)-s.Warmup)
	for _, p := range prices[s.Warmup:] {
		out = append(out, model.SignalPoint{Time: p.Time, Strength: float64(r.Intn(2))})
	}
	return out, nil
}
