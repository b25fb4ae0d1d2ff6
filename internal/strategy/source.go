package strategy

import (
	"fmt"
	"strings"

	"SignalReplay/internal/model"
)

// Source produces signal strengths for a price series. The simulator never
// looks at how the strengths were produced.
type Source interface {
	Name() string
	Generate(prices []model.PricePoint) ([]model.SignalPoint, error)
}

// SourceConfig selects and parameterises a Source. A zero Warmup selects
// DefaultWarmup; use a negative value for none.
type SourceConfig struct {
	Name   string `yaml:"name"`
	Seed   int64  `yaml:"seed"`
	Warmup int    `yaml:"warmup"`
	Period int    `yaml:"period"`
	Path   string `yaml:"path"`
}

// NewSource builds the source named by cfg.Name.
func NewSource(cfg SourceConfig) (Source, error) {
	switch strings.ToLower(cfg.Name) {
	case "", "random":
		warmup := cfg.Warmup
		if warmup == 0 {
			warmup = DefaultWarmup
		}
		return NewRandomSource(cfg.Seed, warmup), nil
	case "rsi":
		return NewRSISource(cfg.Period), nil
	case "trend":
		return NewTrendSource(cfg.Period), nil
	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("file source requires a path")
		}
		return &FileSource{Path: cfg.Path}, nil
	default:
		return nil, fmt.Errorf("unknown signal source %q", cfg.Name)
	}
}
