package strategy

import (
	"fmt"

	"SignalReplay/internal/model"
)

// Policy thresholds a signal strength into a trading action.
type Policy struct {
	BuyAbove  float64 `yaml:"buy_above" json:"buy_above"`
	SellBelow float64 `yaml:"sell_below" json:"sell_below"`
}

// DefaultPolicy buys above 0.6 and sells below 0.4.
var DefaultPolicy = Policy{BuyAbove: 0.6, SellBelow: 0.4}

// Validate checks the thresholds do not overlap.
func (p Policy) Validate() error {
	if p.SellBelow > p.BuyAbove {
		return fmt.Errorf("sell threshold %.3f above buy threshold %.3f", p.SellBelow, p.BuyAbove)
	}
	return nil
}

// Decide maps a signal and the current share count to an action. Both
// comparisons are strict, so signals on a threshold hold.
func (p Policy) Decide(signal float64, position int64) model.Action {
	switch {
	case signal > p.BuyAbove && position <= 0:
		return model.ActionBuy
	case signal < p.SellBelow && position > 0:
		return model.ActionSell
	default:
		return model.ActionHold
	}
}
