package model

import "time"

// SignalPoint is a bullish-confidence reading for one timestamp.
// Strength is nominally in [0,1] but any finite value is accepted.
type SignalPoint struct {
	Time     time.Time `json:"time"`
	Strength float64   `json:"strength"`
}

// Action is the decision taken for a single timestamp.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)
