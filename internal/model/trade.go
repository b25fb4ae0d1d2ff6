package model

import "time"

// Trade is one executed transition. Amount is the total cost of a BUY
// (fee included) or the net revenue of a SELL.
type Trade struct {
	Time   time.Time `json:"time"`
	Action Action    `json:"action"`
	Shares int64     `json:"shares"`
	Price  float64   `json:"price"`
	Amount float64   `json:"amount"`
}

// EquitySample is the portfolio state after one processed timestamp.
type EquitySample struct {
	Time     time.Time `json:"time"`
	Value    float64   `json:"portfolio_value"`
	Position int64     `json:"position"`
	Cash     float64   `json:"cash"`
}
