package domain

import "strings"

// Side is the direction of a recorded trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Signal is the label produced by a single evaluation.
type Signal string

const (
	SignalNone           Signal = "NO_SIGNAL"
	SignalHold           Signal = "HOLD"
	SignalBuy            Signal = "BUY_SIGNAL"
	SignalSell           Signal = "SELL_SIGNAL"
	SignalBuyStopLoss    Signal = "BUY_STOP_LOSS"
	SignalBuyTakeProfit  Signal = "BUY_TAKE_PROFIT"
	SignalSellStopLoss   Signal = "SELL_STOP_LOSS"
	SignalSellTakeProfit Signal = "SELL_TAKE_PROFIT"
)

// signal suffixes that mark a label as tradable
const (
	suffixSignal = "_SIGNAL"
	suffixLoss   = "_LOSS"
	suffixProfit = "_PROFIT"
)

// IsActionable reports whether the label describes a trade to record.
// NO_SIGNAL ends in _SIGNAL but is never actionable.
func (s Signal) IsActionable() bool {
	if s == SignalNone {
		return false
	}
	v := string(s)
	return strings.HasSuffix(v, suffixSignal) ||
		strings.HasSuffix(v, suffixLoss) ||
		strings.HasSuffix(v, suffixProfit)
}

// Side returns BUY for labels starting with BUY and SELL otherwise.
func (s Signal) Side() Side {
	if strings.HasPrefix(string(s), string(SideBuy)) {
		return SideBuy
	}
	return SideSell
}

// String returns the label.
func (s Signal) String() string {
	return string(s)
}

// TradeType is the short trade description used in logs, e.g. "BUY STOP LOSS".
func (s Signal) TradeType() string {
	return strings.ReplaceAll(strings.TrimSuffix(string(s), suffixSignal), "_", " ")
}
