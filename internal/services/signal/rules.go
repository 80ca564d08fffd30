package signal

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// features are the classified inputs shared by all entry rules.
type features struct {
	rsi       decimal.Decimal
	macd      decimal.Decimal
	crossover Crossover
	trend     Trend
	rsiZone   RSICondition
	macdBuy   decimal.Decimal
	macdSell  decimal.Decimal
}

// rule is a named entry predicate. Rules are evaluated in slice order.
type rule struct {
	name  string
	match func(f features) bool
}

func (r rule) reason(f features) string {
	return fmt.Sprintf("%s (RSI %s)", r.name, f.rsi.StringFixed(1))
}

var buyRules = []rule{
	{
		name: "strong bullish MACD crossover + RSI oversold",
		match: func(f features) bool {
			return f.crossover.Direction == DirectionBullish &&
				f.crossover.Strength == StrengthStrong &&
				f.rsiZone.IsOversold() &&
				f.macd.GreaterThan(f.macdBuy)
		},
	},
	{
		name: "bullish MACD crossover + extremely oversold RSI",
		match: func(f features) bool {
			return f.crossover.Direction == DirectionBullish &&
				f.rsiZone == RSIExtremelyOversold &&
				f.macd.GreaterThan(f.macdBuy)
		},
	},
	{
		name: "strong bullish MACD trend + RSI oversold",
		match: func(f features) bool {
			return f.trend == TrendStrongBullish &&
				f.rsiZone.IsOversold() &&
				f.macd.GreaterThan(f.macdBuy)
		},
	},
}

var sellRules = []rule{
	{
		name: "strong bearish MACD crossover + RSI overbought",
		match: func(f features) bool {
			return f.crossover.Direction == DirectionBearish &&
				f.crossover.Strength == StrengthStrong &&
				f.rsiZone.IsOverbought() &&
				f.macd.LessThan(f.macdSell)
		},
	},
	{
		name: "bearish MACD crossover + extremely overbought RSI",
		match: func(f features) bool {
			return f.crossover.Direction == DirectionBearish &&
				f.rsiZone == RSIExtremelyOverbought &&
				f.macd.LessThan(f.macdSell)
		},
	},
	{
		name: "strong bearish MACD trend + RSI overbought",
		match: func(f features) bool {
			return f.trend == TrendStrongBearish &&
				f.rsiZone.IsOverbought() &&
				f.macd.LessThan(f.macdSell)
		},
	},
}

// firstMatch returns the first rule that matches f.
func firstMatch(rules []rule, f features) (rule, bool) {
	for _, r := range rules {
		if r.match(f) {
			return r, true
		}
	}
	return rule{}, false
}
