package signal

import (
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/momentum/internal/domain"
)

// Direction of a MACD crossover.
type Direction string

const (
	DirectionNone    Direction = "none"
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
)

// Strength of a crossover, empty when there is no crossover.
type Strength string

const (
	StrengthNone   Strength = ""
	StrengthStrong Strength = "strong"
	StrengthWeak   Strength = "weak"
)

// Crossover describes MACD crossing its signal line between two observations.
type Crossover struct {
	Direction Direction
	Strength  Strength
}

// Trend is the MACD trend classification.
type Trend string

const (
	TrendUnknown       Trend = "unknown"
	TrendStrongBullish Trend = "strong_bullish"
	TrendWeakBullish   Trend = "weak_bullish"
	TrendStrongBearish Trend = "strong_bearish"
	TrendWeakBearish   Trend = "weak_bearish"
)

// RSICondition is the RSI zone relative to the configured thresholds.
type RSICondition string

const (
	RSIUnknown               RSICondition = "unknown"
	RSIExtremelyOversold     RSICondition = "extremely_oversold"
	RSIOversold              RSICondition = "oversold"
	RSIExtremelyOverbought   RSICondition = "extremely_overbought"
	RSIOverbought            RSICondition = "overbought"
	RSINeutral               RSICondition = "neutral"
	RSIApproachingOversold   RSICondition = "approaching_oversold"
	RSIApproachingOverbought RSICondition = "approaching_overbought"
)

// IsOversold reports oversold or extremely oversold.
func (c RSICondition) IsOversold() bool {
	return c == RSIOversold || c == RSIExtremelyOversold
}

// IsOverbought reports overbought or extremely overbought.
func (c RSICondition) IsOverbought() bool {
	return c == RSIOverbought || c == RSIExtremelyOverbought
}

var (
	trendSeparation = decimal.RequireFromString("0.001")
	extremeOffset   = decimal.NewFromInt(5)
	neutralLow      = decimal.NewFromInt(40)
	neutralHigh     = decimal.NewFromInt(60)
)

// classifier derives the entry features. It is only consulted when flat.
type classifier interface {
	Crossover(history []domain.PriceObservation, macd, signal decimal.Decimal) Crossover
	Trend(macd, signal decimal.NullDecimal) Trend
	RSICondition(rsi decimal.NullDecimal, buy, sell decimal.Decimal) RSICondition
}

type defaultClassifier struct{}

// Crossover compares the current MACD pair against history[len-2].
// The last history element is the current observation.
func (defaultClassifier) Crossover(history []domain.PriceObservation, macd, signal decimal.Decimal) Crossover {
	none := Crossover{Direction: DirectionNone}
	if len(history) < 2 {
		return none
	}

	prev := history[len(history)-2]
	if !prev.MACD.Valid || !prev.MACDSignal.Valid {
		return none
	}
	prevMACD, prevSignal := prev.MACD.Decimal, prev.MACDSignal.Decimal
	momentum := macd.Sub(prevMACD)

	switch {
	case prevMACD.LessThanOrEqual(prevSignal) && macd.GreaterThan(signal):
		c := Crossover{Direction: DirectionBullish, Strength: StrengthWeak}
		if momentum.IsPositive() {
			c.Strength = StrengthStrong
		}
		return c
	case prevMACD.GreaterThanOrEqual(prevSignal) && macd.LessThan(signal):
		c := Crossover{Direction: DirectionBearish, Strength: StrengthWeak}
		if momentum.IsNegative() {
			c.Strength = StrengthStrong
		}
		return c
	}

	return none
}

// Trend splits bullish and bearish by a separation of 0.001.
// Equal lines count as bearish.
func (defaultClassifier) Trend(macd, signal decimal.NullDecimal) Trend {
	if !macd.Valid || !signal.Valid {
		return TrendUnknown
	}

	strong := macd.Decimal.Sub(signal.Decimal).Abs().GreaterThan(trendSeparation)
	if macd.Decimal.GreaterThan(signal.Decimal) {
		if strong {
			return TrendStrongBullish
		}
		return TrendWeakBullish
	}

	if strong {
		return TrendStrongBearish
	}
	return TrendWeakBearish
}

// RSICondition checks the oversold side before the overbought side.
func (defaultClassifier) RSICondition(rsi decimal.NullDecimal, buy, sell decimal.Decimal) RSICondition {
	if !rsi.Valid {
		return RSIUnknown
	}
	v := rsi.Decimal

	switch {
	case v.LessThanOrEqual(buy.Sub(extremeOffset)):
		return RSIExtremelyOversold
	case v.LessThanOrEqual(buy):
		return RSIOversold
	case v.GreaterThanOrEqual(sell.Add(extremeOffset)):
		return RSIExtremelyOverbought
	case v.GreaterThanOrEqual(sell):
		return RSIOverbought
	case v.GreaterThanOrEqual(neutralLow) && v.LessThanOrEqual(neutralHigh):
		return RSINeutral
	case v.LessThan(neutralLow):
		return RSIApproachingOversold
	default:
		return RSIApproachingOverbought
	}
}
