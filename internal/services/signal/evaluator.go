// Package signal turns an enriched price observation and the trade ledger
// into a trading decision. Risk exits always take priority over entries.
package signal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/momentum/internal/domain"
)

// Input is everything a single evaluation looks at.
type Input struct {
	// Observation is the current enriched tick, nil when the fetch failed.
	Observation *domain.PriceObservation
	// History is the rolling history, oldest first, ending with Observation.
	History    []domain.PriceObservation
	Ledger     []domain.LedgerEntry
	Thresholds domain.ThresholdConfig
}

// Decision is the outcome of one evaluation.
type Decision struct {
	Signal   domain.Signal
	Execute  bool
	Reason   string
	Position domain.PositionState
}

// Evaluator is a pure decision function over its Input.
type Evaluator struct {
	cls classifier
}

// NewEvaluator creates an evaluator with the standard MACD/RSI classifiers.
func NewEvaluator() *Evaluator {
	return &Evaluator{cls: defaultClassifier{}}
}

var one = decimal.NewFromInt(1)

type exitRule struct {
	kind   domain.PositionKind
	signal domain.Signal
	name   string
	hit    func(price, ref, stopLoss, stopProfit decimal.Decimal) bool
}

// exitRules are checked in order; the first hit wins.
var exitRules = []exitRule{
	{
		kind:   domain.PositionLong,
		signal: domain.SignalSellStopLoss,
		name:   "long stop loss",
		hit: func(p, r, sl, _ decimal.Decimal) bool {
			return p.LessThanOrEqual(r.Mul(one.Sub(sl)))
		},
	},
	{
		kind:   domain.PositionLong,
		signal: domain.SignalSellTakeProfit,
		name:   "long take profit",
		hit: func(p, r, _, sp decimal.Decimal) bool {
			return p.GreaterThanOrEqual(r.Mul(one.Add(sp)))
		},
	},
	{
		kind:   domain.PositionShort,
		signal: domain.SignalBuyStopLoss,
		name:   "short stop loss",
		hit: func(p, r, sl, _ decimal.Decimal) bool {
			return p.GreaterThanOrEqual(r.Mul(one.Add(sl)))
		},
	},
	{
		kind:   domain.PositionShort,
		signal: domain.SignalBuyTakeProfit,
		name:   "short take profit",
		hit: func(p, r, _, sp decimal.Decimal) bool {
			return p.LessThanOrEqual(r.Mul(one.Sub(sp)))
		},
	},
}

// Evaluate returns the decision for in. It never fails and has no side effects.
func (e *Evaluator) Evaluate(in Input) Decision {
	th := in.Thresholds
	if !th.Active || in.Observation == nil {
		return Decision{Signal: domain.SignalNone, Reason: "inactive or no data"}
	}

	obs := in.Observation
	position := domain.CurrentPosition(in.Ledger)

	if position.IsOpen() {
		if position.ReferencePrice.Valid {
			if d, ok := checkExits(position, obs.Price, th); ok {
				return d
			}
		}
		return Decision{Signal: domain.SignalHold, Reason: "position open", Position: position}
	}

	if !obs.HasIndicators() {
		return Decision{Signal: domain.SignalNone, Reason: "insufficient indicator history", Position: position}
	}

	f := e.classify(obs, in.History, th)

	if r, ok := firstMatch(buyRules, f); ok {
		return Decision{Signal: domain.SignalBuy, Execute: true, Reason: r.reason(f), Position: position}
	}
	if r, ok := firstMatch(sellRules, f); ok {
		return Decision{Signal: domain.SignalSell, Execute: true, Reason: r.reason(f), Position: position}
	}

	return Decision{
		Signal: domain.SignalHold,
		Reason: fmt.Sprintf("RSI %s (%s), MACD %s, crossover %s",
			f.rsi.StringFixed(1), f.rsiZone, f.trend, f.crossover.Direction),
		Position: position,
	}
}

func checkExits(position domain.PositionState, price decimal.Decimal, th domain.ThresholdConfig) (Decision, bool) {
	ref := position.ReferencePrice.Decimal
	sl := decimal.NewFromFloat(th.StopLoss)
	sp := decimal.NewFromFloat(th.StopProfit)

	for _, r := range exitRules {
		if r.kind != position.Kind || !r.hit(price, ref, sl, sp) {
			continue
		}
		pnl, _ := position.UnrealizedPnLPercent(price)
		return Decision{
			Signal:   r.signal,
			Execute:  true,
			Reason:   fmt.Sprintf("%s at %s%%", r.name, pnl.StringFixed(2)),
			Position: position,
		}, true
	}

	return Decision{}, false
}

func (e *Evaluator) classify(obs *domain.PriceObservation, history []domain.PriceObservation, th domain.ThresholdConfig) features {
	macd, signal := obs.MACD.Decimal, obs.MACDSignal.Decimal

	return features{
		rsi:       obs.RSI.Decimal,
		macd:      macd,
		crossover: e.cls.Crossover(history, macd, signal),
		trend:     e.cls.Trend(obs.MACD, obs.MACDSignal),
		rsiZone:   e.cls.RSICondition(obs.RSI, decimal.NewFromFloat(th.RSIBuy), decimal.NewFromFloat(th.RSISell)),
		macdBuy:   decimal.NewFromFloat(th.MACDBuy),
		macdSell:  decimal.NewFromFloat(th.MACDSell),
	}
}
