package internal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/momentum/internal/domain"
	"github.com/vadiminshakov/momentum/internal/services/market/indicators"
	"github.com/vadiminshakov/momentum/internal/services/signal"
)

const detailLogEvery = 5

type marketFeed interface {
	FetchLatest(ctx context.Context, pair domain.Pair) (*domain.Tick, error)
}

type indicatorProvider interface {
	Compute(history []domain.PriceObservation, window int) (indicators.Values, error)
}

type thresholdLoader interface {
	Load() (domain.ThresholdConfig, []string)
}

type historyStore interface {
	Append(ctx context.Context, obs domain.PriceObservation) error
	Recent(ctx context.Context, n int) ([]domain.PriceObservation, error)
}

type ledgerReader interface {
	All() []domain.LedgerEntry
}

type signalEvaluator interface {
	Evaluate(in signal.Input) signal.Decision
}

type tradeRecorder interface {
	Record(ctx context.Context, s domain.Signal, obs *domain.PriceObservation, th domain.ThresholdConfig) (domain.LedgerEntry, error)
}

type metricsRecorder interface {
	RecordCycle()
	RecordSignal(signal string)
	RecordTrade(side string)
	RecordError(kind string)
	RecordLastPrice(pair string, price float64)
	RecordLatency(op string, start time.Time)
}

// BotConfig holds the loop settings that do not live in the thresholds file.
type BotConfig struct {
	Pair         domain.Pair
	CacheSize    int
	ErrorBackoff time.Duration
}

// Deps are the collaborators of the trading loop.
type Deps struct {
	Feed       marketFeed
	Indicators indicatorProvider
	Thresholds thresholdLoader
	History    historyStore
	Ledger     ledgerReader
	Evaluator  signalEvaluator
	Recorder   tradeRecorder
	Metrics    metricsRecorder
}

// TradingBot runs the single periodic fetch, evaluate and record loop.
// The rolling history is owned by the loop; other readers use the stores.
type TradingBot struct {
	conf    BotConfig
	deps    Deps
	l       *zap.Logger
	history *domain.History

	loop         int
	lastWarnings string
}

// NewTradingBot creates a trading bot instance.
func NewTradingBot(l *zap.Logger, conf BotConfig, deps Deps) (*TradingBot, error) {
	if deps.Feed == nil || deps.Indicators == nil || deps.Thresholds == nil || deps.History == nil ||
		deps.Ledger == nil || deps.Evaluator == nil || deps.Recorder == nil || deps.Metrics == nil {
		return nil, errors.New("trading bot: all dependencies are required")
	}
	if conf.CacheSize <= 0 {
		return nil, fmt.Errorf("trading bot: cache size must be positive, got %d", conf.CacheSize)
	}

	return &TradingBot{
		conf:    conf,
		deps:    deps,
		l:       l.With(zap.String("pair", conf.Pair.String())),
		history: domain.NewHistory(conf.CacheSize),
	}, nil
}

// Run executes the trading loop until ctx is cancelled.
// A cycle in flight is never interrupted; cancellation is observed while sleeping.
func (b *TradingBot) Run(ctx context.Context) error {
	b.warmStart(ctx)
	b.logSummary()

	b.l.Info("Starting trading loop")

	for {
		if err := ctx.Err(); err != nil {
			b.l.Info("Context done, stopping trading loop")
			return err
		}

		wait := b.runCycle(context.WithoutCancel(ctx))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			b.l.Info("Context done, stopping trading loop")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// runCycle performs one iteration and returns how long to sleep afterwards.
func (b *TradingBot) runCycle(ctx context.Context) time.Duration {
	start := time.Now()
	defer b.deps.Metrics.RecordLatency("cycle", start)

	b.loop++
	b.deps.Metrics.RecordCycle()

	th, warnings := b.deps.Thresholds.Load()
	b.logWarnings(warnings)
	interval := th.Interval()

	tick, err := b.deps.Feed.FetchLatest(ctx, b.conf.Pair)
	if err != nil {
		b.deps.Metrics.RecordError("fetch")
		b.l.Warn("Failed to fetch market data, retrying next cycle", zap.Error(err))
		return interval
	}
	if !tick.Price.IsPositive() {
		b.deps.Metrics.RecordError("fetch")
		b.l.Warn("Exchange returned a non-positive price, dropping tick", zap.String("price", tick.Price.String()))
		return interval
	}

	obs, err := b.enrich(tick, th)
	if err != nil {
		b.deps.Metrics.RecordError("indicators")
		b.l.Error("Failed to compute indicators", zap.Error(err))
		return b.conf.ErrorBackoff
	}

	if err := b.deps.History.Append(ctx, obs); err != nil {
		b.deps.Metrics.RecordError("history")
		b.l.Error("Failed to save market data, skipping evaluation", zap.Error(err))
		return interval
	}
	b.history.Push(obs)
	price, _ := obs.Price.Float64()
	b.deps.Metrics.RecordLastPrice(b.conf.Pair.String(), price)

	evalStart := time.Now()
	decision := b.deps.Evaluator.Evaluate(signal.Input{
		Observation: &obs,
		History:     b.history.Snapshot(),
		Ledger:      b.deps.Ledger.All(),
		Thresholds:  th,
	})
	b.deps.Metrics.RecordLatency("evaluate", evalStart)
	b.deps.Metrics.RecordSignal(decision.Signal.String())

	if decision.Execute {
		entry, err := b.deps.Recorder.Record(ctx, decision.Signal, &obs, th)
		if err != nil {
			b.deps.Metrics.RecordError("ledger")
			b.l.Error("Failed to record trade, decision discarded",
				zap.String("signal", decision.Signal.String()), zap.Error(err))
		} else {
			b.deps.Metrics.RecordTrade(string(entry.Side))
			b.l.Info("Trade executed",
				zap.String("signal", decision.Signal.String()),
				zap.String("reason", decision.Reason),
				zap.String("entry", entry.String()))
		}
	} else if decision.Signal != domain.SignalNone && decision.Signal != domain.SignalHold {
		b.l.Info("Signal detected but not executed", zap.String("signal", decision.Signal.String()))
	}

	b.logStatus(obs, decision, th)

	return interval
}

// enrich computes indicators over the rolling history plus the new tick.
func (b *TradingBot) enrich(tick *domain.Tick, th domain.ThresholdConfig) (domain.PriceObservation, error) {
	obs := domain.PriceObservation{Time: tick.Time, Price: tick.Price, Volume: tick.Volume}

	window := append(b.history.Snapshot(), obs)
	values, err := b.deps.Indicators.Compute(window, th.IndicatorWindow)
	if err != nil {
		return domain.PriceObservation{}, errors.Wrap(err, "compute indicators")
	}

	obs.RSI = values.RSI
	obs.MACD = values.MACD
	obs.MACDSignal = values.MACDSignal

	return obs, nil
}

// warmStart preloads the rolling history from the history store.
func (b *TradingBot) warmStart(ctx context.Context) {
	recent, err := b.deps.History.Recent(ctx, b.history.Capacity())
	if err != nil {
		b.l.Warn("Failed to load historical data, starting empty", zap.Error(err))
		return
	}
	skipped := 0
	for _, obs := range recent {
		if !obs.Price.IsPositive() {
			skipped++
			continue
		}
		b.history.Push(obs)
	}
	if skipped > 0 {
		b.l.Warn("Skipped stored records with non-positive prices", zap.Int("skipped", skipped))
	}
}

func (b *TradingBot) logSummary() {
	th, warnings := b.deps.Thresholds.Load()
	b.logWarnings(warnings)
	periods := th.Periods()

	b.l.Info("Current trading configuration",
		zap.Int("indicator_window", th.IndicatorWindow),
		zap.Duration("loop_interval", th.Interval()),
		zap.Float64("trade_size", th.TradeSize),
		zap.Float64("stop_loss", th.StopLoss),
		zap.Float64("stop_profit", th.StopProfit),
		zap.Float64("rsi_buy", th.RSIBuy),
		zap.Float64("rsi_sell", th.RSISell),
		zap.Float64("macd_buy", th.MACDBuy),
		zap.Float64("macd_sell", th.MACDSell),
		zap.Float64("position_size_usdt", th.PositionSizeUSDT),
		zap.Bool("active", th.Active),
		zap.Int("rsi_window", periods.RSI),
		zap.Int("macd_fast", periods.MACDFast),
		zap.Int("macd_slow", periods.MACDSlow),
		zap.Int("signal_window", periods.MACDSignal),
	)

	if n, need := b.history.Len(), periods.MinRequired(); n < need {
		b.l.Warn("Not enough historical records for indicators, collecting data",
			zap.Int("records", n), zap.Int("required", need))
	} else {
		b.l.Info("Historical records loaded, indicators ready", zap.Int("records", n))
	}
}

// logWarnings logs threshold warnings when they change.
func (b *TradingBot) logWarnings(warnings []string) {
	joined := strings.Join(warnings, "; ")
	if joined == b.lastWarnings {
		return
	}
	b.lastWarnings = joined
	for _, w := range warnings {
		b.l.Warn("Parameter validation warning", zap.String("warning", w))
	}
}

func (b *TradingBot) logStatus(obs domain.PriceObservation, decision signal.Decision, th domain.ThresholdConfig) {
	fields := []zap.Field{
		zap.Int("loop", b.loop),
		zap.String("signal", decision.Signal.String()),
		zap.String("price", obs.Price.StringFixed(2)),
		zap.String("position", string(positionKind(decision.Position))),
	}

	if obs.HasIndicators() {
		fields = append(fields, zap.String("data", "indicators ready"))
	} else {
		fields = append(fields, zap.String("data",
			fmt.Sprintf("collecting data (%d/%d)", b.history.Len(), th.Periods().MinRequired())))
	}

	if pos := decision.Position; pos.IsOpen() && pos.ReferencePrice.Valid {
		pnl, _ := pos.UnrealizedPnLPercent(obs.Price)
		fields = append(fields,
			zap.String("reference_price", pos.ReferencePrice.Decimal.StringFixed(2)),
			zap.String("pnl_percent", pnl.StringFixed(2)))
	}

	b.l.Info("Status", fields...)

	if b.loop%detailLogEvery == 0 && obs.HasIndicators() {
		b.l.Info("Indicators",
			zap.String("rsi", obs.RSI.Decimal.StringFixed(1)),
			zap.String("macd", obs.MACD.Decimal.StringFixed(6)),
			zap.String("macd_signal", obs.MACDSignal.Decimal.StringFixed(6)))
	}
}

func positionKind(p domain.PositionState) domain.PositionKind {
	if p.Kind == "" {
		return domain.PositionNone
	}
	return p.Kind
}
