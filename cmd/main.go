// Command momentum runs the MACD/RSI paper-trading signal bot for one pair.
// It polls a public exchange ticker, records simulated trades in a
// write-ahead-log ledger and serves an authenticated JSON API.
//
// Usage:
//
//	momentum --config config.yaml
//	momentum --setup   (interactive wizard)
//
// Optional environment variables (or .env):
//
//	MOMENTUM_API_KEY, MOMENTUM_API_SECRET
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/momentum/config"
	"github.com/vadiminshakov/momentum/internal"
	"github.com/vadiminshakov/momentum/internal/auth"
	"github.com/vadiminshakov/momentum/internal/metrics"
	"github.com/vadiminshakov/momentum/internal/services/execution"
	"github.com/vadiminshakov/momentum/internal/services/market/indicators"
	signalsvc "github.com/vadiminshakov/momentum/internal/services/signal"
	"github.com/vadiminshakov/momentum/internal/setup"
	"github.com/vadiminshakov/momentum/internal/storage/history"
	"github.com/vadiminshakov/momentum/internal/storage/ledger"
	"github.com/vadiminshakov/momentum/internal/storage/thresholds"
	"github.com/vadiminshakov/momentum/internal/web"
)

func main() {
	flags := config.ParseFlags()

	if flags.Setup {
		if err := setup.RunTUI(flags.ConfigPath); err != nil {
			log.Fatal(err)
		}
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("momentum stopped with error", zap.Error(err))
	}
	logger.Info("momentum stopped")
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pair, err := cfg.TradingPair()
	if err != nil {
		return err
	}

	marketFeed, err := internal.NewMarketFeed(cfg.Platform, cfg.APIKey, cfg.APISecret, logger)
	if err != nil {
		return err
	}

	ledgerStore, err := ledger.NewWALStore(cfg.LedgerDir)
	if err != nil {
		return err
	}
	defer ledgerStore.Close()

	historyStore, err := history.NewSQLiteStore(cfg.HistoryDB, pair)
	if err != nil {
		return err
	}
	defer historyStore.Close()

	thresholdStore := thresholds.NewFileStore(cfg.ThresholdsPath)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorderMetrics := metrics.New(reg)

	bot, err := internal.NewTradingBot(logger, internal.BotConfig{
		Pair:         pair,
		CacheSize:    cfg.CacheSize,
		ErrorBackoff: cfg.ErrorBackoff,
	}, internal.Deps{
		Feed:       marketFeed,
		Indicators: indicators.NewProvider(),
		Thresholds: thresholdStore,
		History:    historyStore,
		Ledger:     ledgerStore,
		Evaluator:  signalsvc.NewEvaluator(),
		Recorder:   execution.NewRecorder(logger, ledgerStore),
		Metrics:    recorderMetrics,
	})
	if err != nil {
		return err
	}

	logger.Info("Starting momentum",
		zap.String("platform", cfg.Platform),
		zap.String("pair", pair.String()),
		zap.String("thresholds", thresholdStore.Path()))

	var users *auth.UserStore
	if cfg.Web.Enabled {
		if users, err = auth.NewUserStore(logger, cfg.Auth.UsersPath); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := bot.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if cfg.Web.Enabled {
		sessions := auth.NewSessionStore(cfg.Auth.SessionTTL)

		server := web.NewServer(logger, cfg.Web.Addr, web.Deps{
			Thresholds: thresholdStore,
			Ledger:     ledgerStore,
			History:    historyStore,
			Users:      users,
			Sessions:   sessions,
			Gatherer:   reg,
			Stop:       stop,
		}, web.WithCacheSize(cfg.CacheSize))

		g.Go(func() error {
			sessions.RunSweeper(gctx, logger, cfg.Auth.SweepInterval)
			return nil
		})
		g.Go(func() error {
			return server.Start(gctx)
		})
	}

	return g.Wait()
}
