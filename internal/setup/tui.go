// Package setup is the interactive first-run wizard.
package setup

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/vadiminshakov/momentum/config"
	"github.com/vadiminshakov/momentum/internal/domain"
	"github.com/vadiminshakov/momentum/internal/storage/thresholds"
)

const title = "MOMENTUM SETUP WIZARD"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// answers holds the raw wizard inputs.
type answers struct {
	platform        string
	pair            string
	tradeSize       string
	stopLoss        string
	stopProfit      string
	rsiBuy          string
	rsiSell         string
	indicatorWindow string
	loopInterval    string
	active          bool
}

func defaultAnswers() answers {
	th := domain.DefaultThresholds()
	return answers{
		platform:        "simulate",
		pair:            "BTC_USDT",
		tradeSize:       formatFloat(th.TradeSize),
		stopLoss:        formatFloat(th.StopLoss),
		stopProfit:      formatFloat(th.StopProfit),
		rsiBuy:          formatFloat(th.RSIBuy),
		rsiSell:         formatFloat(th.RSISell),
		indicatorWindow: strconv.Itoa(th.IndicatorWindow),
		loopInterval:    strconv.Itoa(th.LoopInterval),
		active:          th.Active,
	}
}

func screen(step string) {
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render(title))
	fmt.Println(stepStyle.Render(step))
}

// RunTUI launches the terminal configuration wizard and writes the app
// config to configPath. Thresholds go to the path named in the config.
func RunTUI(configPath string) error {
	a := defaultAnswers()
	var confirm bool

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render(title))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Paper-trade MACD and RSI signals on a single pair.\n"))

	fmt.Println(stepStyle.Render("STEP 1: MARKET"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select market data source").
				Options(
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
					huh.NewOption("Hyperliquid", "hyperliquid"),
					huh.NewOption("Simulation", "simulate"),
				).
				Value(&a.platform),
			huh.NewInput().
				Title("Trading Pair").
				Description("Must contain underscore (e.g. BTC_USDT)").
				Value(&a.pair).
				Validate(validatePair),
		),
	).Run()
	if err != nil {
		return err
	}

	screen("STEP 2: RISK")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trade size").
				Description("Quantity per recorded trade (0.001-1)").
				Value(&a.tradeSize).
				Validate(validateRange(0.001, 1)),
			huh.NewInput().
				Title("Stop loss").
				Description("Fraction of reference price (0.005-0.1)").
				Value(&a.stopLoss).
				Validate(validateRange(0.005, 0.1)),
			huh.NewInput().
				Title("Take profit").
				Description("Fraction of reference price (0.005-0.15)").
				Value(&a.stopProfit).
				Validate(validateRange(0.005, 0.15)),
		),
	).Run()
	if err != nil {
		return err
	}

	screen("STEP 3: INDICATORS")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("RSI buy threshold").
				Value(&a.rsiBuy).
				Validate(validateRange(10, 40)),
			huh.NewInput().
				Title("RSI sell threshold").
				Value(&a.rsiSell).
				Validate(validateRange(60, 90)),
			huh.NewInput().
				Title("Indicator window").
				Description("Base window, periods are derived from it (10-50)").
				Value(&a.indicatorWindow).
				Validate(validateRange(10, 50)),
			huh.NewInput().
				Title("Loop interval, seconds").
				Description("30-300").
				Value(&a.loopInterval).
				Validate(validateRange(30, 300)),
			huh.NewConfirm().
				Title("Record trades?").
				Affirmative("Active").
				Negative("Observe only").
				Value(&a.active),
		),
	).Run()
	if err != nil {
		return err
	}

	cfg, th, err := a.build()
	if err != nil {
		return err
	}

	screen("FINAL CONFIRMATION")
	periods := th.Periods()
	summary := fmt.Sprintf(
		"Source: %s\nPair: %s\nTrade size: %v\nStop loss / take profit: %v / %v\nRSI: %v / %v\nWindow: %d (RSI %d, MACD %d/%d/%d)\nInterval: %s\n",
		cfg.Platform, cfg.Pair, th.TradeSize, th.StopLoss, th.StopProfit, th.RSIBuy, th.RSISell,
		th.IndicatorWindow, periods.RSI, periods.MACDFast, periods.MACDSlow, periods.MACDSignal, th.Interval(),
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return errors.New("setup cancelled by user")
	}

	if err := save(configPath, cfg, th); err != nil {
		return err
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(
		fmt.Sprintf("\n✓ Configuration saved to %s\nStarting bot...", configPath)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message

	return nil
}

// build turns the answers into an app config and thresholds.
func (a answers) build() (config.Config, domain.ThresholdConfig, error) {
	cfg, err := config.Default()
	if err != nil {
		return config.Config{}, domain.ThresholdConfig{}, err
	}
	cfg.Platform = a.platform

	pair, err := domain.ParsePair(a.pair)
	if err != nil {
		return config.Config{}, domain.ThresholdConfig{}, err
	}
	cfg.Pair = pair.String()

	th := domain.DefaultThresholds()
	th.Active = a.active

	floats := []struct {
		raw string
		dst *float64
	}{
		{a.tradeSize, &th.TradeSize},
		{a.stopLoss, &th.StopLoss},
		{a.stopProfit, &th.StopProfit},
		{a.rsiBuy, &th.RSIBuy},
		{a.rsiSell, &th.RSISell},
	}
	for _, f := range floats {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return config.Config{}, domain.ThresholdConfig{}, errors.Wrapf(err, "parse %q", f.raw)
		}
		*f.dst = v
	}

	if th.IndicatorWindow, err = strconv.Atoi(a.indicatorWindow); err != nil {
		return config.Config{}, domain.ThresholdConfig{}, errors.Wrap(err, "parse indicator window")
	}
	if th.LoopInterval, err = strconv.Atoi(a.loopInterval); err != nil {
		return config.Config{}, domain.ThresholdConfig{}, errors.Wrap(err, "parse loop interval")
	}

	return cfg, th, nil
}

func save(configPath string, cfg config.Config, th domain.ThresholdConfig) error {
	if err := thresholds.NewFileStore(cfg.ThresholdsPath).Save(th); err != nil {
		return errors.Wrap(err, "failed to save thresholds")
	}
	if err := config.Save(configPath, cfg); err != nil {
		return errors.Wrap(err, "failed to save config file")
	}
	return nil
}

func validatePair(s string) error {
	_, err := domain.ParsePair(s)
	return err
}

func validateRange(lo, hi float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.New("must be a valid number")
		}
		if v < lo || v > hi {
			return fmt.Errorf("must be between %v and %v", lo, hi)
		}
		return nil
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
