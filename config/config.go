// Package config loads the application settings: which exchange to poll,
// where the stores live and how the web API is served. Trading thresholds
// are not part of it, they live in their own hot-reloaded file.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/momentum/internal/domain"
)

const DefaultPath = "config.yaml"

// env keys for exchange credentials
const (
	EnvAPIKey    = "MOMENTUM_API_KEY"
	EnvAPISecret = "MOMENTUM_API_SECRET"
)

type Config struct {
	Platform       string        `yaml:"platform" default:"simulate" validate:"oneof=binance bybit hyperliquid simulate"`
	Pair           string        `yaml:"pair" default:"BTC_USDT" validate:"required"`
	ThresholdsPath string        `yaml:"thresholds_path" default:"./data/thresholds.yaml" validate:"required"`
	LedgerDir      string        `yaml:"ledger_dir" default:"./wal/ledger" validate:"required"`
	HistoryDB      string        `yaml:"history_db" default:"./data/market_data.db" validate:"required"`
	CacheSize      int           `yaml:"cache_size" default:"100" validate:"gte=1,lte=10000"`
	ErrorBackoff   time.Duration `yaml:"error_backoff" default:"5s" validate:"gt=0"`

	Web  WebConfig  `yaml:"web"`
	Auth AuthConfig `yaml:"auth"`

	APIKey    string `yaml:"-"`
	APISecret string `yaml:"-"`
}

type WebConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Addr    string `yaml:"addr" default:":5000" validate:"required"`
}

type AuthConfig struct {
	UsersPath     string        `yaml:"users_path" default:"./data/users.yaml" validate:"required"`
	SessionTTL    time.Duration `yaml:"session_ttl" default:"24h" validate:"gt=0"`
	SweepInterval time.Duration `yaml:"sweep_interval" default:"10m" validate:"gt=0"`
}

// TradingPair parses the configured pair.
func (c Config) TradingPair() (domain.Pair, error) {
	return domain.ParsePair(c.Pair)
}

// Flags are the command line options.
type Flags struct {
	ConfigPath string
	Setup      bool
}

// ParseFlags parses os.Args.
func ParseFlags() Flags {
	var f Flags
	flag.StringVar(&f.ConfigPath, "config", DefaultPath, "path to yaml config")
	flag.BoolVar(&f.Setup, "setup", false, "run interactive setup wizard")
	flag.Parse()

	return f
}

// Default returns the config with all defaults applied.
func Default() (Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "apply config defaults")
	}
	return cfg, nil
}

// Load reads the config at path. A missing file yields defaults.
// Exchange credentials come from the environment, optionally via a .env file.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	payload, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(payload, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}

	// .env is optional
	_ = godotenv.Load()
	cfg.APIKey = os.Getenv(EnvAPIKey)
	cfg.APISecret = os.Getenv(EnvAPISecret)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks field constraints and the pair format.
func (c Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	})

	if err := v.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	if _, err := c.TradingPair(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	return nil
}

// Save writes cfg as YAML, creating parent directories.
func Save(path string, cfg Config) error {
	payload, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return errors.Wrapf(err, "write config %s", path)
	}

	return nil
}
