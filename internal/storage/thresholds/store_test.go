package thresholds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/momentum/internal/domain"
)

func TestFileStore_MissingFileCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "thresholds.yaml")
	store := NewFileStore(path)

	cfg, warnings := store.Load()
	assert.Equal(t, domain.DefaultThresholds(), cfg)
	assert.Empty(t, warnings)

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestFileStore_MalformedFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trade_size: [oops"), 0o644))

	cfg, warnings := NewFileStore(path).Load()
	assert.Equal(t, domain.DefaultThresholds(), cfg)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "malformed")
}

func TestFileStore_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stop_loss: 0.015\nactive: false\n"), 0o644))

	cfg, warnings := NewFileStore(path).Load()
	assert.Empty(t, warnings)
	assert.Equal(t, 0.015, cfg.StopLoss)
	assert.False(t, cfg.Active)
	assert.Equal(t, 26, cfg.IndicatorWindow)
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	store := NewFileStore(path)

	want := domain.DefaultThresholds()
	want.TradeSize = 0.05
	want.LoopInterval = 90
	want.IndicatorWindow = 20
	require.NoError(t, store.Save(want))

	got, warnings := store.Load()
	assert.Empty(t, warnings)
	assert.Equal(t, want, got)

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_Validate(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "thresholds.yaml"))

	tests := []struct {
		name     string
		mutate   func(c *domain.ThresholdConfig)
		contains []string
	}{
		{
			name:     "defaults are clean",
			mutate:   func(c *domain.ThresholdConfig) {},
			contains: nil,
		},
		{
			name:     "below hard minimum skips recommended hint",
			mutate:   func(c *domain.ThresholdConfig) { c.TradeSize = 0.0001 },
			contains: []string{"trade_size=0.0001 is below minimum (0.001)"},
		},
		{
			name:     "above hard maximum",
			mutate:   func(c *domain.ThresholdConfig) { c.LoopInterval = 301 },
			contains: []string{"loop_interval=301 is above maximum (300)"},
		},
		{
			name:     "outside recommended range",
			mutate:   func(c *domain.ThresholdConfig) { c.IndicatorWindow = 40 },
			contains: []string{"indicator_window=40 is above recommended range (20-30)"},
		},
		{
			name: "stop loss above stop profit",
			mutate: func(c *domain.ThresholdConfig) {
				c.StopLoss = 0.04
				c.StopProfit = 0.03
			},
			contains: []string{"stop_loss is not below stop_profit"},
		},
		{
			name: "rsi thresholds inverted",
			mutate: func(c *domain.ThresholdConfig) {
				c.RSIBuy = 80
				c.RSISell = 70
			},
			contains: []string{
				"rsi_buy_threshold=80 is above maximum (40)",
				"rsi_buy_threshold should be less than rsi_sell_threshold",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DefaultThresholds()
			tt.mutate(&cfg)
			warnings := store.Validate(cfg)

			if len(tt.contains) == 0 {
				assert.Empty(t, warnings)
				return
			}
			require.Len(t, warnings, len(tt.contains), "%v", warnings)
			for i, want := range tt.contains {
				assert.Contains(t, warnings[i], want)
			}
		})
	}
}
