package internal

import (
	"context"
	"fmt"

	binance "github.com/adshao/go-binance/v2"
	bybit "github.com/hirokisan/bybit/v2"
	hyperliquid "github.com/sonirico/go-hyperliquid"
	"go.uber.org/zap"

	"github.com/vadiminshakov/momentum/internal/services/market/feed"
)

const hyperliquidAPIURL = "https://api.hyperliquid.xyz"

// newFeed creates the market feed for the given client type.
// This is the single point of truth for dispatching to platform-specific implementations.
func newFeed(client any, logger *zap.Logger) (feed.Feed, error) {
	var f feed.Feed
	switch c := client.(type) {
	case *binance.Client:
		f = feed.NewBinanceFeed(c)
	case *bybit.Client:
		f = feed.NewBybitFeed(c)
	case *hyperliquid.Info:
		f = feed.NewHyperliquidFeed(c)
	default:
		return nil, fmt.Errorf("unsupported client type: %T", client)
	}

	return feed.NewRetryingFeed(logger, f), nil
}

// NewClient builds the exchange client for platform. Empty keys restrict
// binance and bybit to public endpoints; simulate reads public Binance
// prices and hyperliquid only uses its keyless Info API.
func NewClient(platform, apiKey, apiSecret string) (any, error) {
	switch platform {
	case "binance":
		return binance.NewClient(apiKey, apiSecret), nil
	case "bybit":
		client := bybit.NewClient()
		if apiKey != "" && apiSecret != "" {
			client = client.WithAuth(apiKey, apiSecret)
		}
		return client, nil
	case "hyperliquid":
		return hyperliquid.NewInfo(context.Background(), hyperliquidAPIURL, true, nil, nil), nil
	case "simulate":
		return binance.NewClient("", ""), nil
	default:
		return nil, fmt.Errorf("unsupported platform %q", platform)
	}
}

// NewMarketFeed builds the retrying feed for platform.
func NewMarketFeed(platform, apiKey, apiSecret string, logger *zap.Logger) (feed.Feed, error) {
	client, err := NewClient(platform, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	return newFeed(client, logger)
}
