package feed

import (
	"context"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/momentum/internal/domain"
)

// BinanceFeed reads the 24h rolling ticker, which carries both the last
// price and the base asset volume.
type BinanceFeed struct {
	client *binance.Client
	now    func() time.Time
}

// NewBinanceFeed creates a Binance feed. Public endpoints need no API keys.
func NewBinanceFeed(client *binance.Client) *BinanceFeed {
	return &BinanceFeed{client: client, now: time.Now}
}

// FetchLatest fetches the current ticker for pair.
func (f *BinanceFeed) FetchLatest(ctx context.Context, pair domain.Pair) (*domain.Tick, error) {
	stats, err := f.client.NewListPriceChangeStatsService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "binance ticker %s", pair.String())
	}
	if len(stats) == 0 {
		return nil, errors.Wrapf(ErrNoTicker, "binance %s", pair.String())
	}

	price, err := decimal.NewFromString(stats[0].LastPrice)
	if err != nil {
		return nil, errors.Wrapf(err, "parse binance price %q", stats[0].LastPrice)
	}
	volume, err := decimal.NewFromString(stats[0].Volume)
	if err != nil {
		return nil, errors.Wrapf(err, "parse binance volume %q", stats[0].Volume)
	}

	return &domain.Tick{Time: f.now().UTC(), Price: price, Volume: volume}, nil
}
