package feed

import (
	"context"
	"time"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/momentum/internal/domain"
)

// BybitFeed reads V5 spot tickers.
type BybitFeed struct {
	client *bybit.Client
	now    func() time.Time
}

// NewBybitFeed creates a Bybit feed.
func NewBybitFeed(client *bybit.Client) *BybitFeed {
	return &BybitFeed{client: client, now: time.Now}
}

// FetchLatest fetches the current spot ticker for pair.
// The bybit client has no context support; ctx is only checked up front.
func (f *BybitFeed) FetchLatest(ctx context.Context, pair domain.Pair) (*domain.Tick, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	symbol := bybit.SymbolV5(pair.Symbol())
	result, err := f.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: bybit.CategoryV5Spot,
		Symbol:   &symbol,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "bybit ticker %s", pair.String())
	}
	if result.Result.Spot == nil || len(result.Result.Spot.List) == 0 {
		return nil, errors.Wrapf(ErrNoTicker, "bybit %s", pair.String())
	}

	item := result.Result.Spot.List[0]
	price, err := decimal.NewFromString(item.LastPrice)
	if err != nil {
		return nil, errors.Wrapf(err, "parse bybit price %q", item.LastPrice)
	}
	volume, err := decimal.NewFromString(item.Volume24H)
	if err != nil {
		return nil, errors.Wrapf(err, "parse bybit volume %q", item.Volume24H)
	}

	return &domain.Tick{Time: f.now().UTC(), Price: price, Volume: volume}, nil
}
