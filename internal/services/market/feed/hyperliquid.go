package feed

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/momentum/internal/domain"
)

// MidsReader is the part of the Hyperliquid Info client the feed uses.
// *hyperliquid.Info satisfies it.
type MidsReader interface {
	AllMids(ctx context.Context) (map[string]string, error)
}

// HyperliquidFeed reads mid prices from the public Hyperliquid Info API.
// Mids are keyed by base coin; the endpoint carries no volume, so it is zero.
type HyperliquidFeed struct {
	info MidsReader
	now  func() time.Time
}

// NewHyperliquidFeed creates a Hyperliquid feed. No account key is needed.
func NewHyperliquidFeed(info MidsReader) *HyperliquidFeed {
	return &HyperliquidFeed{info: info, now: time.Now}
}

// FetchLatest fetches the current mid price for pair.From.
func (f *HyperliquidFeed) FetchLatest(ctx context.Context, pair domain.Pair) (*domain.Tick, error) {
	mids, err := f.info.AllMids(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "hyperliquid mids %s", pair.String())
	}

	mid, ok := mids[pair.From]
	if !ok || mid == "" {
		return nil, errors.Wrapf(ErrNoTicker, "hyperliquid %s", pair.From)
	}
	price, err := decimal.NewFromString(mid)
	if err != nil {
		return nil, errors.Wrapf(err, "parse hyperliquid mid %q", mid)
	}

	return &domain.Tick{Time: f.now().UTC(), Price: price, Volume: decimal.Zero}, nil
}
