// Package feed fetches the latest ticker for a pair from an exchange.
package feed

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/momentum/internal/domain"
)

// ErrNoTicker is returned when an exchange answers without data for the pair.
var ErrNoTicker = errors.New("exchange returned no ticker")

// Feed returns the latest price and 24h volume for a pair.
type Feed interface {
	FetchLatest(ctx context.Context, pair domain.Pair) (*domain.Tick, error)
}
