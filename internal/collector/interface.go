package collector

import (
	"context"
	"time"

	"github.com/newthinker/tickertalk/internal/core"
)

// DefaultLookback is the trailing window fetched for indicator calculations.
const DefaultLookback = 365 * 24 * time.Hour

// SeriesProvider fetches daily close history.
type SeriesProvider interface {
	// FetchDailyCloses returns the daily closes of ticker covering lookback,
	// oldest first. Fails with core.ErrUnknownTicker or
	// core.ErrProviderUnavailable.
	FetchDailyCloses(ctx context.Context, ticker string, lookback time.Duration) (core.PriceSeries, error)
}

// HolderProvider fetches institutional holder tables.
type HolderProvider interface {
	FetchHolders(ctx context.Context, ticker string) ([]core.Holder, error)
}
