// Package mocks provides in-memory implementations of collector interfaces for testing.
package mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/tickertalk/internal/core"
)

// SeriesProvider serves fixed close series per ticker and records calls.
type SeriesProvider struct {
	mu     sync.Mutex
	series map[string][]float64
	start  time.Time
	err    error
	calls  []string
}

// NewSeriesProvider creates an empty SeriesProvider. Series dates start on
// 2024-01-02 and advance one day per point.
func NewSeriesProvider() *SeriesProvider {
	return &SeriesProvider{
		series: make(map[string][]float64),
		start:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

// With registers closes for ticker and returns the provider.
func (m *SeriesProvider) With(ticker string, closes []float64) *SeriesProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[strings.ToUpper(ticker)] = append([]float64(nil), closes...)
	return m
}

// FailWith makes every fetch return err.
func (m *SeriesProvider) FailWith(err error) *SeriesProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// FetchDailyCloses implements collector.SeriesProvider.
func (m *SeriesProvider) FetchDailyCloses(ctx context.Context, ticker string, lookback time.Duration) (core.PriceSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, ticker)
	if m.err != nil {
		return core.PriceSeries{}, m.err
	}
	closes, ok := m.series[strings.ToUpper(ticker)]
	if !ok {
		return core.PriceSeries{}, core.ErrUnknownTicker
	}

	points := make([]core.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = core.PricePoint{Date: m.start.AddDate(0, 0, i), Close: c}
	}
	return core.PriceSeries{Ticker: strings.ToUpper(ticker), Points: points}, nil
}

// Calls returns the tickers fetched so far.
func (m *SeriesProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// HolderProvider serves fixed holder tables per ticker.
type HolderProvider struct {
	Holders map[string][]core.Holder
	Err     error
}

// FetchHolders implements collector.HolderProvider.
func (m *HolderProvider) FetchHolders(ctx context.Context, ticker string) ([]core.Holder, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	h, ok := m.Holders[strings.ToUpper(ticker)]
	if !ok {
		return nil, core.ErrUnknownTicker
	}
	return h, nil
}
