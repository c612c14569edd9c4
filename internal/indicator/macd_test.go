package indicator

import (
	"errors"
	"testing"

	"github.com/newthinker/tickertalk/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMACD_HistogramIdentity(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		closes := randomWalk(252, seed)
		m, err := MACD(closes)
		require.NoError(t, err)
		assert.Equal(t, m.MACD-m.Signal, m.Histogram, "seed %d", seed)
	}
}

func TestMACD_MatchesEMADifference(t *testing.T) {
	closes := randomWalk(120, 11)

	m, err := MACD(closes)
	require.NoError(t, err)

	fast, _ := ExponentialMovingAverage(closes, MACDFast)
	slow, _ := ExponentialMovingAverage(closes, MACDSlow)
	assert.InDelta(t, fast-slow, m.MACD, 1e-9)
}

func TestMACD_RisingSeriesIsPositive(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	m, err := MACD(closes)
	require.NoError(t, err)
	assert.Greater(t, m.MACD, 0.0)
}

func TestMACD_InsufficientData(t *testing.T) {
	_, err := MACD(constant(25, 10))
	assert.True(t, errors.Is(err, core.ErrInsufficientData))

	_, err = MACD(constant(26, 10))
	assert.NoError(t, err)

	_, err = MACDWith(constant(40, 10), 0, 26, 9)
	assert.True(t, errors.Is(err, core.ErrInsufficientData))
}
