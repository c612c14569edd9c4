package indicator

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/newthinker/tickertalk/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomWalk builds a deterministic positive price path.
func randomWalk(n int, seed uint64) []float64 {
	r := rand.New(rand.NewSource(int64(seed*31 + 1)))
	closes := make([]float64, n)
	price := 100.0
	for i := range closes {
		price *= 1 + (r.Float64()-0.5)*0.04
		closes[i] = price
	}
	return closes
}

func constant(n int, v float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = v
	}
	return closes
}

func TestEMASeries_Recurrence(t *testing.T) {
	// span 3 -> alpha 0.5
	got := EMASeries([]float64{1, 2, 3}, 3)
	assert.Equal(t, []float64{1, 1.5, 2.25}, got)
}

func TestEMASeries_UsesWholeHistory(t *testing.T) {
	base := randomWalk(100, 3)
	changed := append([]float64{}, base...)
	changed[0] += 10

	a := EMASeries(base, 10)
	b := EMASeries(changed, 10)
	assert.NotEqual(t, a[len(a)-1], b[len(b)-1], "first point should still influence the final EMA")
}

func TestExponentialMovingAverage(t *testing.T) {
	v, err := ExponentialMovingAverage([]float64{1, 2, 3}, 3)
	require.NoError(t, err)
	assert.Equal(t, 2.25, v)

	// span 1 tracks the latest value exactly
	v, err = ExponentialMovingAverage([]float64{5, 9, 4}, 1)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
}

func TestExponentialMovingAverage_Errors(t *testing.T) {
	_, err := ExponentialMovingAverage(nil, 10)
	assert.True(t, errors.Is(err, core.ErrEmptySeries))

	_, err = ExponentialMovingAverage([]float64{1, 2}, 0)
	assert.True(t, errors.Is(err, core.ErrInsufficientData))

	assert.Empty(t, EMASeries([]float64{1}, 0))
	assert.Empty(t, EMASeries(nil, 5))
}

func TestConstantSeries_Identities(t *testing.T) {
	const v = 42.5
	closes := constant(60, v)

	sma, err := SimpleMovingAverage(closes, 20)
	require.NoError(t, err)
	assert.InDelta(t, v, sma, 1e-9)

	ema, err := ExponentialMovingAverage(closes, 20)
	require.NoError(t, err)
	assert.InDelta(t, v, ema, 1e-9)

	rsi, err := RelativeStrengthIndex(closes, DefaultRSIPeriod)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rsi)

	macd, err := MACD(closes)
	require.NoError(t, err)
	assert.InDelta(t, 0, macd.MACD, 1e-9)
	assert.InDelta(t, 0, macd.Signal, 1e-9)
}
