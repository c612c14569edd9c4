package indicator

import (
	"fmt"

	"github.com/newthinker/tickertalk/internal/core"
)

// EMASeries smooths values with alpha = 2/(span+1), seeded by the first
// value. Every output point depends on every earlier input.
func EMASeries(values []float64, span int) []float64 {
	if span < 1 || len(values) == 0 {
		return []float64{}
	}
	return smooth(values, 2.0/float64(span+1))
}

// ExponentialMovingAverage returns the final EMA value of closes.
func ExponentialMovingAverage(closes []float64, span int) (float64, error) {
	if len(closes) == 0 {
		return 0, core.ErrEmptySeries
	}
	if span < 1 {
		return 0, core.WrapError(core.ErrInsufficientData, fmt.Errorf("EMA span must be >= 1, got %d", span))
	}
	ema := EMASeries(closes, span)
	return ema[len(ema)-1], nil
}

// smooth applies y[0] = x[0], y[i] = alpha*x[i] + (1-alpha)*y[i-1].
func smooth(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}
