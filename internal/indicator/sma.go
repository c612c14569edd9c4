package indicator

import (
	"fmt"

	"github.com/newthinker/tickertalk/internal/core"
)

// LatestPrice returns the most recent close
func LatestPrice(closes []float64) (float64, error) {
	if len(closes) == 0 {
		return 0, core.ErrEmptySeries
	}
	return closes[len(closes)-1], nil
}

// SMA calculates Simple Moving Average
// Returns slice of length: len(prices) - period + 1
func SMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-period+1)

	// Calculate first SMA
	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	result = append(result, sum/float64(period))

	// Rolling calculation
	for i := period; i < len(prices); i++ {
		sum = sum - prices[i-period] + prices[i]
		result = append(result, sum/float64(period))
	}

	return result
}

// SimpleMovingAverage returns the mean of the trailing window closes.
func SimpleMovingAverage(closes []float64, window int) (float64, error) {
	if window < 1 || window > len(closes) {
		return 0, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("SMA window %d needs at least %d points, have %d", window, max(window, 1), len(closes)))
	}

	var sum float64
	for _, v := range closes[len(closes)-window:] {
		sum += v
	}
	return sum / float64(window), nil
}
