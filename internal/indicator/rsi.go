package indicator

import (
	"fmt"

	"github.com/newthinker/tickertalk/internal/core"
)

// DefaultRSIPeriod is the classic Wilder lookback.
const DefaultRSIPeriod = 14

// RelativeStrengthIndex computes Wilder's RSI at the last close.
//
// Gains and losses are smoothed with alpha = 1/period starting from the
// first delta, so the full history contributes to the result. A smoothed
// loss of exactly zero yields 100.
func RelativeStrengthIndex(closes []float64, period int) (float64, error) {
	if period < 1 {
		return 0, core.WrapError(core.ErrInsufficientData, fmt.Errorf("RSI period must be >= 1, got %d", period))
	}
	if len(closes) < period+1 {
		return 0, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("RSI(%d) needs %d points, have %d", period, period+1, len(closes)))
	}

	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i-1] = delta
		} else {
			losses[i-1] = -delta
		}
	}

	alpha := 1.0 / float64(period)
	avgGain := smooth(gains, alpha)
	avgLoss := smooth(losses, alpha)

	gain := avgGain[len(avgGain)-1]
	loss := avgLoss[len(avgLoss)-1]
	if loss == 0 {
		return 100, nil
	}

	rs := gain / loss
	return 100 - (100 / (1 + rs)), nil
}
