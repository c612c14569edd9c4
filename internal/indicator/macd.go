package indicator

import (
	"fmt"

	"github.com/newthinker/tickertalk/internal/core"
)

// Standard MACD parameters.
const (
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// MACD computes the 12/26/9 MACD triple at the last close.
func MACD(closes []float64) (core.MACDResult, error) {
	return MACDWith(closes, MACDFast, MACDSlow, MACDSignal)
}

// MACDWith computes MACD with custom spans. The MACD line is kept as a full
// series so the signal EMA sees its whole history.
func MACDWith(closes []float64, fast, slow, signal int) (core.MACDResult, error) {
	if fast < 1 || slow < 1 || signal < 1 {
		return core.MACDResult{}, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("MACD spans must be >= 1, got %d/%d/%d", fast, slow, signal))
	}
	need := max(fast, slow)
	if len(closes) < need {
		return core.MACDResult{}, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("MACD needs %d points, have %d", need, len(closes)))
	}

	fastEMA := EMASeries(closes, fast)
	slowEMA := EMASeries(closes, slow)

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine := EMASeries(line, signal)

	last := len(line) - 1
	return core.MACDResult{
		MACD:      line[last],
		Signal:    signalLine[last],
		Histogram: line[last] - signalLine[last],
	}, nil
}
