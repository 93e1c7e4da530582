package calculator

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"
)

// Bollinger holds the latest band values and where the last price sits
// between the bands (0 at lower, 1 at upper, clamped).
type Bollinger struct {
	Upper    float64
	Middle   float64
	Lower    float64
	Position float64
}

// CalculateBollinger computes Bollinger Bands over period with mult standard
// deviations.
func CalculateBollinger(prices []float64, period int, mult float64) (Bollinger, error) {
	if period <= 1 || mult <= 0 {
		return Bollinger{}, errors.New("period must exceed 1 and multiplier must be positive")
	}
	if len(prices) < period {
		return Bollinger{}, notEnough("Bollinger", period, len(prices))
	}

	upper, middle, lower := talib.BBands(prices, period, mult, mult, talib.SMA)
	n := len(prices) - 1
	if math.IsNaN(upper[n]) || math.IsNaN(lower[n]) {
		return Bollinger{}, notEnough("Bollinger", period, len(prices))
	}

	b := Bollinger{Upper: upper[n], Middle: middle[n], Lower: lower[n]}
	b.Position, _ = CalculateRangePosition(prices[n], b.Upper, b.Lower)
	return b, nil
}
