package calculator

import "errors"

// Stochastic is the %K/%D oscillator on a close-only series.
type Stochastic struct {
	K float64
	D float64
}

// CalculateStochastic computes %K over kPeriod and %D as the dPeriod SMA of %K.
// %K at each point is the position of the close within the trailing range.
func CalculateStochastic(prices []float64, kPeriod, dPeriod int) (Stochastic, error) {
	if kPeriod <= 0 || dPeriod <= 0 {
		return Stochastic{}, errors.New("periods must be positive")
	}
	need := kPeriod + dPeriod - 1
	if len(prices) < need {
		return Stochastic{}, notEnough("stochastic", need, len(prices))
	}

	ks := make([]float64, 0, dPeriod)
	for end := len(prices) - dPeriod + 1; end <= len(prices); end++ {
		window := prices[:end]
		high, low, err := CalculateRange(window, kPeriod)
		if err != nil {
			return Stochastic{}, err
		}
		pos, err := CalculateRangePosition(window[len(window)-1], high, low)
		if err != nil {
			return Stochastic{}, err
		}
		ks = append(ks, pos*100)
	}
	d, err := CalculateSMA(ks, dPeriod)
	if err != nil {
		return Stochastic{}, err
	}
	return Stochastic{K: ks[len(ks)-1], D: d}, nil
}
