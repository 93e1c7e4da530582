package calculator

import "errors"

// CalculateEMASeries returns the exponential moving average at every point.
// The series is seeded with the first price and uses alpha = 2/(period+1).
func CalculateEMASeries(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(prices) == 0 {
		return nil, notEnough("EMA", 1, 0)
	}
	alpha := 2.0 / float64(period+1)
	out := make([]float64, len(prices))
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = alpha*prices[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}

// MACD holds the latest MACD line, signal line and histogram, plus the
// histogram one point earlier for crossover detection.
type MACD struct {
	Line          float64
	Signal        float64
	Histogram     float64
	PrevHistogram float64
}

// CalculateMACD computes MACD(fast, slow, signal). At least slow points are
// required.
func CalculateMACD(prices []float64, fast, slow, signal int) (MACD, error) {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return MACD{}, errors.New("periods must satisfy 0 < fast < slow and signal > 0")
	}
	if len(prices) < slow {
		return MACD{}, notEnough("MACD", slow, len(prices))
	}
	fastEMA, err := CalculateEMASeries(prices, fast)
	if err != nil {
		return MACD{}, err
	}
	slowEMA, err := CalculateEMASeries(prices, slow)
	if err != nil {
		return MACD{}, err
	}
	line := make([]float64, len(prices))
	for i := range prices {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	sig, err := CalculateEMASeries(line, signal)
	if err != nil {
		return MACD{}, err
	}

	n := len(prices) - 1
	return MACD{
		Line:          line[n],
		Signal:        sig[n],
		Histogram:     line[n] - sig[n],
		PrevHistogram: line[n-1] - sig[n-1],
	}, nil
}
