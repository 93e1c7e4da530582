package calculator

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CalculateVolatility returns the annualized standard deviation of simple
// daily returns, as a fraction.
func CalculateVolatility(prices []float64) (float64, error) {
	if len(prices) < 3 {
		return 0, notEnough("volatility", 3, len(prices))
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, prices[i]/prices[i-1]-1)
	}
	if len(returns) < 2 {
		return 0, notEnough("volatility", 3, len(returns)+1)
	}
	return stat.StdDev(returns, nil) * math.Sqrt(YearLookback), nil
}
