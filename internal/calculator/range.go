package calculator

import (
	"errors"

	"gonum.org/v1/gonum/floats"
)

// Trading days in a year and in a month.
const (
	YearLookback  = 252
	MonthLookback = 22
)

// CalculateRange returns the high and low of the most recent lookback prices.
// Shorter series use every available price.
func CalculateRange(prices []float64, lookback int) (high, low float64, err error) {
	if len(prices) == 0 {
		return 0, 0, errors.New("no prices provided")
	}
	if lookback <= 0 {
		return 0, 0, errors.New("lookback must be positive")
	}
	start := len(prices) - lookback
	if start < 0 {
		start = 0
	}
	window := prices[start:]
	return floats.Max(window), floats.Min(window), nil
}

// CalculateRangePosition returns where current sits within [low, high] (0.0~1.0).
func CalculateRangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
