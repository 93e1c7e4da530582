// Package calculator holds the indicator arithmetic over closing-price series.
// Series are ordered oldest first.
package calculator

import (
	"errors"
	"fmt"
)

// ErrNotEnoughData is returned when a series is shorter than an indicator needs.
var ErrNotEnoughData = errors.New("not enough data")

func notEnough(name string, need, have int) error {
	return fmt.Errorf("%w for %s: need %d points, have %d", ErrNotEnoughData, name, need, have)
}

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, notEnough("SMA", period, len(prices))
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// MACross describes a fast/slow simple moving average pair at the latest
// point and whether the pair crossed on that point.
type MACross struct {
	Fast        float64
	Slow        float64
	GoldenCross bool
	DeathCross  bool
}

// CalculateMACross compares the fast and slow SMAs at the last two points.
// A cross is only reported when the previous point is also computable.
func CalculateMACross(prices []float64, fast, slow int) (MACross, error) {
	if fast <= 0 || slow <= fast {
		return MACross{}, errors.New("periods must satisfy 0 < fast < slow")
	}
	f, err := CalculateSMA(prices, fast)
	if err != nil {
		return MACross{}, err
	}
	s, err := CalculateSMA(prices, slow)
	if err != nil {
		return MACross{}, err
	}
	out := MACross{Fast: f, Slow: s}
	if len(prices) > slow {
		prev := prices[:len(prices)-1]
		pf, _ := CalculateSMA(prev, fast)
		ps, _ := CalculateSMA(prev, slow)
		out.GoldenCross = pf <= ps && f > s
		out.DeathCross = pf >= ps && f < s
	}
	return out, nil
}
