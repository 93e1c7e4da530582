package calculator

import "gonum.org/v1/gonum/stat"

// VolumeTrend compares the latest volume with the mean of the earlier ones
// and reports the direction of the latest close-to-close move.
type VolumeTrend struct {
	Current   float64
	Average   float64
	Ratio     float64
	Direction int // +1 up, -1 down, 0 flat
}

// CalculateVolumeTrend needs aligned closes and volumes of at least two
// points. A zero average volume gives a ratio of 1.
func CalculateVolumeTrend(prices, volumes []float64) (VolumeTrend, error) {
	if len(prices) != len(volumes) {
		return VolumeTrend{}, notEnough("volume", len(prices), len(volumes))
	}
	if len(volumes) < 2 {
		return VolumeTrend{}, notEnough("volume", 2, len(volumes))
	}
	n := len(volumes) - 1
	v := VolumeTrend{Current: volumes[n], Average: stat.Mean(volumes[:n], nil), Ratio: 1}
	if v.Average > 0 {
		v.Ratio = v.Current / v.Average
	}
	switch change := prices[n] - prices[n-1]; {
	case change > 0:
		v.Direction = 1
	case change < 0:
		v.Direction = -1
	}
	return v, nil
}
