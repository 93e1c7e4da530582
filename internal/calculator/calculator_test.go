package calculator

import (
	"math"
	"testing"

	"github.com/markcheno/go-talib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func wave(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 10*math.Sin(float64(i)/3) + float64(i%7)
	}
	return out
}

func TestCalculateSMA(t *testing.T) {
	v, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v, 1e-9)

	_, err = CalculateSMA([]float64{1, 2}, 3)
	assert.ErrorIs(t, err, ErrNotEnoughData)

	_, err = CalculateSMA([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestCalculateMACross(t *testing.T) {
	// A long decline followed by a sharp rally pulls the fast average
	// above the slow one.
	prices := append(linear(200, 300, -1), linear(50, 101, 6)...)
	x, err := CalculateMACross(prices, 50, 200)
	require.NoError(t, err)
	assert.Greater(t, x.Fast, x.Slow)

	_, err = CalculateMACross(prices[:199], 50, 200)
	assert.ErrorIs(t, err, ErrNotEnoughData)

	// Find the exact crossing point and check it is flagged only there.
	crossed := 0
	for n := 201; n <= len(prices); n++ {
		x, err := CalculateMACross(prices[:n], 50, 200)
		require.NoError(t, err)
		if x.GoldenCross {
			crossed++
		}
		assert.False(t, x.DeathCross)
	}
	assert.Equal(t, 1, crossed)
}

func TestCalculateRSI_MatchesTalib(t *testing.T) {
	prices := wave(60)
	got, err := CalculateRSI(prices, 14)
	require.NoError(t, err)

	want := talib.Rsi(prices, 14)
	assert.InDelta(t, want[len(want)-1], got, 1e-6)
}

func TestCalculateRSI_Edges(t *testing.T) {
	v, err := CalculateRSI(linear(15, 10, 1), 14)
	require.NoError(t, err)
	assert.Equal(t, 100.0, v)

	v, err = CalculateRSI(linear(15, 30, -1), 14)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = CalculateRSI(linear(14, 10, 1), 14)
	assert.ErrorIs(t, err, ErrNotEnoughData)
}

func TestCalculateMACD(t *testing.T) {
	_, err := CalculateMACD(linear(25, 10, 1), 12, 26, 9)
	assert.ErrorIs(t, err, ErrNotEnoughData)

	m, err := CalculateMACD(linear(26, 10, 1), 12, 26, 9)
	require.NoError(t, err)
	assert.Greater(t, m.Line, 0.0)
	assert.InDelta(t, m.Line-m.Signal, m.Histogram, 1e-12)

	flat := make([]float64, 40)
	for i := range flat {
		flat[i] = 50
	}
	m, err = CalculateMACD(flat, 12, 26, 9)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, m.Histogram, 1e-9)
	assert.InDelta(t, 0.0, m.PrevHistogram, 1e-9)
}

func TestCalculateEMASeries(t *testing.T) {
	out, err := CalculateEMASeries([]float64{10, 20}, 3)
	require.NoError(t, err)
	assert.Equal(t, 10.0, out[0])
	assert.InDelta(t, 15.0, out[1], 1e-12)

	_, err = CalculateEMASeries(nil, 3)
	assert.ErrorIs(t, err, ErrNotEnoughData)
}

func TestCalculateRange(t *testing.T) {
	high, low, err := CalculateRange([]float64{5, 1, 9, 3, 4}, 3)
	require.NoError(t, err)
	assert.Equal(t, 9.0, high)
	assert.Equal(t, 3.0, low)

	high, low, err = CalculateRange([]float64{5, 1}, YearLookback)
	require.NoError(t, err)
	assert.Equal(t, 5.0, high)
	assert.Equal(t, 1.0, low)

	_, _, err = CalculateRange(nil, 3)
	assert.Error(t, err)
}

func TestCalculateRangePosition(t *testing.T) {
	tests := []struct {
		name               string
		current, high, low float64
		want               float64
		wantErr            bool
	}{
		{"middle", 15, 20, 10, 0.5, false},
		{"at high", 20, 20, 10, 1, false},
		{"below low clamps", 5, 20, 10, 0, false},
		{"flat range", 10, 10, 10, 0.5, false},
		{"inverted", 10, 5, 20, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateRangePosition(tt.current, tt.high, tt.low)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCalculateStochastic(t *testing.T) {
	s, err := CalculateStochastic(linear(16, 10, 1), 14, 3)
	require.NoError(t, err)
	assert.Equal(t, 100.0, s.K)
	assert.Equal(t, 100.0, s.D)

	s, err = CalculateStochastic(linear(20, 50, -1), 14, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.K)

	_, err = CalculateStochastic(linear(15, 10, 1), 14, 3)
	assert.ErrorIs(t, err, ErrNotEnoughData)
}

func TestCalculateBollinger(t *testing.T) {
	prices := wave(40)
	b, err := CalculateBollinger(prices, 20, 2)
	require.NoError(t, err)
	assert.Greater(t, b.Upper, b.Middle)
	assert.Less(t, b.Lower, b.Middle)

	sma, err := CalculateSMA(prices, 20)
	require.NoError(t, err)
	assert.InDelta(t, sma, b.Middle, 1e-9)
	assert.GreaterOrEqual(t, b.Position, 0.0)
	assert.LessOrEqual(t, b.Position, 1.0)

	_, err = CalculateBollinger(prices[:19], 20, 2)
	assert.ErrorIs(t, err, ErrNotEnoughData)
}

func TestCalculateVolatility(t *testing.T) {
	flat := []float64{10, 10, 10, 10}
	v, err := CalculateVolatility(flat)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, v, 1e-12)

	v, err = CalculateVolatility([]float64{10, 11, 10, 11, 10})
	require.NoError(t, err)
	assert.Greater(t, v, 0.5)

	_, err = CalculateVolatility([]float64{10, 11})
	assert.ErrorIs(t, err, ErrNotEnoughData)
}

func TestCalculateVolumeTrend(t *testing.T) {
	v, err := CalculateVolumeTrend([]float64{10, 11, 12, 13}, []float64{100, 200, 300, 400})
	require.NoError(t, err)
	assert.Equal(t, 400.0, v.Current)
	assert.InDelta(t, 200.0, v.Average, 1e-12)
	assert.InDelta(t, 2.0, v.Ratio, 1e-12)
	assert.Equal(t, 1, v.Direction)

	v, err = CalculateVolumeTrend([]float64{10, 9}, []float64{0, 50})
	require.NoError(t, err)
	assert.Equal(t, 1.0, v.Ratio)
	assert.Equal(t, -1, v.Direction)

	v, err = CalculateVolumeTrend([]float64{10, 10}, []float64{50, 25})
	require.NoError(t, err)
	assert.Equal(t, 0, v.Direction)
	assert.InDelta(t, 0.5, v.Ratio, 1e-12)

	_, err = CalculateVolumeTrend([]float64{10, 11, 12}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrNotEnoughData)
	_, err = CalculateVolumeTrend([]float64{10}, []float64{1})
	assert.ErrorIs(t, err, ErrNotEnoughData)
}
