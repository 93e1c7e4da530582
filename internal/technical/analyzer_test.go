package technical

import (
	"math"
	"testing"

	"CSEAnalyzer/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(DefaultSettings(), zerolog.Nop())
	require.NoError(t, err)
	return a
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func ids(s *model.TechnicalScore) []model.IndicatorID {
	var out []model.IndicatorID
	for _, ind := range s.Indicators {
		out = append(out, ind.Indicator)
	}
	return out
}

func TestAnalyze_InvalidSeries(t *testing.T) {
	a := newAnalyzer(t)

	_, err := a.Analyze(nil)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	bad := linear(20, 10, 1)
	bad[5] = -1
	_, err = a.Analyze(bad)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	bad[5] = math.NaN()
	_, err = a.Analyze(bad)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestAnalyze_TooShort(t *testing.T) {
	_, err := newAnalyzer(t).Analyze(linear(14, 10, 1))
	assert.ErrorIs(t, err, model.ErrInsufficientData)
}

func TestAnalyze_FifteenAscendingPoints(t *testing.T) {
	res, err := newAnalyzer(t).Analyze(linear(15, 10, 1))
	require.NoError(t, err)

	assert.Equal(t, []model.IndicatorID{model.IndicatorRSI}, ids(res))
	rsi, ok := res.Indicator(model.IndicatorRSI)
	require.True(t, ok)
	assert.InDelta(t, 100.0, rsi.Value, 1e-9)
	assert.Equal(t, model.SignalBearish, rsi.Signal)
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, 15, res.Points)
	assert.Equal(t, 24.0, res.LastPrice)
}

func TestAnalyze_IndicatorsByLength(t *testing.T) {
	tests := []struct {
		points int
		want   []model.IndicatorID
	}{
		{16, []model.IndicatorID{model.IndicatorRSI, model.IndicatorStochastic}},
		{20, []model.IndicatorID{model.IndicatorRSI, model.IndicatorBollinger, model.IndicatorStochastic}},
		{26, []model.IndicatorID{model.IndicatorRSI, model.IndicatorMACD, model.IndicatorBollinger, model.IndicatorStochastic}},
		{200, []model.IndicatorID{model.IndicatorRSI, model.IndicatorMACD, model.IndicatorMovingAverage, model.IndicatorBollinger, model.IndicatorStochastic}},
	}
	a := newAnalyzer(t)
	for _, tt := range tests {
		res, err := a.Analyze(linear(tt.points, 10, 0.5))
		require.NoError(t, err)
		assert.Equal(t, tt.want, ids(res), "points=%d", tt.points)
	}
}

func TestAnalyze_OversoldDecline(t *testing.T) {
	res, err := newAnalyzer(t).Analyze(linear(30, 100, -1))
	require.NoError(t, err)

	rsi, _ := res.Indicator(model.IndicatorRSI)
	assert.Equal(t, model.SignalBullish, rsi.Signal)
	stoch, _ := res.Indicator(model.IndicatorStochastic)
	assert.Equal(t, model.SignalBullish, stoch.Signal)
	assert.GreaterOrEqual(t, res.Score, 0.0)
	assert.LessOrEqual(t, res.Score, 100.0)
}

func TestAnalyze_GoldenCrossState(t *testing.T) {
	prices := append(linear(200, 300, -1), linear(50, 101, 6)...)
	res, err := newAnalyzer(t).Analyze(prices)
	require.NoError(t, err)

	ma, ok := res.Indicator(model.IndicatorMovingAverage)
	require.True(t, ok)
	assert.Equal(t, model.SignalBullish, ma.Signal)
	assert.Greater(t, ma.Values["fast"], ma.Values["slow"])
	assert.Equal(t, "golden cross state", ma.Detail)

	// The fast average crosses the slow one on point 239.
	res, err = newAnalyzer(t).Analyze(prices[:239])
	require.NoError(t, err)
	ma, _ = res.Indicator(model.IndicatorMovingAverage)
	assert.Equal(t, "fresh golden cross", ma.Detail)
}

func TestAnalyze_DeathCrossState(t *testing.T) {
	res, err := newAnalyzer(t).Analyze(linear(220, 400, -1))
	require.NoError(t, err)
	ma, ok := res.Indicator(model.IndicatorMovingAverage)
	require.True(t, ok)
	assert.Equal(t, model.SignalBearish, ma.Signal)
}

func TestAnalyze_BollingerBreakout(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100 + float64(i%2)
	}
	prices[len(prices)-1] = 130
	res, err := newAnalyzer(t).Analyze(prices)
	require.NoError(t, err)

	bb, ok := res.Indicator(model.IndicatorBollinger)
	require.True(t, ok)
	assert.Equal(t, model.SignalBearish, bb.Signal)
	assert.Equal(t, 1.0, bb.Value)
}

func TestAnalyze_MACDCrossover(t *testing.T) {
	// Sixty falling closes then a steady rise: the histogram turns
	// positive on the first point of the rebound only.
	rebound := append(linear(60, 300, -2), linear(20, 185, 3)...)
	// The mirror image turns negative on the first point of the drop.
	pullback := append(linear(60, 100, 2), linear(20, 215, -3)...)

	tests := []struct {
		name       string
		prices     []float64
		wantSignal model.Signal
		wantDetail string
	}{
		{"before rebound", rebound[:60], model.SignalNeutral, ""},
		{"rebound bar", rebound[:61], model.SignalBullish, "MACD crossed above signal"},
		{"after rebound", rebound[:62], model.SignalNeutral, ""},
		{"before pullback", pullback[:60], model.SignalNeutral, ""},
		{"pullback bar", pullback[:61], model.SignalBearish, "MACD crossed below signal"},
		{"after pullback", pullback[:62], model.SignalNeutral, ""},
		{"continuing decline", linear(80, 300, -2), model.SignalNeutral, ""},
	}
	a := newAnalyzer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.Analyze(tt.prices)
			require.NoError(t, err)
			macd, ok := res.Indicator(model.IndicatorMACD)
			require.True(t, ok)
			assert.Equal(t, tt.wantSignal, macd.Signal)
			assert.Equal(t, tt.wantDetail, macd.Detail)
			assert.InDelta(t, macd.Value-macd.Values["signal"], macd.Values["histogram"], 1e-9)
		})
	}
}

func TestAnalyzeHistory_Volume(t *testing.T) {
	rising := linear(30, 10, 1)
	falling := linear(30, 50, -1)
	flat := linear(30, 10, 1)
	flat[29] = flat[28]

	volumes := func(last float64) []float64 {
		v := make([]float64, 30)
		for i := range v {
			v[i] = 1000
		}
		v[29] = last
		return v
	}

	tests := []struct {
		name       string
		closes     []float64
		volumes    []float64
		wantSignal model.Signal
		wantDetail string
		wantRatio  float64
	}{
		{"rise on high volume", rising, volumes(2000), model.SignalBullish, "price rising on high volume", 2},
		{"fall on high volume", falling, volumes(1600), model.SignalBearish, "price falling on high volume", 1.6},
		{"flat on high volume", flat, volumes(2000), model.SignalNeutral, "high volume without direction", 2},
		{"rise on low volume", rising, volumes(500), model.SignalNeutral, "rise on low volume", 0.5},
		{"fall on low volume", falling, volumes(600), model.SignalNeutral, "fall on low volume", 0.6},
		{"rise on average volume", rising, volumes(1000), model.SignalBullish, "price rising on average volume", 1},
		{"fall on average volume", falling, volumes(1200), model.SignalBearish, "price falling on average volume", 1.2},
	}
	a := newAnalyzer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.AnalyzeHistory(model.PriceHistory{Closes: tt.closes, Volumes: tt.volumes})
			require.NoError(t, err)
			vol, ok := res.Indicator(model.IndicatorVolume)
			require.True(t, ok)
			assert.Equal(t, tt.wantSignal, vol.Signal)
			assert.Equal(t, tt.wantDetail, vol.Detail)
			assert.InDelta(t, tt.wantRatio, vol.Value, 1e-9)
			assert.Equal(t, 1000.0, vol.Values["average"])
		})
	}
}

func TestAnalyzeHistory_VolumeSkipped(t *testing.T) {
	a := newAnalyzer(t)
	closes := linear(30, 10, 1)

	res, err := a.Analyze(closes)
	require.NoError(t, err)
	_, ok := res.Indicator(model.IndicatorVolume)
	assert.False(t, ok)

	res, err = a.AnalyzeHistory(model.PriceHistory{Closes: closes, Volumes: linear(10, 100, 1)})
	require.NoError(t, err)
	_, ok = res.Indicator(model.IndicatorVolume)
	assert.False(t, ok, "misaligned volumes are ignored")

	bad := linear(30, 100, 1)
	bad[3] = -5
	_, err = a.AnalyzeHistory(model.PriceHistory{Closes: closes, Volumes: bad})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestAnalyzeHistory_VolumeJoinsScore(t *testing.T) {
	a := newAnalyzer(t)
	closes := linear(30, 10, 1)

	without, err := a.Analyze(closes)
	require.NoError(t, err)
	v := make([]float64, 30)
	for i := range v {
		v[i] = 1000
	}
	v[29] = 3000
	with, err := a.AnalyzeHistory(model.PriceHistory{Closes: closes, Volumes: v})
	require.NoError(t, err)

	assert.Len(t, with.Indicators, len(without.Indicators)+1)
	assert.Greater(t, with.Score, without.Score)
}

func TestSettings_Validate(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())

	s := DefaultSettings()
	s.MACDSlow = s.MACDFast
	assert.ErrorIs(t, s.Validate(), model.ErrConfiguration)

	s = DefaultSettings()
	s.RSIOverbought = 20
	assert.ErrorIs(t, s.Validate(), model.ErrConfiguration)

	s = DefaultSettings()
	s.VolumeHigh = s.VolumeLow
	assert.ErrorIs(t, s.Validate(), model.ErrConfiguration)

	_, err := NewAnalyzer(Settings{}, zerolog.Nop())
	assert.ErrorIs(t, err, model.ErrConfiguration)
}
