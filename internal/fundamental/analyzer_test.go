package fundamental

import (
	"testing"

	"CSEAnalyzer/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(DefaultThresholds(), zerolog.Nop())
	require.NoError(t, err)
	return a
}

func full() model.FundamentalMetrics {
	return model.FundamentalMetrics{
		Price:              model.Ptr(100.0),
		EPS:                model.Ptr(10.0),
		BookValuePerShare:  model.Ptr(80.0),
		NetIncome:          model.Ptr(18.0),
		Equity:             model.Ptr(100.0),
		TotalDebt:          model.Ptr(40.0),
		CurrentAssets:      model.Ptr(250.0),
		CurrentLiabilities: model.Ptr(100.0),
		EarningsGrowthPct:  model.Ptr(12.0),
		AnnualDividend:     model.Ptr(6.0),
	}
}

func TestAnalyze_AllMetrics(t *testing.T) {
	res, err := newAnalyzer(t).Analyze(full())
	require.NoError(t, err)
	require.Len(t, res.Metrics, 7)
	assert.Empty(t, res.Omitted)

	tests := []struct {
		id     model.MetricID
		value  float64
		rating model.Rating
	}{
		{model.MetricPE, 10, model.RatingExcellent},
		{model.MetricPB, 1.25, model.RatingGood},
		{model.MetricROE, 0.18, model.RatingGood},
		{model.MetricDebtToEquity, 0.4, model.RatingExcellent},
		{model.MetricCurrentRatio, 2.5, model.RatingExcellent},
		{model.MetricEarningsGrowth, 12, model.RatingGood},
		{model.MetricDividendYield, 6, model.RatingExcellent},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			m, ok := res.Metric(tt.id)
			require.True(t, ok)
			assert.InDelta(t, tt.value, m.Value, 1e-9)
			assert.Equal(t, tt.rating, m.Rating)
		})
	}

	// 0.20*100 + 0.15*75 + 0.20*75 + 0.15*100 + 0.10*100 + 0.15*75 + 0.05*100
	assert.InDelta(t, 87.5, res.Score, 1e-9)
}

func TestAnalyze_ZeroEPSOmitsPE(t *testing.T) {
	m := model.FundamentalMetrics{
		Price:              model.Ptr(100.0),
		EPS:                model.Ptr(0.0),
		CurrentAssets:      model.Ptr(150.0),
		CurrentLiabilities: model.Ptr(100.0),
	}
	res, err := newAnalyzer(t).Analyze(m)
	require.NoError(t, err)

	_, ok := res.Metric(model.MetricPE)
	assert.False(t, ok)
	assert.Contains(t, res.Omitted, model.MetricPE)

	cr, ok := res.Metric(model.MetricCurrentRatio)
	require.True(t, ok)
	assert.Equal(t, model.RatingGood, cr.Rating)
	// A single metric carries the whole weight.
	assert.InDelta(t, 75.0, res.Score, 1e-9)
}

func TestAnalyze_NothingComputable(t *testing.T) {
	_, err := newAnalyzer(t).Analyze(model.FundamentalMetrics{Price: model.Ptr(100.0)})
	assert.ErrorIs(t, err, model.ErrInsufficientData)

	_, err = newAnalyzer(t).Analyze(model.FundamentalMetrics{})
	assert.ErrorIs(t, err, model.ErrInsufficientData)
}

func TestAnalyze_InvalidInput(t *testing.T) {
	a := newAnalyzer(t)

	_, err := a.Analyze(model.FundamentalMetrics{Price: model.Ptr(-5.0), EPS: model.Ptr(1.0)})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = a.Analyze(model.FundamentalMetrics{TotalDebt: model.Ptr(-1.0), Equity: model.Ptr(10.0)})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestAnalyze_DirectionAware(t *testing.T) {
	a := newAnalyzer(t)

	tests := []struct {
		name   string
		in     model.FundamentalMetrics
		id     model.MetricID
		rating model.Rating
	}{
		{"high PE is poor", model.FundamentalMetrics{Price: model.Ptr(300.0), EPS: model.Ptr(10.0)}, model.MetricPE, model.RatingPoor},
		{"negative EPS is poor", model.FundamentalMetrics{Price: model.Ptr(100.0), EPS: model.Ptr(-2.0)}, model.MetricPE, model.RatingPoor},
		{"low ROE is poor", model.FundamentalMetrics{NetIncome: model.Ptr(5.0), Equity: model.Ptr(100.0)}, model.MetricROE, model.RatingPoor},
		{"high ROE is excellent", model.FundamentalMetrics{NetIncome: model.Ptr(25.0), Equity: model.Ptr(100.0)}, model.MetricROE, model.RatingExcellent},
		{"heavy debt is poor", model.FundamentalMetrics{TotalDebt: model.Ptr(300.0), Equity: model.Ptr(100.0)}, model.MetricDebtToEquity, model.RatingPoor},
		{"negative equity is poor", model.FundamentalMetrics{TotalDebt: model.Ptr(10.0), Equity: model.Ptr(-100.0)}, model.MetricDebtToEquity, model.RatingPoor},
		{"fair current ratio at cut-off", model.FundamentalMetrics{CurrentAssets: model.Ptr(100.0), CurrentLiabilities: model.Ptr(100.0)}, model.MetricCurrentRatio, model.RatingFair},
		{"PE at excellent cut-off", model.FundamentalMetrics{Price: model.Ptr(120.0), EPS: model.Ptr(10.0)}, model.MetricPE, model.RatingExcellent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.Analyze(tt.in)
			require.NoError(t, err)
			m, ok := res.Metric(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.rating, m.Rating)
		})
	}
}

func TestAnalyze_DerivedGrowth(t *testing.T) {
	res, err := newAnalyzer(t).Analyze(model.FundamentalMetrics{EPS: model.Ptr(12.5), PreviousEPS: model.Ptr(10.0)})
	require.NoError(t, err)
	g, ok := res.Metric(model.MetricEarningsGrowth)
	require.True(t, ok)
	assert.InDelta(t, 25.0, g.Value, 1e-9)
	assert.Equal(t, model.RatingExcellent, g.Rating)
	assert.NotEmpty(t, g.Note)
}

func TestAnalyze_ScoreBounds(t *testing.T) {
	a := newAnalyzer(t)
	inputs := []model.FundamentalMetrics{
		full(),
		{Price: model.Ptr(1000.0), EPS: model.Ptr(-1.0), BookValuePerShare: model.Ptr(-3.0)},
		{NetIncome: model.Ptr(500.0), Equity: model.Ptr(1.0), CurrentAssets: model.Ptr(1e9), CurrentLiabilities: model.Ptr(1.0)},
	}
	for _, in := range inputs {
		res, err := a.Analyze(in)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Score, 0.0)
		assert.LessOrEqual(t, res.Score, 100.0)
	}
}

func TestAnalyze_OrderInvariant(t *testing.T) {
	a := newAnalyzer(t)
	res, err := a.Analyze(full())
	require.NoError(t, err)

	reversed := make([]model.MetricScore, len(res.Metrics))
	for i, m := range res.Metrics {
		reversed[len(res.Metrics)-1-i] = m
	}
	assert.InDelta(t, res.Score, aggregate(reversed), 1e-9)
}

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())

	bad := DefaultThresholds()
	bad.PE = Band{Excellent: 25, Good: 18, Fair: 12, Weight: 0.2}
	assert.ErrorIs(t, bad.Validate(), model.ErrConfiguration)

	bad = DefaultThresholds()
	bad.ROE.Weight = -1
	assert.ErrorIs(t, bad.Validate(), model.ErrConfiguration)

	_, err := NewAnalyzer(Thresholds{}, zerolog.Nop())
	assert.ErrorIs(t, err, model.ErrConfiguration)
}
