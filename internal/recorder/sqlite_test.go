package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"CSEAnalyzer/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "nested", "history.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func analysis(symbol string, at time.Time, total float64) *model.Analysis {
	return &model.Analysis{
		Symbol:               symbol,
		CompanyName:          symbol + " PLC",
		Price:                42.5,
		CreatedAt:            at,
		FundamentalAvailable: true,
		Fundamental: &model.FundamentalScore{
			Metrics: []model.MetricScore{{Metric: model.MetricPE, Value: 10, Rating: model.RatingExcellent, Weight: 0.2}},
			Score:   100,
		},
		Risk: model.RiskAssessment{Score: 60, Level: "MODERATE RISK"},
		Recommendation: model.Recommendation{
			FundamentalScore: 100,
			TechnicalScore:   50,
			RiskScore:        60,
			WeightedTotal:    total,
			Verdict:          model.VerdictBuy,
			Confidence:       model.ConfidenceLow,
		},
		KeyStrengths: []string{"Strong fundamental metrics"},
	}
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	r := openTest(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	a := analysis("JKH", now, 81)
	id, err := r.RecordAnalysis(a)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, a.ID)

	got, err := r.Analysis(id)
	require.NoError(t, err)
	assert.Equal(t, "JKH", got.Symbol)
	assert.True(t, now.Equal(got.CreatedAt))
	assert.Equal(t, model.VerdictBuy, got.Recommendation.Verdict)
	require.NotNil(t, got.Fundamental)
	assert.Equal(t, model.RatingExcellent, got.Fundamental.Metrics[0].Rating)
	assert.Equal(t, a.KeyStrengths, got.KeyStrengths)

	_, err = r.Analysis("does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteRecorder_History(t *testing.T) {
	r := openTest(t)
	base := time.Now().UTC().Add(-time.Hour)

	for i, sym := range []string{"AAA", "BBB", "AAA"} {
		_, err := r.RecordAnalysis(analysis(sym, base.Add(time.Duration(i)*time.Minute), float64(60+i)))
		require.NoError(t, err)
	}

	all, err := r.History("", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 62.0, all[0].WeightedTotal)
	assert.Equal(t, "AAA", all[0].Symbol)
	assert.Equal(t, model.ConfidenceLow, all[0].Confidence)

	aaa, err := r.History("AAA", 10)
	require.NoError(t, err)
	assert.Len(t, aaa, 2)

	limited, err := r.History("", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteRecorder_Prune(t *testing.T) {
	r := openTest(t)
	now := time.Now().UTC()

	_, err := r.RecordAnalysis(analysis("OLD", now.AddDate(0, 0, -400), 50))
	require.NoError(t, err)
	_, err = r.RecordAnalysis(analysis("NEW", now, 50))
	require.NoError(t, err)

	n, err := r.Prune(now.AddDate(0, 0, -365))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := r.History("", 10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "NEW", left[0].Symbol)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	a := &model.Analysis{Symbol: "X"}
	id, err := r.RecordAnalysis(a)
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)

	_, err = r.Analysis(id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, r.Close())
}
