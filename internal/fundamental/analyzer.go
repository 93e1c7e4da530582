// Package fundamental rates a company's financial ratios and folds them into
// a single 0-100 fundamental sub-score.
package fundamental

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"CSEAnalyzer/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Analyzer computes and rates fundamental ratios.
type Analyzer struct {
	thresholds Thresholds
	validate   *validator.Validate
	log        zerolog.Logger
}

// NewAnalyzer creates an Analyzer after validating the threshold table.
func NewAnalyzer(thresholds Thresholds, log zerolog.Logger) (*Analyzer, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{
		thresholds: thresholds,
		validate:   validator.New(),
		log:        log.With().Str("component", "fundamental").Logger(),
	}, nil
}

// Thresholds returns the rating table in use.
func (a *Analyzer) Thresholds() Thresholds { return a.thresholds }

// Analyze computes every ratio whose inputs are present and non-degenerate,
// rates it, and aggregates the ratings with weights renormalised over the
// computed subset.
func (a *Analyzer) Analyze(m model.FundamentalMetrics) (*model.FundamentalScore, error) {
	if err := a.check(m); err != nil {
		return nil, err
	}

	out := &model.FundamentalScore{}
	for _, s := range a.thresholds.specs() {
		value, rating, note, ok := compute(s, m)
		if !ok {
			out.Omitted = append(out.Omitted, s.id)
			continue
		}
		out.Metrics = append(out.Metrics, model.MetricScore{
			Metric: s.id,
			Value:  value,
			Rating: rating,
			Weight: s.band.Weight,
			Note:   note,
		})
	}
	if len(out.Metrics) == 0 {
		return nil, model.InsufficientData("metrics", "no fundamental ratio could be computed from the supplied data")
	}

	out.Score = aggregate(out.Metrics)
	a.log.Debug().
		Int("computed", len(out.Metrics)).
		Int("omitted", len(out.Omitted)).
		Float64("score", out.Score).
		Msg("fundamental analysis complete")
	return out, nil
}

func (a *Analyzer) check(m model.FundamentalMetrics) error {
	if err := a.validate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return model.InvalidInput(fe.Field(), "failed %q constraint", fe.Tag())
		}
		return fmt.Errorf("validate metrics: %w", err)
	}

	v := reflect.ValueOf(m)
	for i := 0; i < v.NumField(); i++ {
		p, ok := v.Field(i).Interface().(*float64)
		if ok && p != nil && (math.IsNaN(*p) || math.IsInf(*p, 0)) {
			return model.InvalidInput(v.Type().Field(i).Name, "must be a finite number")
		}
	}
	return nil
}

// compute returns the ratio for s and its rating. ok is false when the
// prerequisites are missing or the denominator is zero.
func compute(s metricSpec, m model.FundamentalMetrics) (value float64, rating model.Rating, note string, ok bool) {
	graded := func(v float64) (float64, model.Rating, string, bool) {
		return v, rate(v, s.direction, s.band), "", true
	}
	poor := func(v float64, why string) (float64, model.Rating, string, bool) {
		return v, model.RatingPoor, why, true
	}

	switch s.id {
	case model.MetricPE:
		if m.Price == nil || m.EPS == nil || *m.EPS == 0 {
			return 0, "", "", false
		}
		pe := *m.Price / *m.EPS
		if *m.EPS < 0 {
			return poor(pe, "negative earnings")
		}
		return graded(pe)

	case model.MetricPB:
		if m.Price == nil || m.BookValuePerShare == nil || *m.BookValuePerShare == 0 {
			return 0, "", "", false
		}
		pb := *m.Price / *m.BookValuePerShare
		if *m.BookValuePerShare < 0 {
			return poor(pb, "negative book value")
		}
		return graded(pb)

	case model.MetricROE:
		if m.NetIncome == nil || m.Equity == nil || *m.Equity == 0 {
			return 0, "", "", false
		}
		roe := *m.NetIncome / *m.Equity
		if *m.Equity < 0 {
			return poor(roe, "negative equity")
		}
		return graded(roe)

	case model.MetricDebtToEquity:
		if m.TotalDebt == nil || m.Equity == nil || *m.Equity == 0 {
			return 0, "", "", false
		}
		de := *m.TotalDebt / *m.Equity
		if *m.Equity < 0 {
			return poor(de, "negative equity")
		}
		return graded(de)

	case model.MetricCurrentRatio:
		if m.CurrentAssets == nil || m.CurrentLiabilities == nil || *m.CurrentLiabilities == 0 {
			return 0, "", "", false
		}
		return graded(*m.CurrentAssets / *m.CurrentLiabilities)

	case model.MetricEarningsGrowth:
		if m.EarningsGrowthPct != nil {
			return graded(*m.EarningsGrowthPct)
		}
		if m.EPS == nil || m.PreviousEPS == nil || *m.PreviousEPS == 0 {
			return 0, "", "", false
		}
		growth := (*m.EPS - *m.PreviousEPS) / math.Abs(*m.PreviousEPS) * 100
		v, r, _, ok := graded(growth)
		return v, r, "derived from eps and previous_eps", ok

	case model.MetricDividendYield:
		if m.Price == nil || m.AnnualDividend == nil {
			return 0, "", "", false
		}
		return graded(*m.AnnualDividend / *m.Price * 100)
	}
	return 0, "", "", false
}

func aggregate(metrics []model.MetricScore) float64 {
	var weighted, weights, plain float64
	for _, m := range metrics {
		weighted += m.Weight * m.Rating.Score()
		weights += m.Weight
		plain += m.Rating.Score()
	}
	score := plain / float64(len(metrics))
	if weights > 0 {
		score = weighted / weights
	}
	return math.Max(0, math.Min(100, score))
}
