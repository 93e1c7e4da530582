package fundamental

import (
	"fmt"

	"CSEAnalyzer/internal/model"
)

// Direction tells whether a smaller or a larger ratio is preferable.
type Direction int

const (
	LowerIsBetter Direction = iota
	HigherIsBetter
)

// Band holds the rating cut-offs for one metric and its aggregate weight.
// For LowerIsBetter metrics the cut-offs are upper limits, otherwise lower
// limits.
type Band struct {
	Excellent float64 `yaml:"excellent"`
	Good      float64 `yaml:"good"`
	Fair      float64 `yaml:"fair"`
	Weight    float64 `yaml:"weight" validate:"gte=0"`
}

// Thresholds is the full rating table.
type Thresholds struct {
	PE             Band `yaml:"pe_ratio"`
	PB             Band `yaml:"pb_ratio"`
	ROE            Band `yaml:"roe"`
	DebtToEquity   Band `yaml:"debt_to_equity"`
	CurrentRatio   Band `yaml:"current_ratio"`
	EarningsGrowth Band `yaml:"earnings_growth"`
	DividendYield  Band `yaml:"dividend_yield"`
}

// DefaultThresholds returns the stock rating table. ROE is a fraction;
// earnings growth and dividend yield are percentages.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PE:             Band{Excellent: 12, Good: 18, Fair: 25, Weight: 0.20},
		PB:             Band{Excellent: 1.0, Good: 1.5, Fair: 3.0, Weight: 0.15},
		ROE:            Band{Excellent: 0.20, Good: 0.15, Fair: 0.10, Weight: 0.20},
		DebtToEquity:   Band{Excellent: 0.5, Good: 1.0, Fair: 1.5, Weight: 0.15},
		CurrentRatio:   Band{Excellent: 2.0, Good: 1.5, Fair: 1.0, Weight: 0.10},
		EarningsGrowth: Band{Excellent: 20, Good: 10, Fair: 5, Weight: 0.15},
		DividendYield:  Band{Excellent: 5, Good: 3, Fair: 1.5, Weight: 0.05},
	}
}

type metricSpec struct {
	id        model.MetricID
	direction Direction
	band      Band
}

func (t Thresholds) specs() []metricSpec {
	return []metricSpec{
		{model.MetricPE, LowerIsBetter, t.PE},
		{model.MetricPB, LowerIsBetter, t.PB},
		{model.MetricROE, HigherIsBetter, t.ROE},
		{model.MetricDebtToEquity, LowerIsBetter, t.DebtToEquity},
		{model.MetricCurrentRatio, HigherIsBetter, t.CurrentRatio},
		{model.MetricEarningsGrowth, HigherIsBetter, t.EarningsGrowth},
		{model.MetricDividendYield, HigherIsBetter, t.DividendYield},
	}
}

// Validate checks that every band is ordered for its direction and that
// weights are non-negative with a positive total.
func (t Thresholds) Validate() error {
	total := 0.0
	for _, s := range t.specs() {
		field := "thresholds." + string(s.id)
		b := s.band
		if b.Weight < 0 {
			return model.ConfigError(field, "weight must be non-negative, got %v", b.Weight)
		}
		total += b.Weight
		ordered := b.Excellent <= b.Good && b.Good <= b.Fair
		if s.direction == HigherIsBetter {
			ordered = b.Excellent >= b.Good && b.Good >= b.Fair
		}
		if !ordered {
			return model.ConfigError(field, "cut-offs out of order: %s", bandString(b))
		}
	}
	if total <= 0 {
		return model.ConfigError("thresholds", "at least one metric needs a positive weight")
	}
	return nil
}

func bandString(b Band) string {
	return fmt.Sprintf("excellent=%v good=%v fair=%v", b.Excellent, b.Good, b.Fair)
}

// rate grades value against band in the given direction.
func rate(value float64, d Direction, b Band) model.Rating {
	if d == LowerIsBetter {
		switch {
		case value <= b.Excellent:
			return model.RatingExcellent
		case value <= b.Good:
			return model.RatingGood
		case value <= b.Fair:
			return model.RatingFair
		default:
			return model.RatingPoor
		}
	}
	switch {
	case value >= b.Excellent:
		return model.RatingExcellent
	case value >= b.Good:
		return model.RatingGood
	case value >= b.Fair:
		return model.RatingFair
	default:
		return model.RatingPoor
	}
}
