package strategy

import (
	"math"

	"CSEAnalyzer/internal/model"
)

const weightTolerance = 1e-6

// Weights are the sub-score weights of the weighted total. They must sum to 1.
type Weights struct {
	Fundamental float64 `yaml:"fundamental"`
	Technical   float64 `yaml:"technical"`
	Risk        float64 `yaml:"risk"`
}

// VerdictThresholds are the minimum weighted totals for each verdict.
// Anything below Sell is StrongSell.
type VerdictThresholds struct {
	StrongBuy float64 `yaml:"strong_buy"`
	Buy       float64 `yaml:"buy"`
	Hold      float64 `yaml:"hold"`
	Sell      float64 `yaml:"sell"`
}

// ConfidenceMargins bound the spread between the sub-scores. A spread above
// Low gives low confidence, one at or below High gives high confidence.
type ConfidenceMargins struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// Settings configures the recommendation engine.
type Settings struct {
	Weights    Weights           `yaml:"weights"`
	Verdicts   VerdictThresholds `yaml:"verdicts"`
	Confidence ConfidenceMargins `yaml:"confidence"`
}

// DefaultSettings returns weights 0.60/0.30/0.10, verdict cut-offs
// 80/65/45/30 and confidence margins 40/15.
func DefaultSettings() Settings {
	return Settings{
		Weights:    Weights{Fundamental: 0.60, Technical: 0.30, Risk: 0.10},
		Verdicts:   VerdictThresholds{StrongBuy: 80, Buy: 65, Hold: 45, Sell: 30},
		Confidence: ConfidenceMargins{Low: 40, High: 15},
	}
}

// Validate checks weights, verdict ordering and confidence margins.
func (s Settings) Validate() error {
	w := s.Weights
	for _, f := range []struct {
		name  string
		value float64
	}{{"fundamental", w.Fundamental}, {"technical", w.Technical}, {"risk", w.Risk}} {
		if f.value < 0 || math.IsNaN(f.value) {
			return model.ConfigError("weights."+f.name, "must be non-negative, got %v", f.value)
		}
	}
	if sum := w.Fundamental + w.Technical + w.Risk; math.Abs(sum-1) > weightTolerance {
		return model.ConfigError("weights", "must sum to 1.0, got %.4f", sum)
	}

	v := s.Verdicts
	if !(100 >= v.StrongBuy && v.StrongBuy > v.Buy && v.Buy > v.Hold && v.Hold > v.Sell && v.Sell >= 0) {
		return model.ConfigError("verdicts", "cut-offs must descend within [0, 100]: %v/%v/%v/%v", v.StrongBuy, v.Buy, v.Hold, v.Sell)
	}

	c := s.Confidence
	if c.High < 0 || c.Low <= c.High || c.Low > 100 {
		return model.ConfigError("confidence", "margins must satisfy 0 <= high < low <= 100, got high=%v low=%v", c.High, c.Low)
	}
	return nil
}
