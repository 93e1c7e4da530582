package strategy

import (
	"fmt"
	"strings"

	"CSEAnalyzer/internal/calculator"
	"CSEAnalyzer/internal/model"
)

const maxHighlights = 5

// scoreLeverage scores debt/equity. Lower leverage is lower risk.
func scoreLeverage(m model.FundamentalMetrics) (model.RiskFactor, bool) {
	if m.TotalDebt == nil || m.Equity == nil || *m.Equity == 0 {
		return model.RiskFactor{}, false
	}
	if *m.Equity < 0 {
		return model.RiskFactor{Name: "leverage", Value: *m.TotalDebt / *m.Equity, Score: 15, Note: "Negative equity (high risk)"}, true
	}
	de := *m.TotalDebt / *m.Equity

	var score float64
	var note string
	switch {
	case de <= 0.5:
		score, note = 90, "Low leverage"
	case de <= 1.0:
		score, note = 75, "Moderate leverage"
	case de <= 1.5:
		score, note = 55, "Elevated leverage"
	case de <= 2.0:
		score, note = 35, "High leverage"
	default:
		score, note = 15, "Very high leverage"
	}
	return model.RiskFactor{Name: "leverage", Value: de, Score: score, Note: note}, true
}

// scoreLiquidity scores the current ratio.
func scoreLiquidity(m model.FundamentalMetrics) (model.RiskFactor, bool) {
	if m.CurrentAssets == nil || m.CurrentLiabilities == nil || *m.CurrentLiabilities == 0 {
		return model.RiskFactor{}, false
	}
	cr := *m.CurrentAssets / *m.CurrentLiabilities

	var score float64
	var note string
	switch {
	case cr >= 2.0:
		score, note = 90, "Strong liquidity"
	case cr >= 1.5:
		score, note = 75, "Adequate liquidity"
	case cr >= 1.0:
		score, note = 50, "Marginal liquidity"
	default:
		score, note = 25, "Weak liquidity"
	}
	return model.RiskFactor{Name: "liquidity", Value: cr, Score: score, Note: note}, true
}

// scoreBeta scores market sensitivity.
func scoreBeta(m model.FundamentalMetrics) (model.RiskFactor, bool) {
	if m.Beta == nil {
		return model.RiskFactor{}, false
	}
	beta := *m.Beta

	var score float64
	var note string
	switch {
	case beta <= 0.8:
		score, note = 85, "Low market sensitivity"
	case beta <= 1.2:
		score, note = 70, "Average market sensitivity"
	case beta <= 1.5:
		score, note = 50, "Above average market sensitivity"
	default:
		score, note = 30, "High market sensitivity"
	}
	return model.RiskFactor{Name: "beta", Value: beta, Score: score, Note: note}, true
}

// scoreMarketCap scores company size in rupees. Larger is steadier.
func scoreMarketCap(m model.FundamentalMetrics) (model.RiskFactor, bool) {
	if m.MarketCap == nil {
		return model.RiskFactor{}, false
	}
	mc := *m.MarketCap

	var score float64
	var note string
	switch {
	case mc >= 10_000_000_000:
		score, note = 85, "Large cap"
	case mc >= 1_000_000_000:
		score, note = 70, "Mid cap"
	default:
		score, note = 50, "Small cap"
	}
	return model.RiskFactor{Name: "market_cap", Value: mc, Score: score, Note: note}, true
}

// scoreVolatility scores the annualised volatility of the price series.
// At least a month of prices is required.
func scoreVolatility(prices []float64) (model.RiskFactor, bool) {
	if len(prices) < calculator.MonthLookback {
		return model.RiskFactor{}, false
	}
	vol, err := calculator.CalculateVolatility(prices)
	if err != nil {
		return model.RiskFactor{}, false
	}

	var score float64
	var note string
	switch {
	case vol <= 0.20:
		score, note = 85, "Low price volatility"
	case vol <= 0.35:
		score, note = 70, "Moderate price volatility"
	case vol <= 0.50:
		score, note = 50, "Elevated price volatility"
	default:
		score, note = 30, "High price volatility"
	}
	return model.RiskFactor{Name: "volatility", Value: vol, Score: score, Note: note}, true
}

// AssessRisk derives the risk sub-score as the mean of the available factor
// scores. With no usable data the score is neutral.
func AssessRisk(m model.FundamentalMetrics, prices []float64) model.RiskAssessment {
	var out model.RiskAssessment
	for _, f := range []func() (model.RiskFactor, bool){
		func() (model.RiskFactor, bool) { return scoreLeverage(m) },
		func() (model.RiskFactor, bool) { return scoreLiquidity(m) },
		func() (model.RiskFactor, bool) { return scoreBeta(m) },
		func() (model.RiskFactor, bool) { return scoreMarketCap(m) },
		func() (model.RiskFactor, bool) { return scoreVolatility(prices) },
	} {
		if rf, ok := f(); ok {
			out.Factors = append(out.Factors, rf)
		}
	}

	out.Score = neutralScore
	if len(out.Factors) > 0 {
		sum := 0.0
		for _, rf := range out.Factors {
			sum += rf.Score
		}
		out.Score = sum / float64(len(out.Factors))
	}
	out.Level = riskLevel(out.Score)
	return out
}

func riskLevel(score float64) string {
	switch {
	case score >= 75:
		return "LOW RISK"
	case score >= 60:
		return "MODERATE RISK"
	case score >= 45:
		return "ELEVATED RISK"
	default:
		return "HIGH RISK"
	}
}

func metricLabel(id model.MetricID) string {
	return strings.ToUpper(strings.ReplaceAll(string(id), "_", " "))
}

func keyStrengths(a *model.Analysis) []string {
	var out []string
	rec := a.Recommendation
	if a.FundamentalAvailable && rec.FundamentalScore >= 75 {
		out = append(out, "Strong fundamental metrics")
	}
	if a.TechnicalAvailable && rec.TechnicalScore >= 70 {
		out = append(out, "Positive technical indicators")
	}
	if rec.RiskScore >= 70 {
		out = append(out, "Low risk profile")
	}
	if a.Fundamental != nil {
		for _, m := range a.Fundamental.Metrics {
			if m.Rating == model.RatingExcellent {
				out = append(out, fmt.Sprintf("%s: %s (%.2f)", metricLabel(m.Metric), m.Rating, m.Value))
			}
		}
	}
	return limit(out)
}

func keyConcerns(a *model.Analysis) []string {
	var out []string
	rec := a.Recommendation
	if a.FundamentalAvailable && rec.FundamentalScore < 50 {
		out = append(out, "Weak fundamental metrics")
	}
	if a.TechnicalAvailable && rec.TechnicalScore < 45 {
		out = append(out, "Negative technical signals")
	}
	if rec.RiskScore < 50 {
		out = append(out, "Elevated risk factors")
	}
	if a.Fundamental != nil {
		for _, m := range a.Fundamental.Metrics {
			if m.Rating == model.RatingPoor {
				c := fmt.Sprintf("%s: %s (%.2f)", metricLabel(m.Metric), m.Rating, m.Value)
				if m.Note != "" {
					c += ", " + m.Note
				}
				out = append(out, c)
			}
		}
	}
	for _, rf := range a.Risk.Factors {
		if rf.Score <= 35 {
			out = append(out, rf.Note)
		}
	}
	return limit(out)
}

func limit(items []string) []string {
	if len(items) > maxHighlights {
		return items[:maxHighlights]
	}
	return items
}
