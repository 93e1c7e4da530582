package model

import "time"

// Verdict is the final actionable signal.
type Verdict string

const (
	VerdictStrongBuy  Verdict = "STRONG_BUY"
	VerdictBuy        Verdict = "BUY"
	VerdictHold       Verdict = "HOLD"
	VerdictSell       Verdict = "SELL"
	VerdictStrongSell Verdict = "STRONG_SELL"
)

// Confidence reflects how much the sub-scores agree.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// Recommendation is the weighted verdict over the three sub-scores.
type Recommendation struct {
	FundamentalScore float64    `json:"fundamental_score"`
	TechnicalScore   float64    `json:"technical_score"`
	RiskScore        float64    `json:"risk_score"`
	WeightedTotal    float64    `json:"weighted_total"`
	Spread           float64    `json:"spread"`
	Verdict          Verdict    `json:"verdict"`
	Confidence       Confidence `json:"confidence"`
	ActionItems      []string   `json:"action_items,omitempty"`
}

// RiskFactor is one input to the derived risk sub-score.
type RiskFactor struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Score float64 `json:"score"`
	Note  string  `json:"note"`
}

// RiskAssessment is the risk sub-score (higher means lower risk).
type RiskAssessment struct {
	Score    float64      `json:"score"`
	Level    string       `json:"level"`
	Supplied bool         `json:"supplied"`
	Factors  []RiskFactor `json:"factors,omitempty"`
}

// AnalysisRequest is everything a caller supplies for a complete analysis.
type AnalysisRequest struct {
	Symbol      string             `json:"symbol"`
	CompanyName string             `json:"company_name,omitempty"`
	Metrics     FundamentalMetrics `json:"metrics"`
	Prices      []float64          `json:"-"`
	Volumes     []float64          `json:"-"`
	RiskScore   *float64           `json:"risk_score,omitempty"`
}

// Analysis is the complete result of one analysis invocation.
type Analysis struct {
	ID                   string            `json:"id,omitempty"`
	Symbol               string            `json:"symbol"`
	CompanyName          string            `json:"company_name,omitempty"`
	Price                float64           `json:"price,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	Fundamental          *FundamentalScore `json:"fundamental,omitempty"`
	FundamentalAvailable bool              `json:"fundamental_available"`
	Technical            *TechnicalScore   `json:"technical,omitempty"`
	TechnicalAvailable   bool              `json:"technical_available"`
	Risk                 RiskAssessment    `json:"risk"`
	Recommendation       Recommendation    `json:"recommendation"`
	KeyStrengths         []string          `json:"key_strengths,omitempty"`
	KeyConcerns          []string          `json:"key_concerns,omitempty"`
}

// EntrySuggestion is a suggested buy zone derived from a recommendation.
type EntrySuggestion struct {
	Symbol          string  `json:"symbol,omitempty"`
	CurrentPrice    float64 `json:"current_price"`
	IdealEntry      float64 `json:"ideal_entry"`
	MaxEntry        float64 `json:"max_entry"`
	TargetReturnPct float64 `json:"target_return_pct"`
	TargetExitPrice float64 `json:"target_exit_price"`
	WeightedTotal   float64 `json:"weighted_total"`
	Verdict         Verdict `json:"verdict"`
	Note            string  `json:"note"`
}
