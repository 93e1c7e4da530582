package model

// FundamentalMetrics is the raw company data for fundamental analysis.
// Nil fields are treated as unavailable.
type FundamentalMetrics struct {
	Price              *float64 `json:"price,omitempty" yaml:"price" validate:"omitempty,gt=0"`
	EPS                *float64 `json:"eps,omitempty" yaml:"eps"`
	PreviousEPS        *float64 `json:"previous_eps,omitempty" yaml:"previous_eps"`
	BookValuePerShare  *float64 `json:"book_value_per_share,omitempty" yaml:"book_value_per_share"`
	NetIncome          *float64 `json:"net_income,omitempty" yaml:"net_income"`
	Equity             *float64 `json:"equity,omitempty" yaml:"equity"`
	TotalDebt          *float64 `json:"total_debt,omitempty" yaml:"total_debt" validate:"omitempty,gte=0"`
	CurrentAssets      *float64 `json:"current_assets,omitempty" yaml:"current_assets" validate:"omitempty,gte=0"`
	CurrentLiabilities *float64 `json:"current_liabilities,omitempty" yaml:"current_liabilities" validate:"omitempty,gte=0"`
	EarningsGrowthPct  *float64 `json:"earnings_growth_pct,omitempty" yaml:"earnings_growth_pct"`
	AnnualDividend     *float64 `json:"annual_dividend,omitempty" yaml:"annual_dividend" validate:"omitempty,gte=0"`
	Beta               *float64 `json:"beta,omitempty" yaml:"beta" validate:"omitempty,gte=0"`
	MarketCap          *float64 `json:"market_cap,omitempty" yaml:"market_cap" validate:"omitempty,gte=0"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Rating is the qualitative grade of a fundamental metric.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
)

// Score maps a rating onto the 0-100 scale.
func (r Rating) Score() float64 {
	switch r {
	case RatingExcellent:
		return 100
	case RatingGood:
		return 75
	case RatingFair:
		return 50
	default:
		return 25
	}
}

// MetricID names a fundamental ratio.
type MetricID string

const (
	MetricPE             MetricID = "pe_ratio"
	MetricPB             MetricID = "pb_ratio"
	MetricROE            MetricID = "roe"
	MetricDebtToEquity   MetricID = "debt_to_equity"
	MetricCurrentRatio   MetricID = "current_ratio"
	MetricEarningsGrowth MetricID = "earnings_growth"
	MetricDividendYield  MetricID = "dividend_yield"
)

// MetricScore is one computed and rated ratio.
type MetricScore struct {
	Metric MetricID `json:"metric"`
	Value  float64  `json:"value"`
	Rating Rating   `json:"rating"`
	Weight float64  `json:"weight"`
	Note   string   `json:"note,omitempty"`
}

// FundamentalScore is the fundamental sub-score of an analysis.
type FundamentalScore struct {
	Metrics []MetricScore `json:"metrics"`
	Omitted []MetricID    `json:"omitted,omitempty"`
	Score   float64       `json:"score"`
}

// Metric looks up a computed metric by id.
func (f *FundamentalScore) Metric(id MetricID) (MetricScore, bool) {
	for _, m := range f.Metrics {
		if m.Metric == id {
			return m, true
		}
	}
	return MetricScore{}, false
}
