package model

// PriceHistory is a chronological close series with optional traded
// volumes. Volumes is either empty or aligned with Closes.
type PriceHistory struct {
	Closes  []float64 `json:"closes"`
	Volumes []float64 `json:"volumes,omitempty"`
}

// Signal is the direction an indicator points to.
type Signal string

const (
	SignalBullish Signal = "Bullish"
	SignalBearish Signal = "Bearish"
	SignalNeutral Signal = "Neutral"
)

// Score maps a signal onto the 0-100 scale.
func (s Signal) Score() float64 {
	switch s {
	case SignalBullish:
		return 100
	case SignalBearish:
		return 0
	default:
		return 50
	}
}

// IndicatorID names a technical indicator.
type IndicatorID string

const (
	IndicatorRSI           IndicatorID = "rsi"
	IndicatorMACD          IndicatorID = "macd"
	IndicatorMovingAverage IndicatorID = "moving_average"
	IndicatorBollinger     IndicatorID = "bollinger"
	IndicatorStochastic    IndicatorID = "stochastic"
	IndicatorVolume        IndicatorID = "volume"
)

// IndicatorScore is one computed indicator. Values carries the secondary
// lines (signal line, band edges, the individual averages, ...).
type IndicatorScore struct {
	Indicator IndicatorID        `json:"indicator"`
	Value     float64            `json:"value"`
	Signal    Signal             `json:"signal"`
	Values    map[string]float64 `json:"values,omitempty"`
	Detail    string             `json:"detail,omitempty"`
}

// TechnicalScore is the technical sub-score of an analysis.
type TechnicalScore struct {
	Indicators []IndicatorScore `json:"indicators"`
	Points     int              `json:"points"`
	LastPrice  float64          `json:"last_price"`
	Score      float64          `json:"score"`
}

// Indicator looks up a computed indicator by id.
func (t *TechnicalScore) Indicator(id IndicatorID) (IndicatorScore, bool) {
	for _, ind := range t.Indicators {
		if ind.Indicator == id {
			return ind, true
		}
	}
	return IndicatorScore{}, false
}
