// Package technical derives directional signals from a closing-price series.
package technical

import (
	"errors"
	"fmt"
	"math"

	"CSEAnalyzer/internal/calculator"
	"CSEAnalyzer/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Settings holds indicator periods and signal cut-offs.
type Settings struct {
	RSIPeriod       int     `yaml:"rsi_period" validate:"gt=1"`
	RSIOversold     float64 `yaml:"rsi_oversold" validate:"gte=0,lte=100"`
	RSIOverbought   float64 `yaml:"rsi_overbought" validate:"gte=0,lte=100,gtfield=RSIOversold"`
	MACDFast        int     `yaml:"macd_fast" validate:"gt=0"`
	MACDSlow        int     `yaml:"macd_slow" validate:"gtfield=MACDFast"`
	MACDSignal      int     `yaml:"macd_signal" validate:"gt=0"`
	MAFast          int     `yaml:"ma_fast" validate:"gt=0"`
	MASlow          int     `yaml:"ma_slow" validate:"gtfield=MAFast"`
	BollingerPeriod int     `yaml:"bollinger_period" validate:"gt=1"`
	BollingerMult   float64 `yaml:"bollinger_mult" validate:"gt=0"`
	StochK          int     `yaml:"stoch_k" validate:"gt=0"`
	StochD          int     `yaml:"stoch_d" validate:"gt=0"`
	StochOversold   float64 `yaml:"stoch_oversold" validate:"gte=0,lte=100"`
	StochOverbought float64 `yaml:"stoch_overbought" validate:"gte=0,lte=100,gtfield=StochOversold"`
	VolumeLow       float64 `yaml:"volume_low" validate:"gt=0"`
	VolumeHigh      float64 `yaml:"volume_high" validate:"gtfield=VolumeLow"`
}

// DefaultSettings returns RSI(14) 30/70, MACD(12,26,9), SMA 50/200,
// Bollinger(20,2), Stochastic(14,3) 20/80 and volume ratio bands 0.7/1.5.
func DefaultSettings() Settings {
	return Settings{
		RSIPeriod:       14,
		RSIOversold:     30,
		RSIOverbought:   70,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		MAFast:          50,
		MASlow:          200,
		BollingerPeriod: 20,
		BollingerMult:   2,
		StochK:          14,
		StochD:          3,
		StochOversold:   20,
		StochOverbought: 80,
		VolumeLow:       0.7,
		VolumeHigh:      1.5,
	}
}

// Validate reports the first out-of-range setting as a configuration error.
func (s Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return model.ConfigError("technical."+verrs[0].Field(), "failed %q constraint", verrs[0].Tag())
		}
		return model.ConfigError("technical", "%v", err)
	}
	return nil
}

// MinPoints is the length of the shortest series anything can be computed on.
func (s Settings) MinPoints() int { return s.RSIPeriod + 1 }

// Analyzer computes indicators and signals.
type Analyzer struct {
	settings Settings
	log      zerolog.Logger
}

// NewAnalyzer creates an Analyzer after validating settings.
func NewAnalyzer(settings Settings, log zerolog.Logger) (*Analyzer, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{settings: settings, log: log.With().Str("component", "technical").Logger()}, nil
}

type indicatorFunc func([]float64) (model.IndicatorScore, error)

// Analyze computes every indicator the series is long enough for and
// averages their signal scores. Indicators short of data are left out.
func (a *Analyzer) Analyze(prices []float64) (*model.TechnicalScore, error) {
	return a.AnalyzeHistory(model.PriceHistory{Closes: prices})
}

// AnalyzeHistory is Analyze with traded volumes. The volume indicator joins
// the aggregate only when the volumes are aligned with the closes.
func (a *Analyzer) AnalyzeHistory(h model.PriceHistory) (*model.TechnicalScore, error) {
	prices := h.Closes
	if len(prices) == 0 {
		return nil, model.InvalidInput("prices", "price series is empty")
	}
	for i, p := range prices {
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			return nil, model.InvalidInput("prices", "price at index %d must be a positive number, got %v", i, p)
		}
	}
	if need := a.settings.MinPoints(); len(prices) < need {
		return nil, model.InsufficientData("prices", "need at least %d points, have %d", need, len(prices))
	}
	volumes := h.Volumes
	switch {
	case len(volumes) == 0:
	case len(volumes) != len(prices):
		a.log.Warn().Int("closes", len(prices)).Int("volumes", len(volumes)).Msg("volumes not aligned with closes, ignoring")
		volumes = nil
	default:
		for i, v := range volumes {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, model.InvalidInput("volumes", "volume at index %d must be a non-negative number, got %v", i, v)
			}
		}
	}

	out := &model.TechnicalScore{Points: len(prices), LastPrice: prices[len(prices)-1]}
	fns := []indicatorFunc{a.rsi, a.macd, a.movingAverages, a.bollinger, a.stochastic}
	if len(volumes) > 0 {
		fns = append(fns, func(p []float64) (model.IndicatorScore, error) { return a.volume(p, volumes) })
	}
	for _, fn := range fns {
		ind, err := fn(prices)
		if errors.Is(err, calculator.ErrNotEnoughData) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("technical indicator: %w", err)
		}
		out.Indicators = append(out.Indicators, ind)
	}

	sum := 0.0
	for _, ind := range out.Indicators {
		sum += ind.Signal.Score()
	}
	out.Score = sum / float64(len(out.Indicators))

	a.log.Debug().
		Int("points", out.Points).
		Int("indicators", len(out.Indicators)).
		Float64("score", out.Score).
		Msg("technical analysis complete")
	return out, nil
}

func (a *Analyzer) rsi(prices []float64) (model.IndicatorScore, error) {
	v, err := calculator.CalculateRSI(prices, a.settings.RSIPeriod)
	if err != nil {
		return model.IndicatorScore{}, err
	}
	ind := model.IndicatorScore{Indicator: model.IndicatorRSI, Value: v, Signal: model.SignalNeutral}
	switch {
	case v < a.settings.RSIOversold:
		ind.Signal, ind.Detail = model.SignalBullish, "oversold"
	case v > a.settings.RSIOverbought:
		ind.Signal, ind.Detail = model.SignalBearish, "overbought"
	}
	return ind, nil
}

func (a *Analyzer) macd(prices []float64) (model.IndicatorScore, error) {
	m, err := calculator.CalculateMACD(prices, a.settings.MACDFast, a.settings.MACDSlow, a.settings.MACDSignal)
	if err != nil {
		return model.IndicatorScore{}, err
	}
	ind := model.IndicatorScore{
		Indicator: model.IndicatorMACD,
		Value:     m.Line,
		Signal:    model.SignalNeutral,
		Values:    map[string]float64{"signal": m.Signal, "histogram": m.Histogram},
	}
	switch {
	case m.PrevHistogram <= 0 && m.Histogram > 0:
		ind.Signal, ind.Detail = model.SignalBullish, "MACD crossed above signal"
	case m.PrevHistogram >= 0 && m.Histogram < 0:
		ind.Signal, ind.Detail = model.SignalBearish, "MACD crossed below signal"
	}
	return ind, nil
}

func (a *Analyzer) movingAverages(prices []float64) (model.IndicatorScore, error) {
	x, err := calculator.CalculateMACross(prices, a.settings.MAFast, a.settings.MASlow)
	if err != nil {
		return model.IndicatorScore{}, err
	}
	ind := model.IndicatorScore{
		Indicator: model.IndicatorMovingAverage,
		Value:     x.Fast - x.Slow,
		Signal:    model.SignalBearish,
		Values:    map[string]float64{"fast": x.Fast, "slow": x.Slow},
		Detail:    "death cross state",
	}
	if x.Fast > x.Slow {
		ind.Signal, ind.Detail = model.SignalBullish, "golden cross state"
	}
	switch {
	case x.GoldenCross:
		ind.Detail = "fresh golden cross"
	case x.DeathCross:
		ind.Detail = "fresh death cross"
	}
	return ind, nil
}

func (a *Analyzer) bollinger(prices []float64) (model.IndicatorScore, error) {
	b, err := calculator.CalculateBollinger(prices, a.settings.BollingerPeriod, a.settings.BollingerMult)
	if err != nil {
		return model.IndicatorScore{}, err
	}
	last := prices[len(prices)-1]
	ind := model.IndicatorScore{
		Indicator: model.IndicatorBollinger,
		Value:     b.Position,
		Signal:    model.SignalNeutral,
		Values:    map[string]float64{"upper": b.Upper, "middle": b.Middle, "lower": b.Lower},
	}
	switch {
	case last < b.Lower:
		ind.Signal, ind.Detail = model.SignalBullish, "price below lower band"
	case last > b.Upper:
		ind.Signal, ind.Detail = model.SignalBearish, "price above upper band"
	}
	return ind, nil
}

func (a *Analyzer) stochastic(prices []float64) (model.IndicatorScore, error) {
	s, err := calculator.CalculateStochastic(prices, a.settings.StochK, a.settings.StochD)
	if err != nil {
		return model.IndicatorScore{}, err
	}
	ind := model.IndicatorScore{
		Indicator: model.IndicatorStochastic,
		Value:     s.K,
		Signal:    model.SignalNeutral,
		Values:    map[string]float64{"d": s.D},
	}
	switch {
	case s.K < a.settings.StochOversold:
		ind.Signal, ind.Detail = model.SignalBullish, "oversold"
	case s.K > a.settings.StochOverbought:
		ind.Signal, ind.Detail = model.SignalBearish, "overbought"
	}
	return ind, nil
}

// volume confirms the latest move: high or average volume backs its
// direction, low volume or a flat close says nothing.
func (a *Analyzer) volume(prices, volumes []float64) (model.IndicatorScore, error) {
	v, err := calculator.CalculateVolumeTrend(prices, volumes)
	if err != nil {
		return model.IndicatorScore{}, err
	}
	ind := model.IndicatorScore{
		Indicator: model.IndicatorVolume,
		Value:     v.Ratio,
		Signal:    model.SignalNeutral,
		Values:    map[string]float64{"current": v.Current, "average": v.Average},
	}
	switch {
	case v.Ratio > a.settings.VolumeHigh:
		switch v.Direction {
		case 1:
			ind.Signal, ind.Detail = model.SignalBullish, "price rising on high volume"
		case -1:
			ind.Signal, ind.Detail = model.SignalBearish, "price falling on high volume"
		default:
			ind.Detail = "high volume without direction"
		}
	case v.Ratio < a.settings.VolumeLow:
		switch v.Direction {
		case 1:
			ind.Detail = "rise on low volume"
		case -1:
			ind.Detail = "fall on low volume"
		default:
			ind.Detail = "low volume consolidation"
		}
	default:
		switch v.Direction {
		case 1:
			ind.Signal, ind.Detail = model.SignalBullish, "price rising on average volume"
		case -1:
			ind.Signal, ind.Detail = model.SignalBearish, "price falling on average volume"
		default:
			ind.Detail = "sideways on average volume"
		}
	}
	return ind, nil
}
