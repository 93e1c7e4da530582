// Package strategy combines the fundamental, technical and risk sub-scores
// into a weighted verdict.
package strategy

import (
	"errors"
	"fmt"
	"math"
	"time"

	"CSEAnalyzer/internal/fundamental"
	"CSEAnalyzer/internal/model"
	"CSEAnalyzer/internal/technical"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

// neutralScore stands in for a sub-score that could not be computed.
const neutralScore = 50.0

type verdictTier struct {
	MinScore float64
	Verdict  model.Verdict
	Actions  []string
}

func (s Settings) tiers() []verdictTier {
	return []verdictTier{
		{s.Verdicts.StrongBuy, model.VerdictStrongBuy, []string{"Consider establishing or adding to position"}},
		{s.Verdicts.Buy, model.VerdictBuy, []string{"Good opportunity to buy"}},
		{s.Verdicts.Hold, model.VerdictHold, []string{"Maintain current position if owned", "Wait for better entry point if not owned"}},
		{s.Verdicts.Sell, model.VerdictSell, []string{"Consider reducing position"}},
	}
}

var strongSellActions = []string{"Exit position or avoid purchasing"}

// mapVerdict maps a weighted total to a verdict and its action items.
func (s Settings) mapVerdict(total float64) (model.Verdict, []string) {
	for _, t := range s.tiers() {
		if total >= t.MinScore {
			return t.Verdict, t.Actions
		}
	}
	return model.VerdictStrongSell, strongSellActions
}

// confidence classifies the spread between the sub-scores.
func (s Settings) confidence(spread float64) model.Confidence {
	switch {
	case spread > s.Confidence.Low:
		return model.ConfidenceLow
	case spread <= s.Confidence.High:
		return model.ConfidenceHigh
	default:
		return model.ConfidenceMedium
	}
}

// Engine produces recommendations.
type Engine struct {
	settings    Settings
	fundamental *fundamental.Analyzer
	technical   *technical.Analyzer
	log         zerolog.Logger
	now         func() time.Time
}

// NewEngine validates settings and wires the analyzers.
func NewEngine(settings Settings, fa *fundamental.Analyzer, ta *technical.Analyzer, log zerolog.Logger) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if fa == nil || ta == nil {
		return nil, model.ConfigError("strategy", "fundamental and technical analyzers are required")
	}
	return &Engine{
		settings:    settings,
		fundamental: fa,
		technical:   ta,
		log:         log.With().Str("component", "strategy").Logger(),
		now:         time.Now,
	}, nil
}

// Settings returns the engine configuration.
func (e *Engine) Settings() Settings { return e.settings }

// Recommend combines three 0-100 sub-scores.
func (e *Engine) Recommend(fundamentalScore, technicalScore, riskScore float64) (model.Recommendation, error) {
	scores := []float64{fundamentalScore, technicalScore, riskScore}
	for i, name := range []string{"fundamental_score", "technical_score", "risk_score"} {
		if math.IsNaN(scores[i]) || scores[i] < 0 || scores[i] > 100 {
			return model.Recommendation{}, model.InvalidInput(name, "must be within [0, 100], got %v", scores[i])
		}
	}

	w := e.settings.Weights
	total := w.Fundamental*fundamentalScore + w.Technical*technicalScore + w.Risk*riskScore
	spread := floats.Max(scores) - floats.Min(scores)
	verdict, actions := e.settings.mapVerdict(total)

	return model.Recommendation{
		FundamentalScore: fundamentalScore,
		TechnicalScore:   technicalScore,
		RiskScore:        riskScore,
		WeightedTotal:    total,
		Spread:           spread,
		Verdict:          verdict,
		Confidence:       e.settings.confidence(spread),
		ActionItems:      append([]string(nil), actions...),
	}, nil
}

// Analyze runs both analyzers and the risk assessment, then recommends.
// A missing side is scored neutral; the call fails only when neither the
// fundamentals nor the price series yield a score.
func (e *Engine) Analyze(req model.AnalysisRequest) (*model.Analysis, error) {
	a := &model.Analysis{
		Symbol:      req.Symbol,
		CompanyName: req.CompanyName,
		CreatedAt:   e.now().UTC(),
	}

	fundamentalScore := neutralScore
	fs, err := e.fundamental.Analyze(req.Metrics)
	switch {
	case err == nil:
		a.Fundamental, a.FundamentalAvailable = fs, true
		fundamentalScore = fs.Score
	case errors.Is(err, model.ErrInsufficientData):
		e.log.Debug().Str("symbol", req.Symbol).Err(err).Msg("fundamental score unavailable")
	default:
		return nil, fmt.Errorf("fundamental analysis: %w", err)
	}

	technicalScore := neutralScore
	if len(req.Prices) > 0 {
		ts, err := e.technical.AnalyzeHistory(model.PriceHistory{Closes: req.Prices, Volumes: req.Volumes})
		switch {
		case err == nil:
			a.Technical, a.TechnicalAvailable = ts, true
			technicalScore = ts.Score
		case errors.Is(err, model.ErrInsufficientData):
			e.log.Debug().Str("symbol", req.Symbol).Err(err).Msg("technical score unavailable")
		default:
			return nil, fmt.Errorf("technical analysis: %w", err)
		}
	}

	if !a.FundamentalAvailable && !a.TechnicalAvailable {
		return nil, model.InsufficientData("request", "neither fundamentals nor price history produced a score")
	}

	if req.RiskScore != nil {
		r := *req.RiskScore
		if math.IsNaN(r) || r < 0 || r > 100 {
			return nil, model.InvalidInput("risk_score", "must be within [0, 100], got %v", r)
		}
		a.Risk = model.RiskAssessment{Score: r, Level: riskLevel(r), Supplied: true}
	} else {
		a.Risk = AssessRisk(req.Metrics, req.Prices)
	}

	rec, err := e.Recommend(fundamentalScore, technicalScore, a.Risk.Score)
	if err != nil {
		return nil, err
	}
	a.Recommendation = rec

	switch {
	case req.Metrics.Price != nil:
		a.Price = *req.Metrics.Price
	case len(req.Prices) > 0:
		a.Price = req.Prices[len(req.Prices)-1]
	}
	a.KeyStrengths = keyStrengths(a)
	a.KeyConcerns = keyConcerns(a)

	e.log.Info().
		Str("symbol", req.Symbol).
		Float64("total", rec.WeightedTotal).
		Str("verdict", string(rec.Verdict)).
		Str("confidence", string(rec.Confidence)).
		Msg("analysis complete")
	return a, nil
}

// EntryPrice suggests a buy zone for an analysed symbol and the exit price
// that would realise targetPct on the ideal entry, before fees.
func (e *Engine) EntryPrice(a *model.Analysis, targetPct float64) (model.EntrySuggestion, error) {
	if a == nil || a.Price <= 0 {
		return model.EntrySuggestion{}, model.InvalidInput("price", "a positive current price is required")
	}
	if targetPct <= 0 {
		return model.EntrySuggestion{}, model.InvalidInput("target_pct", "must be positive, got %v", targetPct)
	}

	total := a.Recommendation.WeightedTotal
	out := model.EntrySuggestion{
		Symbol:          a.Symbol,
		CurrentPrice:    a.Price,
		TargetReturnPct: targetPct,
		WeightedTotal:   total,
		Verdict:         a.Recommendation.Verdict,
	}
	switch {
	case total >= e.settings.Verdicts.Buy:
		out.IdealEntry, out.MaxEntry = a.Price, a.Price*1.05
		out.Note = "Current price is a reasonable entry point"
	case total >= e.settings.Verdicts.Hold:
		out.IdealEntry, out.MaxEntry = a.Price*0.95, a.Price*0.97
		out.Note = "Wait for a 3-5% pullback before entering"
	default:
		out.IdealEntry, out.MaxEntry = a.Price*0.85, a.Price*0.90
		out.Note = "Only buy at a significant discount (10-15% lower)"
	}
	out.TargetExitPrice = out.IdealEntry * (1 + targetPct/100)
	return out, nil
}
