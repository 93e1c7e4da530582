package collector

import (
	"errors"

	"CSEAnalyzer/internal/model"

	"github.com/rs/zerolog"
)

// DefaultLookback covers the slow moving average with room to detect a cross.
const DefaultLookback = 300

// Collector turns watchlist entries into analysis requests.
type Collector struct {
	Fetcher  Fetcher
	Lookback int
	log      zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, log zerolog.Logger) *Collector {
	return &Collector{
		Fetcher:  fetcher,
		Lookback: DefaultLookback,
		log:      log.With().Str("component", "collector").Str("fetcher", fetcher.Name()).Logger(),
	}
}

// Collect loads the entry's price history and assembles the request. A
// missing history leaves the request fundamentals-only; other fetch errors
// are returned.
func (c *Collector) Collect(e WatchlistEntry) (model.AnalysisRequest, error) {
	req := model.AnalysisRequest{
		Symbol:      e.Symbol,
		CompanyName: e.CompanyName,
		Metrics:     e.Metrics,
		RiskScore:   e.RiskScore,
	}

	h, err := c.Fetcher.FetchHistory(e.Symbol, c.Lookback)
	switch {
	case errors.Is(err, ErrNoPrices):
		c.log.Warn().Str("symbol", e.Symbol).Err(err).Msg("no price history, fundamentals only")
		return req, nil
	case err != nil:
		return req, err
	}
	req.Prices = h.Closes
	req.Volumes = h.Volumes

	if req.Metrics.Price == nil && len(h.Closes) > 0 {
		last := h.Closes[len(h.Closes)-1]
		req.Metrics.Price = &last
	}
	c.log.Debug().Str("symbol", e.Symbol).Int("closes", len(h.Closes)).Int("volumes", len(h.Volumes)).Msg("collected")
	return req, nil
}
