package collector

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"CSEAnalyzer/internal/model"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// WatchlistEntry is one symbol to analyse on schedule.
type WatchlistEntry struct {
	Symbol      string                   `yaml:"symbol" validate:"required"`
	CompanyName string                   `yaml:"company_name"`
	PriceFile   string                   `yaml:"price_file"`
	RiskScore   *float64                 `yaml:"risk_score" validate:"omitempty,gte=0,lte=100"`
	Metrics     model.FundamentalMetrics `yaml:"metrics"`
}

// Watchlist is the scheduled analysis universe.
type Watchlist struct {
	Symbols []WatchlistEntry `yaml:"symbols" validate:"dive"`
}

// LoadWatchlist reads a YAML watchlist. Relative price files resolve against
// the watchlist's directory.
func LoadWatchlist(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	wl := &Watchlist{}
	if err := yaml.Unmarshal(data, wl); err != nil {
		return nil, model.InvalidInput("watchlist", "parse %s: %v", path, err)
	}
	if err := validator.New().Struct(wl); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, model.InvalidInput(verrs[0].Namespace(), "failed %q constraint", verrs[0].Tag())
		}
		return nil, model.InvalidInput("watchlist", "%v", err)
	}

	seen := map[string]bool{}
	dir := filepath.Dir(path)
	for i := range wl.Symbols {
		e := &wl.Symbols[i]
		if seen[e.Symbol] {
			return nil, model.InvalidInput("watchlist.symbols", "duplicate symbol %s", e.Symbol)
		}
		seen[e.Symbol] = true
		if e.PriceFile != "" && !filepath.IsAbs(e.PriceFile) {
			e.PriceFile = filepath.Join(dir, e.PriceFile)
		}
	}
	return wl, nil
}
