package collector

import (
	"errors"

	"CSEAnalyzer/internal/model"
)

// ErrNoPrices is returned when a symbol has no price history available.
var ErrNoPrices = errors.New("no price history")

// Fetcher loads a symbol's price history, oldest first. days caps the
// number of most recent points returned.
type Fetcher interface {
	FetchHistory(symbol string, days int) (model.PriceHistory, error)
	Name() string
}
