package recorder

import (
	"errors"
	"time"

	"CSEAnalyzer/internal/model"
)

// ErrNotFound is returned when no analysis matches the requested ID.
var ErrNotFound = errors.New("analysis not found")

// Summary is one row of the analysis history.
type Summary struct {
	ID            string           `json:"id"`
	CreatedAt     time.Time        `json:"created_at"`
	Symbol        string           `json:"symbol"`
	CompanyName   string           `json:"company_name,omitempty"`
	Price         float64          `json:"price"`
	Fundamental   float64          `json:"fundamental_score"`
	Technical     float64          `json:"technical_score"`
	Risk          float64          `json:"risk_score"`
	WeightedTotal float64          `json:"weighted_total"`
	Verdict       model.Verdict    `json:"verdict"`
	Confidence    model.Confidence `json:"confidence"`
}

// Recorder persists analysis history.
type Recorder interface {
	// RecordAnalysis stores a, assigning a.ID when empty, and returns the ID.
	RecordAnalysis(a *model.Analysis) (string, error)
	// History lists the newest summaries first. An empty symbol lists all.
	History(symbol string, limit int) ([]Summary, error)
	// Analysis returns the full stored result.
	Analysis(id string) (*model.Analysis, error)
	// Prune deletes analyses created before the cut-off.
	Prune(before time.Time) (int64, error)
	Close() error
}
