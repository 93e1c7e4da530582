package recorder

import (
	"time"

	"CSEAnalyzer/internal/model"

	"github.com/google/uuid"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(a *model.Analysis) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return a.ID, nil
}
func (n *NoopRecorder) History(_ string, _ int) ([]Summary, error)  { return nil, nil }
func (n *NoopRecorder) Analysis(_ string) (*model.Analysis, error) { return nil, ErrNotFound }
func (n *NoopRecorder) Prune(_ time.Time) (int64, error)           { return 0, nil }
func (n *NoopRecorder) Close() error                               { return nil }
