package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"CSEAnalyzer/internal/collector"
	"CSEAnalyzer/internal/fundamental"
	"CSEAnalyzer/internal/model"
	"CSEAnalyzer/internal/recorder"
	"CSEAnalyzer/internal/strategy"
	"CSEAnalyzer/internal/technical"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchlistYAML = `symbols:
  - symbol: JKH.N0000
    company_name: John Keells Holdings
    metrics:
      eps: 12
      book_value_per_share: 110
      net_income: 1200
      equity: 8000
      total_debt: 2000
      current_assets: 3000
      current_liabilities: 1500
      earnings_growth_pct: 18
      annual_dividend: 4
  - symbol: BARE.N0000
`

type captureNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureNotifier) Notify(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, text)
	return nil
}

func rising(n int, start float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*0.5
	}
	return out
}

func newTestScheduler(t *testing.T) (*Scheduler, *captureNotifier, *recorder.SQLiteRecorder) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "watchlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(watchlistYAML), 0o644))

	log := zerolog.Nop()
	fa, err := fundamental.NewAnalyzer(fundamental.DefaultThresholds(), log)
	require.NoError(t, err)
	ta, err := technical.NewAnalyzer(technical.DefaultSettings(), log)
	require.NoError(t, err)
	engine, err := strategy.NewEngine(strategy.DefaultSettings(), fa, ta, log)
	require.NoError(t, err)

	rec, err := recorder.NewSQLiteRecorder(filepath.Join(dir, "history.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	n := &captureNotifier{}
	s := NewScheduler(context.Background(), engine, n, rec, path, 365, log)
	s.NewFetcher = func(*collector.Watchlist) collector.Fetcher {
		return &collector.MockFetcher{Closes: map[string][]float64{
			"JKH.N0000":  rising(80, 150),
			"BARE.N0000": {10, 11, 12},
		}}
	}
	return s, n, rec
}

func TestRunWatchlist(t *testing.T) {
	s, _, rec := newTestScheduler(t)

	results, failures, err := s.RunWatchlist(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "JKH.N0000", results[0].Symbol)
	assert.True(t, results[0].FundamentalAvailable)
	assert.True(t, results[0].TechnicalAvailable)
	assert.NotEmpty(t, results[0].ID)

	require.Contains(t, failures, "BARE.N0000")
	assert.ErrorIs(t, failures["BARE.N0000"], model.ErrInsufficientData)

	rows, err := rec.History("", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, results[0].ID, rows[0].ID)
}

func TestRunWatchlistMissingFile(t *testing.T) {
	s, n, _ := newTestScheduler(t)
	s.WatchlistPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, _, err := s.RunWatchlist(context.Background())
	require.Error(t, err)

	s.RunWatchlistNow()
	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "Watchlist run failed")
}

func TestRunWatchlistNowSendsDigest(t *testing.T) {
	s, n, _ := newTestScheduler(t)

	s.RunWatchlistNow()
	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "CSE watchlist")
	assert.Contains(t, n.msgs[0], "JKH.N0000")
	assert.Contains(t, n.msgs[0], "Failed:")
}

func TestPrune(t *testing.T) {
	s, _, rec := newTestScheduler(t)
	_, _, err := s.RunWatchlist(context.Background())
	require.NoError(t, err)

	deleted, err := s.Prune()
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	s.now = func() time.Time { return time.Now().AddDate(0, 0, 400) }
	deleted, err = s.Prune()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	rows, err := rec.History("", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)

	s.RetentionDays = 0
	deleted, err = s.Prune()
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestHandleCommand(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/watchlist"), "BARE.N0000")
	assert.Contains(t, s.HandleCommand(ctx, "/analyze"), "Usage")
	assert.Contains(t, s.HandleCommand(ctx, "/analyze nope"), "NOPE is not on the watchlist")
	assert.Contains(t, s.HandleCommand(ctx, "/analyze bare.n0000"), "insufficient data")

	report := s.HandleCommand(ctx, "/analyze jkh.n0000")
	assert.Contains(t, report, "JKH.N0000 - John Keells Holdings")
	assert.Contains(t, report, "Entry plan for JKH.N0000")

	assert.Contains(t, s.HandleCommand(ctx, "/history JKH.N0000"), "JKH.N0000")
	assert.Equal(t, "No analyses recorded\n", s.HandleCommand(ctx, "/history OTHER"))
	assert.Equal(t, helpText, s.HandleCommand(ctx, "hello"))
}

func TestRegisterAll(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	require.NoError(t, s.RegisterAll("0 0 15 * * 1-5", "0 30 3 * * *"))
	assert.Len(t, s.Cron.Entries(), 2)

	s2, _, _ := newTestScheduler(t)
	s2.RetentionDays = 0
	require.NoError(t, s2.RegisterAll("0 0 15 * * 1-5", "bad"))
	assert.Len(t, s2.Cron.Entries(), 1)

	s3, _, _ := newTestScheduler(t)
	assert.Error(t, s3.RegisterAll("not a cron", "0 30 3 * * *"))
}
