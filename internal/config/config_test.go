package config

import (
	"os"
	"path/filepath"
	"testing"

	"CSEAnalyzer/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "data/cse_analyzer.db", cfg.Database.SQLitePath)
	assert.Equal(t, 365, cfg.Database.RetentionDays)
	assert.Equal(t, "0 0 15 * * 1-5", cfg.Schedule.WatchlistCron)
	assert.InDelta(t, 0.6, cfg.Strategy.Weights.Fundamental, 1e-12)

	s, err := cfg.FeeSchedule()
	require.NoError(t, err)
	require.Len(t, s.Tiers(), 2)
	buy, err := s.Fees(model.Transaction{Price: decimal.NewFromInt(50), Quantity: decimal.NewFromInt(100), Side: model.SideBuy})
	require.NoError(t, err)
	assert.True(t, buy.TotalFeeAmount.Equal(decimal.NewFromInt(41)), buy.TotalFeeAmount.String())
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
fees:
  minimum_commission: 100
strategy:
  weights:
    fundamental: 0.5
    technical: 0.4
    risk: 0.1
database:
  sqlite_path: /tmp/history.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/history.db", cfg.Database.SQLitePath)
	assert.InDelta(t, 0.4, cfg.Strategy.Weights.Technical, 1e-12)
	// Untouched sections keep their defaults.
	assert.Equal(t, 14, cfg.Technical.RSIPeriod)
	assert.Len(t, cfg.Fees.Tiers, 2)

	s, err := cfg.FeeSchedule()
	require.NoError(t, err)
	assert.True(t, s.MinimumCommission().Equal(decimal.NewFromInt(100)))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CSE_LOG_LEVEL", "warn")
	t.Setenv("CSE_HISTORY_PATH", "/var/lib/cse.db")
	t.Setenv("CSE_CAPITAL_GAINS_RATE", "0.1")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/var/lib/cse.db", cfg.Database.SQLitePath)
	assert.Equal(t, "token", cfg.Telegram.BotToken)

	s, err := cfg.FeeSchedule()
	require.NoError(t, err)
	for _, tier := range s.Tiers() {
		assert.True(t, tier.CapitalGainsRate.Equal(decimal.RequireFromString("0.1")))
	}

	t.Setenv("CSE_CAPITAL_GAINS_RATE", "lots")
	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"weights do not sum to one", `
strategy:
  weights: {fundamental: 0.5, technical: 0.3, risk: 0.1}
`},
		{"negative rate", `
fees:
  tiers:
    - id: only
      buy: {broker: -0.01}
      sell: {broker: 0.01}
`},
		{"thresholds out of order", `
fees:
  tiers:
    - {id: a, max_value: 500, buy: {broker: 0.01}, sell: {broker: 0.01}}
    - {id: b, max_value: 100, buy: {broker: 0.01}, sell: {broker: 0.01}}
    - {id: c, buy: {broker: 0.01}, sell: {broker: 0.01}}
`},
		{"no unbounded tier", `
fees:
  tiers:
    - {id: a, max_value: 500, buy: {broker: 0.01}, sell: {broker: 0.01}}
`},
		{"unknown log level", `
log_level: loud
`},
		{"verdicts not descending", `
strategy:
  verdicts: {strong_buy: 60, buy: 65, hold: 45, sell: 30}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.body))
			require.NoError(t, err)
			assert.ErrorIs(t, cfg.Validate(), model.ErrConfiguration)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "fees: [unclosed"))
	assert.ErrorIs(t, err, model.ErrConfiguration)
}
