package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"CSEAnalyzer/internal/fees"
	"CSEAnalyzer/internal/fundamental"
	"CSEAnalyzer/internal/model"
	"CSEAnalyzer/internal/strategy"
	"CSEAnalyzer/internal/technical"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// RatesConfig is one side of a tier, as fractions of gross value.
type RatesConfig struct {
	Broker float64 `yaml:"broker" validate:"gte=0"`
	SEC    float64 `yaml:"sec" validate:"gte=0"`
	CSE    float64 `yaml:"cse" validate:"gte=0"`
	CDS    float64 `yaml:"cds" validate:"gte=0"`
	STL    float64 `yaml:"stl" validate:"gte=0"`
}

// TierConfig is one fee bracket. A zero MaxValue marks the unbounded tier.
type TierConfig struct {
	ID               string      `yaml:"id" validate:"required"`
	Label            string      `yaml:"label"`
	MaxValue         float64     `yaml:"max_value" validate:"gte=0"`
	Buy              RatesConfig `yaml:"buy"`
	Sell             RatesConfig `yaml:"sell"`
	CapitalGainsRate float64     `yaml:"capital_gains_rate" validate:"gte=0,lt=1"`
}

// Config holds all application configuration.
type Config struct {
	LogLevel string `yaml:"log_level" validate:"oneof=trace debug info warn error"`
	Fees     struct {
		MinimumCommission float64 `yaml:"minimum_commission" validate:"gte=0"`
		// Overrides every tier's rate when set.
		CapitalGainsRate *float64     `yaml:"capital_gains_rate" validate:"omitempty,gte=0,lt=1"`
		Tiers            []TierConfig `yaml:"tiers" validate:"dive"`
	} `yaml:"fees"`
	Fundamental fundamental.Thresholds `yaml:"fundamental"`
	Technical   technical.Settings     `yaml:"technical"`
	Strategy    strategy.Settings      `yaml:"strategy"`
	Telegram    struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"telegram"`
	Watchlist struct {
		Path string `yaml:"path"`
	} `yaml:"watchlist"`
	Schedule struct {
		WatchlistCron string `yaml:"watchlist_cron"`
		RetentionCron string `yaml:"retention_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath    string `yaml:"sqlite_path"`
		RetentionDays int    `yaml:"retention_days" validate:"gte=0"`
	} `yaml:"database"`
}

// Default returns the built-in configuration: the CSE fee schedule with no
// minimum commission and the stock analyzer settings.
func Default() *Config {
	cfg := &Config{
		LogLevel:    "info",
		Fundamental: fundamental.DefaultThresholds(),
		Technical:   technical.DefaultSettings(),
		Strategy:    strategy.DefaultSettings(),
	}
	for _, t := range fees.CSETiers() {
		cfg.Fees.Tiers = append(cfg.Fees.Tiers, tierConfigFrom(t))
	}
	return cfg
}

// Load reads .env (if present) and the YAML file at path over the defaults,
// then applies environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, model.ConfigError("config", "parse %s: %v", path, err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("CSE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CSE_HISTORY_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CSE_WATCHLIST_PATH"); v != "" {
		cfg.Watchlist.Path = v
	}
	if v := os.Getenv("CSE_CAPITAL_GAINS_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, model.ConfigError("CSE_CAPITAL_GAINS_RATE", "not a number: %q", v)
		}
		cfg.Fees.CapitalGainsRate = &rate
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}

	// Defaults
	if cfg.Schedule.WatchlistCron == "" {
		cfg.Schedule.WatchlistCron = "0 0 15 * * 1-5"
	}
	if cfg.Schedule.RetentionCron == "" {
		cfg.Schedule.RetentionCron = "0 30 3 * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/cse_analyzer.db"
	}
	if cfg.Database.RetentionDays == 0 {
		cfg.Database.RetentionDays = 365
	}
	if cfg.Watchlist.Path == "" {
		cfg.Watchlist.Path = "configs/watchlist.yaml"
	}

	return cfg, nil
}

// Validate checks struct constraints, then builds every section to apply
// the structural invariants. Failures wrap model.ErrConfiguration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return model.ConfigError(verrs[0].Namespace(), "failed %q constraint", verrs[0].Tag())
		}
		return model.ConfigError("config", "%v", err)
	}
	if _, err := c.FeeSchedule(); err != nil {
		return err
	}
	if err := c.Fundamental.Validate(); err != nil {
		return err
	}
	if err := c.Technical.Validate(); err != nil {
		return err
	}
	return c.Strategy.Validate()
}

// FeeSchedule builds the validated fee schedule.
func (c *Config) FeeSchedule() (*fees.Schedule, error) {
	if len(c.Fees.Tiers) == 0 {
		return nil, model.ConfigError("fees.tiers", "at least one tier is required")
	}
	tiers := make([]fees.Tier, 0, len(c.Fees.Tiers))
	for _, tc := range c.Fees.Tiers {
		t := fees.Tier{
			ID:               tc.ID,
			Label:            tc.Label,
			Buy:              tc.Buy.rateSet(),
			Sell:             tc.Sell.rateSet(),
			CapitalGainsRate: decimal.NewFromFloat(tc.CapitalGainsRate),
		}
		if tc.MaxValue > 0 {
			upper := decimal.NewFromFloat(tc.MaxValue)
			t.MaxValue = &upper
		}
		if c.Fees.CapitalGainsRate != nil {
			t.CapitalGainsRate = decimal.NewFromFloat(*c.Fees.CapitalGainsRate)
		}
		tiers = append(tiers, t)
	}
	return fees.NewSchedule(tiers, decimal.NewFromFloat(c.Fees.MinimumCommission))
}

func (r RatesConfig) rateSet() fees.RateSet {
	return fees.RateSet{
		Broker: decimal.NewFromFloat(r.Broker),
		SEC:    decimal.NewFromFloat(r.SEC),
		CSE:    decimal.NewFromFloat(r.CSE),
		CDS:    decimal.NewFromFloat(r.CDS),
		STL:    decimal.NewFromFloat(r.STL),
	}
}

func tierConfigFrom(t fees.Tier) TierConfig {
	rates := func(r fees.RateSet) RatesConfig {
		return RatesConfig{
			Broker: r.Broker.InexactFloat64(),
			SEC:    r.SEC.InexactFloat64(),
			CSE:    r.CSE.InexactFloat64(),
			CDS:    r.CDS.InexactFloat64(),
			STL:    r.STL.InexactFloat64(),
		}
	}
	tc := TierConfig{
		ID:               t.ID,
		Label:            t.Label,
		Buy:              rates(t.Buy),
		Sell:             rates(t.Sell),
		CapitalGainsRate: t.CapitalGainsRate.InexactFloat64(),
	}
	if t.MaxValue != nil {
		tc.MaxValue = t.MaxValue.InexactFloat64()
	}
	return tc
}
