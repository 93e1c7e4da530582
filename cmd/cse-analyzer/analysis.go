package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"CSEAnalyzer/internal/collector"
	"CSEAnalyzer/internal/fundamental"
	"CSEAnalyzer/internal/model"
	"CSEAnalyzer/internal/notifier"
	"CSEAnalyzer/internal/technical"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// addAnalysisCommands adds the scoring commands.
func addAnalysisCommands(root *cobra.Command, app *App) {
	root.AddCommand(newFundamentalCmd(app))
	root.AddCommand(newTechnicalCmd(app))
	root.AddCommand(newAnalyzeCmd(app))
}

func newFundamentalCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "fundamental <metrics.yaml>",
		Short: "Score fundamental ratios from a metrics file",
		Long: `Read raw financial figures (price, eps, book_value_per_share, net_income,
equity, total_debt, current_assets, current_liabilities, earnings_growth_pct,
previous_eps, annual_dividend) and rate each derived ratio.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readMetrics(args[0])
			if err != nil {
				return err
			}
			fa, err := fundamental.NewAnalyzer(app.Config.Fundamental, app.Log)
			if err != nil {
				return err
			}
			fs, err := fa.Analyze(m)
			if err != nil {
				return err
			}
			return app.print(cmd, fs, notifier.FormatFundamental(fs))
		},
	}
}

func newTechnicalCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "technical <prices.csv>",
		Short: "Score technical indicators from a price CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := readPrices(args[0])
			if err != nil {
				return err
			}
			ta, err := technical.NewAnalyzer(app.Config.Technical, app.Log)
			if err != nil {
				return err
			}
			ts, err := ta.AnalyzeHistory(h)
			if err != nil {
				return err
			}
			return app.print(cmd, ts, notifier.FormatTechnical(ts))
		},
	}
}

func newAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [symbol]",
		Short: "Full recommendation for a symbol",
		Long: `Combine fundamental, technical and risk scores into a verdict.

With a symbol, its metrics and price file come from the watchlist. Otherwise
pass --metrics and/or --prices directly.`,
		Example: `  cse-analyzer analyze JKH.N0000
  cse-analyzer analyze --metrics jkh.yaml --prices jkh.csv --risk 40 --save
  cse-analyzer analyze JKH.N0000 --csv out.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(cmd, app, args)
			if err != nil {
				return err
			}
			engine, err := app.engine()
			if err != nil {
				return err
			}
			a, err := engine.Analyze(req)
			if err != nil {
				return err
			}

			if save, _ := cmd.Flags().GetBool("save"); save {
				rec, err := app.recorder()
				if err != nil {
					return err
				}
				defer rec.Close()
				if _, err := rec.RecordAnalysis(a); err != nil {
					return err
				}
			}
			if path, _ := cmd.Flags().GetString("csv"); path != "" {
				if err := writeCSV(path, a); err != nil {
					return err
				}
				app.Log.Info().Str("path", path).Msg("analysis exported")
			}

			report := notifier.FormatAnalysis(a)
			target, _ := cmd.Flags().GetFloat64("target")
			if a.Price > 0 {
				plan, err := engine.EntryPrice(a, target)
				if err != nil {
					return err
				}
				report += "\n" + notifier.FormatEntry(plan)
			}
			return app.print(cmd, a, report)
		},
	}
	cmd.Flags().String("metrics", "", "YAML file of fundamental figures")
	cmd.Flags().String("prices", "", "CSV file of closing prices")
	cmd.Flags().Float64("risk", 0, "risk score 0-100; derived from the data when unset")
	cmd.Flags().Float64("target", 10, "target return in percent for the entry plan")
	cmd.Flags().Bool("save", false, "record the analysis in the history database")
	cmd.Flags().String("csv", "", "also write the analysis as CSV to this file")
	return cmd
}

func buildRequest(cmd *cobra.Command, app *App, args []string) (model.AnalysisRequest, error) {
	metricsPath, _ := cmd.Flags().GetString("metrics")
	pricesPath, _ := cmd.Flags().GetString("prices")

	var req model.AnalysisRequest
	switch {
	case len(args) == 1 && metricsPath == "" && pricesPath == "":
		wl, err := collector.LoadWatchlist(app.Config.Watchlist.Path)
		if err != nil {
			return req, err
		}
		entry, ok := findEntry(wl, args[0])
		if !ok {
			return req, model.InvalidInput("symbol", "%s is not on the watchlist %s", args[0], app.Config.Watchlist.Path)
		}
		fetcher := collector.NewCSVFetcher(filepath.Dir(app.Config.Watchlist.Path), wl)
		if req, err = collector.NewCollector(fetcher, app.Log).Collect(entry); err != nil {
			return req, err
		}
	case metricsPath != "" || pricesPath != "":
		if len(args) == 1 {
			req.Symbol = strings.ToUpper(args[0])
		}
		if metricsPath != "" {
			m, err := readMetrics(metricsPath)
			if err != nil {
				return req, err
			}
			req.Metrics = m
		}
		if pricesPath != "" {
			h, err := readPrices(pricesPath)
			if err != nil {
				return req, err
			}
			req.Prices, req.Volumes = h.Closes, h.Volumes
		}
	default:
		return req, model.InvalidInput("symbol", "give a watchlist symbol or --metrics/--prices files")
	}

	if cmd.Flags().Changed("risk") {
		risk, _ := cmd.Flags().GetFloat64("risk")
		req.RiskScore = &risk
	}
	return req, nil
}

func findEntry(wl *collector.Watchlist, symbol string) (collector.WatchlistEntry, bool) {
	for _, e := range wl.Symbols {
		if strings.EqualFold(e.Symbol, symbol) {
			return e, true
		}
	}
	return collector.WatchlistEntry{}, false
}

func readMetrics(path string) (model.FundamentalMetrics, error) {
	var m model.FundamentalMetrics
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read metrics: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, model.InvalidInput("metrics", "parse %s: %v", path, err)
	}
	return m, nil
}

func readPrices(path string) (model.PriceHistory, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.PriceHistory{}, fmt.Errorf("open prices: %w", err)
	}
	defer f.Close()
	h, err := collector.ParseHistory(f)
	if err != nil {
		return h, model.InvalidInput("prices", "parse %s: %v", path, err)
	}
	if len(h.Closes) == 0 {
		return h, model.InsufficientData("prices", "%s has no closing prices", path)
	}
	return h, nil
}

func writeCSV(path string, a *model.Analysis) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := notifier.WriteAnalysisCSV(f, []*model.Analysis{a}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
