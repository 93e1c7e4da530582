package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"CSEAnalyzer/internal/collector"
	"CSEAnalyzer/internal/model"
	"CSEAnalyzer/internal/notifier"
	"CSEAnalyzer/internal/recorder"
	"CSEAnalyzer/internal/strategy"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultTargetPct is the return used for entry plans in command replies.
const DefaultTargetPct = 10.0

// historyLimit caps the rows returned by the /history command.
const historyLimit = 10

// Scheduler runs the watchlist analysis and history retention on cron.
type Scheduler struct {
	Cron          *cron.Cron
	Engine        *strategy.Engine
	Notifier      notifier.Notifier
	Recorder      recorder.Recorder
	WatchlistPath string
	RetentionDays int
	// NewFetcher builds the price source for a loaded watchlist. Defaults to
	// CSV files next to the watchlist.
	NewFetcher func(wl *collector.Watchlist) collector.Fetcher
	Ctx        context.Context

	mu  sync.Mutex // serialises watchlist runs
	log zerolog.Logger
	now func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, engine *strategy.Engine, n notifier.Notifier, rec recorder.Recorder, watchlistPath string, retentionDays int, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:          cron.New(cron.WithSeconds()),
		Engine:        engine,
		Notifier:      n,
		Recorder:      rec,
		WatchlistPath: watchlistPath,
		RetentionDays: retentionDays,
		NewFetcher: func(wl *collector.Watchlist) collector.Fetcher {
			return collector.NewCSVFetcher(filepath.Dir(watchlistPath), wl)
		},
		Ctx: ctx,
		log: log.With().Str("component", "scheduler").Logger(),
		now: time.Now,
	}
}

// RegisterAll registers the watchlist job and, when retention is enabled,
// the prune job.
func (s *Scheduler) RegisterAll(watchlistCron, retentionCron string) error {
	if _, err := s.Cron.AddFunc(watchlistCron, s.watchlistTask); err != nil {
		return fmt.Errorf("register watchlist task: %w", err)
	}
	if s.RetentionDays > 0 {
		if _, err := s.Cron.AddFunc(retentionCron, s.retentionTask); err != nil {
			return fmt.Errorf("register retention task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunWatchlistNow executes the watchlist task immediately.
func (s *Scheduler) RunWatchlistNow() {
	s.watchlistTask()
}

func (s *Scheduler) watchlistTask() {
	s.log.Info().Msg("running watchlist analysis")
	results, failures, err := s.RunWatchlist(s.Ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("watchlist run")
		s.trySend(fmt.Sprintf("Watchlist run failed: %v", err))
		return
	}
	s.trySend(notifier.FormatDigest(s.now(), results, failures))
}

// RunWatchlist analyses and records every watchlist symbol. Per-symbol
// failures are collected and do not stop the run; the error is non-nil only
// when the watchlist itself cannot be loaded.
func (s *Scheduler) RunWatchlist(ctx context.Context) ([]*model.Analysis, map[string]error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wl, err := collector.LoadWatchlist(s.WatchlistPath)
	if err != nil {
		return nil, nil, err
	}
	col := collector.NewCollector(s.NewFetcher(wl), s.log)

	var results []*model.Analysis
	failures := map[string]error{}
	for _, entry := range wl.Symbols {
		if err := ctx.Err(); err != nil {
			return results, failures, err
		}
		a, err := s.analyze(col, entry)
		if err != nil {
			s.log.Warn().Str("symbol", entry.Symbol).Err(err).Msg("analysis failed")
			failures[entry.Symbol] = err
			continue
		}
		results = append(results, a)
	}
	s.log.Info().Int("analysed", len(results)).Int("failed", len(failures)).Msg("watchlist run complete")
	return results, failures, nil
}

func (s *Scheduler) analyze(col *collector.Collector, entry collector.WatchlistEntry) (*model.Analysis, error) {
	req, err := col.Collect(entry)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	a, err := s.Engine.Analyze(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.Recorder.RecordAnalysis(a); err != nil {
		s.log.Error().Str("symbol", entry.Symbol).Err(err).Msg("record analysis")
	}
	return a, nil
}

func (s *Scheduler) retentionTask() {
	if _, err := s.Prune(); err != nil {
		s.log.Error().Err(err).Msg("prune history")
	}
}

// Prune removes history older than the retention window.
func (s *Scheduler) Prune() (int64, error) {
	if s.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := s.now().AddDate(0, 0, -s.RetentionDays)
	n, err := s.Recorder.Prune(cutoff)
	if err != nil {
		return 0, err
	}
	s.log.Info().Int64("deleted", n).Time("before", cutoff).Msg("history pruned")
	return n, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	arg := ""
	if len(fields) > 1 {
		arg = strings.ToUpper(fields[1])
	}

	switch strings.ToLower(fields[0]) {
	case "/run":
		go s.watchlistTask()
		return "Watchlist run started"
	case "/watchlist":
		wl, err := collector.LoadWatchlist(s.WatchlistPath)
		if err != nil {
			return fmt.Sprintf("Cannot load watchlist: %v", err)
		}
		if len(wl.Symbols) == 0 {
			return "Watchlist is empty"
		}
		var b strings.Builder
		for _, e := range wl.Symbols {
			fmt.Fprintf(&b, "%s %s\n", e.Symbol, e.CompanyName)
		}
		return b.String()
	case "/analyze":
		if arg == "" {
			return "Usage: /analyze SYMBOL"
		}
		return s.analyzeCommand(arg)
	case "/history":
		rows, err := s.Recorder.History(arg, historyLimit)
		if err != nil {
			return fmt.Sprintf("Cannot read history: %v", err)
		}
		return notifier.FormatHistory(rows)
	default:
		return helpText
	}
}

const helpText = `Commands:
/analyze SYMBOL - analyse one watchlist symbol
/run - analyse the whole watchlist
/watchlist - list watchlist symbols
/history [SYMBOL] - recent analyses`

func (s *Scheduler) analyzeCommand(symbol string) string {
	wl, err := collector.LoadWatchlist(s.WatchlistPath)
	if err != nil {
		return fmt.Sprintf("Cannot load watchlist: %v", err)
	}
	for _, entry := range wl.Symbols {
		if !strings.EqualFold(entry.Symbol, symbol) {
			continue
		}
		col := collector.NewCollector(s.NewFetcher(wl), s.log)
		a, err := s.analyze(col, entry)
		if err != nil {
			return fmt.Sprintf("%s: %v", entry.Symbol, err)
		}
		report := notifier.FormatAnalysis(a)
		if plan, err := s.Engine.EntryPrice(a, DefaultTargetPct); err == nil {
			report += "\n" + notifier.FormatEntry(plan)
		}
		return report
	}
	return fmt.Sprintf("%s is not on the watchlist", symbol)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.Notify(s.Ctx, text); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
