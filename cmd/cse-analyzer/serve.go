package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CSEAnalyzer/internal/notifier"
	"CSEAnalyzer/internal/scheduler"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduled watchlist analysis and Telegram commands",
		Long: `Analyse every watchlist symbol on the configured cron schedule, record the
results and send a digest. With Telegram configured the digest goes to the chat
and chat commands are answered; otherwise the digest is logged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.Config
			log := app.Log
			log.Info().Msg("cse-analyzer starting")

			engine, err := app.engine()
			if err != nil {
				return err
			}
			rec, err := app.recorder()
			if err != nil {
				return err
			}
			defer rec.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			var n notifier.Notifier = notifier.NewLogNotifier(log)
			var tn *notifier.TelegramNotifier
			if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
				tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.BaseURL, log)
				n = tn
			} else {
				log.Warn().Msg("telegram not configured, digests go to the log")
			}

			sched := scheduler.NewScheduler(ctx, engine, n, rec, cfg.Watchlist.Path, cfg.Database.RetentionDays, log)
			if err := sched.RegisterAll(cfg.Schedule.WatchlistCron, cfg.Schedule.RetentionCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if tn != nil {
				go tn.StartPolling(ctx, sched.HandleCommand)
				log.Info().Msg("telegram polling started")
			}

			runNow, _ := cmd.Flags().GetBool("run-now")
			if runNow || os.Getenv("RUN_ON_START") == "true" {
				log.Info().Msg("running watchlist now")
				go sched.RunWatchlistNow()
			}

			log.Info().Str("watchlist", cfg.Watchlist.Path).Str("cron", cfg.Schedule.WatchlistCron).Msg("running, press Ctrl+C to stop")
			<-ctx.Done()
			log.Info().Msg("shutdown signal received, stopping")
			return nil
		},
	}
	cmd.Flags().Bool("run-now", false, "analyse the watchlist once at start-up")
	return cmd
}
