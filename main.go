// Package main is the entry point for the finflow recurring-transaction
// and bill-reminder engine daemon.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.com/yelinaung/finflow/internal/config"
	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/engine"
	"gitlab.com/yelinaung/finflow/internal/logger"
	"gitlab.com/yelinaung/finflow/internal/notify"
	"gitlab.com/yelinaung/finflow/internal/repository"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("finflow %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.SetLevel(cfg.LogLevel)
	logger.InitHashSalt()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Log.Info().Msg("Database initialized successfully")

	clock := engine.SystemClock{}
	store := repository.NewStore(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	eng := engine.New(engine.Deps{
		Store:            store,
		Notifier:         notify.NewScheduler(notificationRepo, clock),
		Cache:            repository.NewStateRepository(pool),
		Clock:            clock,
		Location:         cfg.Location(),
		ReminderLeadDays: cfg.ReminderLeadDays,
	})

	runner := engine.NewRunner(eng, cfg.SweepInterval, cfg.SweepConcurrency)
	dispatcher := notify.NewDispatcher(notificationRepo, notify.LogSender{}, clock, time.Minute)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info().Msg("Shutting down...")
		cancel()
	}()

	go dispatcher.Run(ctx)
	runner.Run(ctx)
}
