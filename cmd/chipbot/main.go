package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/coder/quartz"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/susu3304/chipbot/internal/api"
	"github.com/susu3304/chipbot/internal/bot"
	"github.com/susu3304/chipbot/internal/config"
	"github.com/susu3304/chipbot/internal/db"
	"github.com/susu3304/chipbot/internal/ledger"
	"github.com/susu3304/chipbot/internal/logger"
	"github.com/susu3304/chipbot/internal/session"
	"github.com/susu3304/chipbot/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		archive session.Archive
		history api.History
	)
	if cfg.DatabaseURL != "" {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			lg.Fatal("failed to connect to database", zap.Error(err))
		}
		defer database.Close()

		if err := database.RunMigrations(ctx); err != nil {
			lg.Fatal("failed to run migrations", zap.Error(err))
		}
		archive = database
		history = database
	} else {
		lg.Info("DATABASE_URL not set, settlements will not be archived")
	}

	clock := quartz.NewReal()
	pending := workflow.NewStore(clock, cfg.PendingTTL)
	controller := session.New(ledger.New(), pending, clock, lg, archive)

	discordBot, err := bot.New(cfg.DiscordToken, controller, lg)
	if err != nil {
		lg.Fatal("failed to create discord bot", zap.Error(err))
	}
	sweeper := bot.NewSweepWorker(pending, clock, cfg.PendingSweepInterval, lg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return discordBot.Run(gctx) })
	g.Go(func() error { return sweeper.Run(gctx) })
	if cfg.APIEnabled {
		apiServer := api.New(controller, history, cfg.HistoryLimit, lg)
		g.Go(func() error { return apiServer.Run(gctx, cfg.WebBind) })
	}

	if err := g.Wait(); err != nil {
		lg.Fatal("shutting down with error", zap.Error(err))
	}
	lg.Info("shut down cleanly")
}
