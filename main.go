package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/phrasebot/internal/ai"
	"github.com/example/phrasebot/internal/bot"
	"github.com/example/phrasebot/internal/config"
	"github.com/example/phrasebot/internal/database"
	"github.com/example/phrasebot/internal/excel"
	"github.com/example/phrasebot/internal/scheduler"
	"github.com/example/phrasebot/internal/session"
	"github.com/example/phrasebot/internal/training"
)

func main() {
	if err := run(); err != nil {
		slog.Error("phrasebot stopped with error", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(database.Config{Type: cfg.DB.Type, Path: cfg.DB.Path, URL: cfg.DB.URL})
	if err != nil {
		return err
	}
	defer db.Close()
	repo := database.NewRepository(db)

	if cfg.CatalogImport != "" {
		importCfg := excel.DefaultImportConfig()
		importCfg.FilePath = cfg.CatalogImport
		result, err := excel.NewImporter(repo, importCfg).Import(ctx)
		if err != nil {
			return fmt.Errorf("catalog import: %w", err)
		}
		logger.Info("catalog imported",
			"file", cfg.CatalogImport,
			"rows", result.TotalProcessed,
			"created", result.Created,
			"skipped", result.Skipped,
			"topics", result.TopicsCreated,
			"levels", result.LevelsCreated)
		for _, e := range result.Errors {
			logger.Warn("catalog row rejected", "err", e)
		}
	}

	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	scorer := ai.New(ai.Config{
		APIKey:  cfg.AI.APIKey,
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	}, logger.With("component", "ai"))
	if cfg.AI.APIKey == "" {
		logger.Warn("AI_API_KEY is not set, every answer will get the fallback evaluation")
	}

	engine := training.NewEngine(repo, scorer, sessions,
		training.Config{Threshold: cfg.Training.Threshold}, logger.With("component", "training"))

	botCfg := bot.DefaultConfig()
	botCfg.Debug = cfg.Debug
	b, err := bot.NewBot(cfg.TelegramToken, repo, engine, botCfg, logger.With("component", "bot"))
	if err != nil {
		return err
	}

	reminders := scheduler.New(repo, b, scheduler.Config{
		Interval: cfg.Notify.Interval,
		FirstRun: cfg.Notify.FirstRun,
	}, logger.With("component", "scheduler"))
	if err := reminders.Register(ctx); err != nil {
		return err
	}
	reminders.Start()
	defer reminders.Stop()

	logger.Info("bot started, press Ctrl+C to stop")
	b.Run(ctx)
	logger.Info("bot stopped")
	return nil
}

func openSessions(ctx context.Context, cfg config.Config) (session.Store, func(), error) {
	if cfg.Session.Backend != "redis" {
		return session.NewMemoryStore(cfg.Session.TTL), func() {}, nil
	}

	store := session.NewRedisStore(session.RedisConfig{
		Addr:     cfg.Session.RedisAddr,
		Password: cfg.Session.RedisPassword,
		DB:       cfg.Session.RedisDB,
		TTL:      cfg.Session.TTL,
	})
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}
