// Command curator-server runs the suggestion backend: the persistent
// suggestion store, the HTTP API that review sessions talk to, and the
// optional subreddit scraper that feeds the queue.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"curator/internal/config"
	"curator/internal/logging"
	"curator/internal/scraper"
	"curator/internal/server"
	"curator/internal/services/llm"
	"curator/internal/services/reddit"
	"curator/internal/suggestions"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("validate config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg, "curator-server.log")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	lock := flock.New(cfg.ServerLockPath())
	locked, err := lock.TryLock()
	if err != nil {
		logger.Error("acquire server lock", logging.Error(err))
		os.Exit(1)
	}
	if !locked {
		logger.Error("another curator-server instance is already running",
			logging.String("lock", cfg.ServerLockPath()))
		os.Exit(1)
	}
	defer lock.Unlock() //nolint:errcheck

	store, err := suggestions.Open(cfg)
	if err != nil {
		logger.Error("open suggestion store", logging.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	generator := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})

	redditClient, err := reddit.NewClient(reddit.Config{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		RefreshToken: cfg.Reddit.RefreshToken,
		UserAgent:    cfg.Reddit.UserAgent,
		BaseURL:      cfg.Reddit.BaseURL,
		TokenURL:     cfg.Reddit.TokenURL,
		Timeout:      time.Duration(cfg.Reddit.RequestTimeout) * time.Second,
	})
	if err != nil {
		logger.Error("create reddit client", logging.Error(err))
		os.Exit(1)
	}

	srv, err := server.New(cfg, store, generator, redditClient, logger)
	if err != nil {
		logger.Error("create server", logging.Error(err))
		os.Exit(1)
	}
	if err := srv.Start(ctx); err != nil {
		logger.Error("start server", logging.Error(err))
		os.Exit(1)
	}
	defer srv.Stop()

	if cfg.Scraper.Enabled {
		s := scraper.New(cfg, store, redditClient, logger)
		go s.Run(ctx)
	}

	<-ctx.Done()
	logger.Info("curator-server shutting down")
}
