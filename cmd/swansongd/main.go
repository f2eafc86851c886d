package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"swansong/internal/config"
	"swansong/internal/daemon"
	"swansong/internal/logging"
	"swansong/internal/pipeline"
	"swansong/internal/services/lyrics"
	"swansong/internal/services/mailer"
	"swansong/internal/services/replicate"
	"swansong/internal/session"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Secrets may live in a local .env file during development.
	_ = godotenv.Load()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := session.Open(cfg)
	if err != nil {
		logger.Error("open session store", logging.Error(err))
		return
	}

	lyricsClient := lyrics.NewClient(lyrics.Config{
		BaseURL: cfg.Lyrics.BaseURL,
		Timeout: time.Duration(cfg.Lyrics.TimeoutSeconds) * time.Second,
	})
	predictions := replicate.NewClient(replicate.Config{
		APIToken:     cfg.Replicate.APIToken,
		BaseURL:      cfg.Replicate.BaseURL,
		PollInterval: time.Duration(cfg.Replicate.PollIntervalSeconds) * time.Second,
	})

	handlers, err := pipeline.BuildHandlers(cfg, lyricsClient, predictions)
	if err != nil {
		logger.Error("build pipeline", logging.Error(err))
		return
	}
	runner := pipeline.NewRunner(cfg, store, logger, handlers)

	d, err := daemon.New(cfg, store, runner, mailer.NewService(cfg), logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("swansongd shutting down")
}
