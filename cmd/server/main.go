package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sentimatrix/sentimatrix/internal/backlog"
	"github.com/sentimatrix/sentimatrix/internal/config"
	"github.com/sentimatrix/sentimatrix/internal/domain"
	"github.com/sentimatrix/sentimatrix/internal/groq"
	"github.com/sentimatrix/sentimatrix/internal/httpserver"
	"github.com/sentimatrix/sentimatrix/internal/postgres"
	"github.com/sentimatrix/sentimatrix/internal/realtime"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Logging.SlogLevel(),
	}))

	// Primary structured store
	repo, err := postgres.NewRepository(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("create repository: %w", err)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Legacy flat-file backup logs
	store := backlog.NewStore(cfg.Backlog.Dir)

	// Live subscriber registry
	hub := realtime.NewHub(logger.With("component", "realtime"))

	// External sentiment oracle
	oracle := groq.NewClient(cfg.Groq)

	classifier := domain.NewClassifier(cfg.Classification.Threshold)

	service, err := domain.NewEmailService(domain.EmailServiceDeps{
		Scorer:      oracle,
		Repository:  repo,
		BackupLog:   store,
		Broadcaster: hub,
		Classifier:  classifier,
		Logger:      logger.With("component", "pipeline"),
	})
	if err != nil {
		return fmt.Errorf("create email service: %w", err)
	}

	// Set up graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	server := httpserver.NewServer(cfg, service, hub, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server exited with error", "error", err)
		}
	}()

	logger.Info("server started", "port", cfg.Server.Port, "threshold", classifier.Threshold())

	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("error shutting down http server", "error", err)
	}

	return nil
}
