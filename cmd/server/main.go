package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/corpuslint/internal/api"
	"github.com/dgallion1/corpuslint/internal/config"
	"github.com/dgallion1/corpuslint/internal/history"
	"github.com/dgallion1/corpuslint/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServe(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var store *history.Store
	if cfg.DBPath != "" {
		store, err = history.Open(cfg.DBPath)
		if err != nil {
			log.Error("cannot open history database", "error", err)
			os.Exit(1)
		}
	}

	stats := pipeline.NewScanStats(cfg.StatsWindow)
	scanner := pipeline.NewScanner(cfg.WorkerCount, cfg.MaxFileBytes, log, stats)

	srv := api.NewServer(scanner, stats, store, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if store != nil {
			store.Close()
		}
	}()

	log.Info("starting corpuslint", "port", cfg.Port, "root", cfg.Root)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
