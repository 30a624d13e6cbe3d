// Package main is the entry point for the plant care server. It stays
// minimal: load configuration, set up logging, make sure the data
// directory exists, and hand over to internal/server.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/plantcare/internal/config"
	"github.com/sakif/plantcare/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := config.Load()

	if cfg.CronSecret == "" {
		logger.Warn("CRON_SECRET not set, the cron trigger endpoint is disabled")
	}

	// The SQLite file lives under a data directory that may not exist yet.
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
