// Command server runs the recipe-sharing API. main stays minimal: load
// configuration, build the logger, hand off to internal/server.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/foodgramapp/foodgram/internal/config"
	"github.com/foodgramapp/foodgram/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))

	// The database and media directories are created up front so a fresh
	// checkout runs without manual setup.
	for _, dir := range []string{filepath.Dir(cfg.Database.Path), cfg.Media.Dir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create directory",
				slog.String("dir", dir),
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
