package main

import (
	"log/slog"

	"github.com/ivanoskov/civic_bot/internal/app"
	"github.com/ivanoskov/civic_bot/internal/config"
	"github.com/spf13/cobra"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var files []string
	if path, _ := cmd.Flags().GetString("env"); path != "" {
		files = append(files, path)
	}
	cfg, err := config.LoadConfig(files...)
	if err != nil {
		return nil, err
	}
	// Консоль не засоряем JSON-логами
	if cfg.LogLevel < slog.LevelWarn {
		cfg.LogLevel = slog.LevelWarn
	}
	app.NewLogger(cfg.LogLevel)
	return cfg, nil
}

func buildApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return app.Build(cmd.Context(), cfg, slog.Default())
}
