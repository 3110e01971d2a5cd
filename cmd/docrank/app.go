package main

import (
	"fmt"
	"log/slog"
	"os"

	"docrank/internal/config"
	"docrank/internal/console"
	"docrank/internal/history"
	"docrank/internal/scoring"
	"docrank/internal/service"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg     *config.AppConfig
	logger  *slog.Logger
	history *history.Store
	svc     *service.Service
}

func loadConfig() (*config.AppConfig, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

// newApp loads configuration and assembles the service. The caller must
// call close when done.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logger := console.NewLogger(os.Stderr, level)
	slog.SetDefault(logger)

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithReporter(console.NewReporter(os.Stdout)),
	}
	if cfg.Personas.Path != "" {
		kb, err := scoring.LoadKnowledgeBase(cfg.Personas.Path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithKnowledgeBase(kb))
	}

	a := &app{cfg: cfg, logger: logger}
	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			// history is optional; ranking still works without it
			logger.Warn("run history disabled", slog.Any("error", err))
		} else {
			a.history = store
			opts = append(opts, service.WithRecorder(store))
		}
	}
	a.svc = service.New(cfg, opts...)
	return a, nil
}

func (a *app) close() {
	if a.history == nil {
		return
	}
	if err := a.history.Close(); err != nil {
		a.logger.Warn("closing history failed", slog.Any("error", err))
	}
}
