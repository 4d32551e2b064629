package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/synqra/aurafx/config"
	"github.com/synqra/aurafx/internal/adapters/marketdata"
	"github.com/synqra/aurafx/internal/adapters/notify"
	"github.com/synqra/aurafx/internal/adapters/storage"
	"github.com/synqra/aurafx/internal/aura"
	"github.com/synqra/aurafx/internal/scanner"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one scan cycle and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full table (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("aurafx starting",
		"config", *configPath,
		"interval", cfg.ScanInterval(),
		"symbols", cfg.Scanner.Symbols,
		"once", *once,
	)

	client := marketdata.NewClient(cfg.API.MarketDataBase)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	notifier := notify.NewConsole(*table)

	scanCfg := scanner.DefaultConfig()
	scanCfg.ScanInterval = cfg.ScanInterval()
	scanCfg.Symbols = cfg.Scanner.Symbols
	scanCfg.Interval = cfg.Scanner.CandleInterval
	scanCfg.CandleLimit = cfg.Scanner.CandleLimit
	scanCfg.Workers = cfg.Scanner.Workers
	scanCfg.DryRun = *once
	scanCfg.Engine = aura.Options{
		TrendLookback:   cfg.Engine.TrendLookback,
		SwingWindow:     cfg.Engine.SwingWindow,
		MinSwingSizePct: cfg.Engine.MinSwingSizePct,
		TzOffsetMinutes: cfg.Engine.TzOffsetMinutes,
		AccountBalance:  cfg.Risk.AccountBalance,
		RiskPercent:     cfg.Risk.RiskPercent,
	}
	scanCfg.Filter = scanner.FilterConfig{
		MinScore:             cfg.Scanner.MinScore,
		IncludeInvalid:       cfg.Scanner.IncludeInvalid,
		OnlyActionable:       cfg.Scanner.OnlyActionable,
		RequireActiveSession: cfg.Scanner.RequireActiveSession,
	}

	s := scanner.New(scanCfg, client, store, notifier)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		slog.Error("scanner exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("aurafx stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
