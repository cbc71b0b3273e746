package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/vandanchopra/MathematricksQ-sub000/config"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/adapters/cache"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/adapters/notify"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/adapters/provider"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/adapters/storage"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/adapters/toolsvc"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/gateway"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/pipeline"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one discovery cycle and exit")
	research := flag.String("research", "", "mine documents for strategies with this query, then exit")
	topN := flag.Int("top", 0, "print the N best strategies from history, then exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full shortlist table (default: compact 1-line)")
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

	slog.Info("discovery service starting",
		"config", *configPath,
		"interval", cfg.DiscoveryInterval(),
		"candidates", cfg.Discovery.Candidates,
		"top_k", cfg.Discovery.TopK,
		"once", *once,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	notifier := notify.NewConsole(*table)

	// El modo -top solo lee el histórico: no necesita tool runner ni modelos.
	if *topN > 0 {
		printLeaderboard(ctx, store, notifier, *topN)
		return
	}

	tools := toolsvc.NewClient(cfg.Tools.BaseURL)
	if err := tools.WaitReady(ctx); err != nil {
		slog.Warn("tool runner not ready, continuing anyway", "err", err, "base", cfg.Tools.BaseURL)
	}

	ttl := cfg.CacheTTL()
	backtester := toolsvc.NewBacktestService(tools, cache.New(filepath.Join(cfg.Tools.CacheDir, "backtester"), ttl))
	marketData := toolsvc.NewMarketDataService(tools, cache.New(filepath.Join(cfg.Tools.CacheDir, "marketdata"), ttl))
	researcher := toolsvc.NewResearchService(tools, cache.New(filepath.Join(cfg.Tools.CacheDir, "research"), ttl))

	primary := provider.NewOpenAI(cfg.Providers.Primary.BaseURL, cfg.Providers.Primary.APIKey, cfg.Providers.Primary.Model)
	var fallback ports.TextProvider
	if !cfg.Providers.DisableFallback {
		fallback = provider.NewOllama(cfg.Providers.Fallback.BaseURL, cfg.Providers.Fallback.Model)
	}
	gw := gateway.New(primary, fallback, cfg.Providers.MaxTokens)

	pipeCfg := pipeline.Config{
		Interval:       cfg.DiscoveryInterval(),
		CandidateCount: cfg.Discovery.Candidates,
		TopK:           cfg.Discovery.TopK,
		Workers:        cfg.Discovery.Workers,
		Symbols:        cfg.Discovery.Symbols,
		Targets: domain.TradingTargets{
			MinCAGR:         cfg.Targets.MinCAGR,
			MinSharpeRatio:  cfg.Targets.MinSharpeRatio,
			MaxDrawdown:     cfg.Targets.MaxDrawdown,
			MinWinRate:      cfg.Targets.MinWinRate,
			MinProfitFactor: cfg.Targets.MinProfitFactor,
		},
		Once: *once,
	}

	p := pipeline.New(pipeCfg, gw, backtester, marketData, researcher, store, notifier)

	if *research != "" {
		runResearch(ctx, p, store, notifier, *research)
		return
	}

	if err := p.Run(ctx); err != nil {
		slog.Error("discovery service exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("discovery service stopped cleanly")
}

func runResearch(ctx context.Context, p *pipeline.Pipeline, store *storage.SQLiteStorage, notifier *notify.Console, query string) {
	slog.Info("=== RESEARCH MODE: mining documents for strategies ===", "query", query)

	result, err := p.RunResearch(ctx, query)
	if err != nil {
		slog.Error("research run failed", "err", err)
		os.Exit(1)
	}

	if err := notifier.Notify(ctx, result); err != nil {
		slog.Warn("notifier error", "err", err)
	}
	if err := store.SaveRun(ctx, result); err != nil {
		slog.Warn("storage error", "err", err)
	}

	slog.Info("research run complete",
		"generated", len(result.Generated),
		"selected", len(result.Selected),
		"optimized", len(result.Optimized),
		"best_score", result.BestScore(),
	)
}

func printLeaderboard(ctx context.Context, store *storage.SQLiteStorage, notifier *notify.Console, n int) {
	strats, err := store.TopStrategies(ctx, n)
	if err != nil {
		slog.Error("failed to load top strategies", "err", err)
		os.Exit(1)
	}
	notifier.Leaderboard(strats)
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
