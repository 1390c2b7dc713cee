package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/putscan/config"
	"github.com/alejandrodnm/putscan/internal/adapters/notify"
	"github.com/alejandrodnm/putscan/internal/adapters/storage"
	"github.com/alejandrodnm/putscan/internal/adapters/yahoo"
	"github.com/alejandrodnm/putscan/internal/domain"
	"github.com/alejandrodnm/putscan/internal/ports"
	"github.com/alejandrodnm/putscan/internal/screener"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	ticker := flag.String("ticker", "", "underlying ticker symbol (empty disables the pipeline)")
	basis := flag.String("basis", "", "premium price basis: bid|last|ask (overrides config)")
	minReturn := flag.Float64("min-return", -1, "min annualized return %% (0-100, overrides config)")
	minSafety := flag.Float64("min-safety", -1, "min safety margin %% (0-50, overrides config)")
	otm := flag.Bool("otm", true, "show out-of-the-money strikes only")
	refresh := flag.Bool("refresh", false, "force refresh: clear the cached chain before screening")
	history := flag.Int("history", 0, "print the last N persisted scans for the ticker and exit")
	noStore := flag.Bool("no-store", false, "skip persisting scan history")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
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

	criteria, err := buildCriteria(cfg, *basis, *minReturn, *minSafety, *otm)
	if err != nil {
		slog.Error("invalid criteria", "err", err)
		os.Exit(1)
	}

	slog.Info("putscan starting",
		"config", *configPath,
		"ticker", domain.NormalizeTicker(*ticker),
		"basis", criteria.PriceBasis.String(),
		"min_return_pct", criteria.MinAnnualizedReturnPct,
		"min_safety_pct", criteria.MinSafetyMarginPct,
		"otm_only", criteria.OTMOnly,
		"cache_ttl", cfg.CacheTTL(),
	)

	client := yahoo.NewClient(cfg.Feed.BaseURL, cfg.ChainSpacing())
	notifier := notify.NewConsole()

	var store ports.Storage
	if !*noStore {
		st, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer st.Close()
		store = st
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *history > 0 {
		if store == nil {
			slog.Error("-history requires storage (drop -no-store)")
			os.Exit(1)
		}
		summaries, err := store.History(ctx, *ticker, *history)
		if err != nil {
			slog.Error("history query failed", "err", err)
			os.Exit(1)
		}
		notifier.PrintHistory(summaries)
		return
	}

	scrCfg := screener.Config{
		CacheTTL:       cfg.CacheTTL(),
		MaxExpirations: cfg.Screener.MaxExpirations,
		Filter: screener.FilterConfig{
			BandLow:  cfg.Screener.BandLow,
			BandHigh: cfg.Screener.BandHigh,
		},
	}
	s := screener.New(scrCfg, client, notifier, store)

	if *refresh {
		s.Refresh(*ticker)
	}

	if err := s.Run(ctx, *ticker, criteria); err != nil {
		notifier.PrintError(err)
		os.Exit(1)
	}
}

// buildCriteria combina los defaults del config con los flags explícitos.
func buildCriteria(cfg *config.Config, basis string, minReturn, minSafety float64, otm bool) (domain.CriteriaSelection, error) {
	if basis == "" {
		basis = cfg.Screener.PriceBasis
	}
	priceBasis, err := domain.ParsePriceBasis(basis)
	if err != nil {
		return domain.CriteriaSelection{}, err
	}

	criteria := domain.CriteriaSelection{
		PriceBasis:             priceBasis,
		MinAnnualizedReturnPct: cfg.Screener.MinAnnualizedReturnPct,
		MinSafetyMarginPct:     cfg.Screener.MinSafetyMarginPct,
		OTMOnly:                cfg.Screener.OTMOnly,
	}
	if minReturn >= 0 {
		criteria.MinAnnualizedReturnPct = clamp(minReturn, 0, 100)
	}
	if minSafety >= 0 {
		criteria.MinSafetyMarginPct = clamp(minSafety, 0, 50)
	}

	// El flag -otm solo manda si el usuario lo tocó explícitamente.
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "otm" {
			criteria.OTMOnly = otm
		}
	})

	return criteria, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
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
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
