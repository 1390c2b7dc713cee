package screener

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/putscan/internal/cache"
	"github.com/alejandrodnm/putscan/internal/domain"
	"github.com/alejandrodnm/putscan/internal/ports"
)

// Config contiene la configuración del screener.
type Config struct {
	// CacheTTL es la ventana en la que un snapshot se reutiliza sin tocar
	// el feed.
	CacheTTL time.Duration
	// MaxExpirations acota cuántas expiraciones cercanas se piden por batch.
	MaxExpirations int
	Filter         FilterConfig
}

// DefaultConfig devuelve una configuración razonable.
func DefaultConfig() Config {
	return Config{
		CacheTTL:       5 * time.Minute,
		MaxExpirations: defaultMaxExpirations,
		Filter:         DefaultFilterConfig(),
	}
}

// Screener es el orquestador del pipeline: cache → métricas → filtro →
// filas. La cache es propiedad de la instancia, no estado global.
type Screener struct {
	cfg      Config
	cache    *cache.Store
	notifier ports.Notifier
	storage  ports.Storage
	filter   *Filter
}

// New crea un Screener con todas las dependencias inyectadas.
// storage puede ser nil para desactivar la persistencia.
func New(cfg Config, feed ports.MarketFeed, notifier ports.Notifier, storage ports.Storage) *Screener {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultConfig().CacheTTL
	}
	fetcher := NewSnapshotFetcher(feed, cfg.MaxExpirations)
	return &Screener{
		cfg:      cfg,
		cache:    cache.New(cfg.CacheTTL, fetcher.Fetch),
		notifier: notifier,
		storage:  storage,
		filter:   NewFilter(cfg.Filter),
	}
}

// Screen ejecuta el pipeline para un ticker y devuelve las filas.
// Un ticker vacío desactiva el pipeline: (nil, nil) sin tocar el feed.
func (s *Screener) Screen(ctx context.Context, ticker string, criteria domain.CriteriaSelection) ([]domain.Row, error) {
	key := domain.NormalizeTicker(ticker)
	if key == "" {
		return nil, nil
	}

	snap, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("screener.Screen %s: %w", key, err)
	}

	return s.Evaluate(snap, criteria), nil
}

// Evaluate recalcula métricas, filtros y proyección sobre un snapshot ya
// fetcheado. Cambiar PriceBasis o umbrales pasa siempre por aquí, nunca por
// un re-fetch.
func (s *Screener) Evaluate(snap domain.ChainSnapshot, criteria domain.CriteriaSelection) []domain.Row {
	candidates := make([]domain.Candidate, 0, len(snap.Contracts))
	for _, contract := range snap.Contracts {
		candidates = append(candidates, domain.Candidate{
			Contract: contract,
			Premium:  criteria.PriceBasis.Premium(contract),
			Metrics:  domain.Compute(snap.Quote, contract, criteria.PriceBasis),
		})
	}

	filtered := s.filter.Apply(snap.Quote.CurrentPrice, candidates, criteria)
	return AssembleRows(filtered)
}

// Run ejecuta un screening completo: pipeline + notificación + persistencia.
func (s *Screener) Run(ctx context.Context, ticker string, criteria domain.CriteriaSelection) error {
	start := time.Now()

	key := domain.NormalizeTicker(ticker)
	if key == "" {
		slog.Info("empty ticker, nothing to screen")
		return nil
	}

	snap, err := s.cache.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("screener.Run %s: %w", key, err)
	}
	rows := s.Evaluate(snap, criteria)

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, snap, criteria, rows); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	if s.storage != nil {
		if err := s.storage.SaveScan(ctx, snap, criteria, rows); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	slog.Info("screen complete",
		"ticker", key,
		"basis", criteria.PriceBasis.String(),
		"contracts", len(snap.Contracts),
		"rows", len(rows),
		"skipped_expirations", len(snap.Skipped),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// Refresh invalida la cache del ticker: el "force refresh" del operador y
// único mecanismo de reintento del sistema.
func (s *Screener) Refresh(ticker string) {
	s.cache.Clear(domain.NormalizeTicker(ticker))
}
