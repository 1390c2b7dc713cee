package screener

import (
	"context"
	"log/slog"
	"time"

	"github.com/alejandrodnm/putscan/internal/domain"
	"github.com/alejandrodnm/putscan/internal/ports"
)

const defaultMaxExpirations = 3

// SnapshotFetcher arma el batch de fetch completo de un ticker:
// quote → expiraciones → cadenas de las N expiraciones más cercanas.
//
// Semántica best-effort explícita: cada expiración caída se registra en
// snapshot.Skipped y el batch sigue; solo un batch con cero éxitos es un
// fallo duro.
type SnapshotFetcher struct {
	feed           ports.MarketFeed
	maxExpirations int
	now            func() time.Time
}

// NewSnapshotFetcher crea un fetcher que pide como máximo maxExpirations
// cadenas por batch (<= 0 usa el default de 3).
func NewSnapshotFetcher(feed ports.MarketFeed, maxExpirations int) *SnapshotFetcher {
	if maxExpirations <= 0 {
		maxExpirations = defaultMaxExpirations
	}
	return &SnapshotFetcher{
		feed:           feed,
		maxExpirations: maxExpirations,
		now:            time.Now,
	}
}

// Fetch ejecuta el batch y devuelve el snapshot inmutable resultante.
func (f *SnapshotFetcher) Fetch(ctx context.Context, ticker string) (domain.ChainSnapshot, error) {
	quote, err := f.feed.FetchQuote(ctx, ticker)
	if err != nil {
		return domain.ChainSnapshot{}, err
	}

	expirations, err := f.feed.FetchExpirations(ctx, ticker)
	if err != nil {
		return domain.ChainSnapshot{}, err
	}
	if len(expirations) > f.maxExpirations {
		expirations = expirations[:f.maxExpirations]
	}

	snap := domain.ChainSnapshot{
		Quote:     quote,
		FetchedAt: f.now().UTC(),
	}

	succeeded := 0
	rateLimited := 0
	for _, exp := range expirations {
		puts, err := f.feed.FetchPutChain(ctx, ticker, exp)
		if err != nil {
			// Una expiración caída no tumba el batch.
			slog.Warn("put chain fetch failed, skipping expiration",
				"ticker", ticker,
				"expiration", exp.Format("2006-01-02"),
				"err", err,
			)
			snap.Skipped = append(snap.Skipped, domain.ExpirationFailure{Expiration: exp, Err: err})
			if domain.IsRateLimited(err) {
				rateLimited++
			}
			continue
		}
		succeeded++
		snap.Contracts = append(snap.Contracts, puts...)
	}

	if succeeded == 0 {
		// Si todo falló por throttling, la guía correcta es la de rate limit.
		if rateLimited > 0 && rateLimited == len(snap.Skipped) {
			return domain.ChainSnapshot{}, &domain.FeedError{
				Kind:   domain.KindRateLimited,
				Ticker: ticker,
				Detail: "every expiration request was throttled",
			}
		}
		return domain.ChainSnapshot{}, &domain.FeedError{
			Kind:   domain.KindNoOptionData,
			Ticker: ticker,
			Detail: "all requested expirations failed",
		}
	}

	slog.Info("chain snapshot fetched",
		"ticker", ticker,
		"price", quote.CurrentPrice,
		"expirations", succeeded,
		"skipped", len(snap.Skipped),
		"contracts", len(snap.Contracts),
	)
	return snap, nil
}
