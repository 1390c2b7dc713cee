package screener_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/putscan/internal/domain"
	"github.com/alejandrodnm/putscan/internal/screener"
)

// --- fake feed ---

type fakeFeed struct {
	price    float64
	priceErr error

	expirations []time.Time
	expErr      error

	chains   map[string][]domain.OptionContract // key: fecha YYYY-MM-DD
	chainErr map[string]error

	quoteCalls int
	chainCalls int
}

func (f *fakeFeed) FetchQuote(_ context.Context, ticker string) (domain.Quote, error) {
	f.quoteCalls++
	if f.priceErr != nil {
		return domain.Quote{}, f.priceErr
	}
	return domain.Quote{Ticker: ticker, CurrentPrice: f.price, FetchedAt: time.Now()}, nil
}

func (f *fakeFeed) FetchExpirations(_ context.Context, _ string) ([]time.Time, error) {
	if f.expErr != nil {
		return nil, f.expErr
	}
	return f.expirations, nil
}

func (f *fakeFeed) FetchPutChain(_ context.Context, _ string, expiration time.Time) ([]domain.OptionContract, error) {
	f.chainCalls++
	key := expiration.Format("2006-01-02")
	if err := f.chainErr[key]; err != nil {
		return nil, err
	}
	return f.chains[key], nil
}

// --- helpers ---

var (
	exp1 = time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
	exp2 = time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)
	exp3 = time.Date(2026, 9, 18, 0, 0, 0, 0, time.UTC)
)

func putAt(expiration time.Time, strike, bid float64) domain.OptionContract {
	return domain.OptionContract{
		Strike:     strike,
		Bid:        bid,
		Ask:        bid + 0.10,
		LastPrice:  bid + 0.05,
		Expiration: expiration,
		DTE:        domain.DaysToExpiration(expiration, time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)),
	}
}

func healthyFeed() *fakeFeed {
	return &fakeFeed{
		price:       150.00,
		expirations: []time.Time{exp1, exp2, exp3},
		chains: map[string][]domain.OptionContract{
			exp1.Format("2006-01-02"): {putAt(exp1, 145, 1.20), putAt(exp1, 140, 0.80)},
			exp2.Format("2006-01-02"): {putAt(exp2, 145, 1.90)},
			exp3.Format("2006-01-02"): {putAt(exp3, 140, 1.60)},
		},
		chainErr: map[string]error{},
	}
}

// --- tests ---

func TestSnapshotFetcher_Success(t *testing.T) {
	feed := healthyFeed()
	fetcher := screener.NewSnapshotFetcher(feed, 3)

	snap, err := fetcher.Fetch(context.Background(), "NVDA")

	require.NoError(t, err)
	assert.Equal(t, "NVDA", snap.Quote.Ticker)
	assert.Len(t, snap.Contracts, 4)
	assert.Empty(t, snap.Skipped)
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestSnapshotFetcher_PartialFailureIsNotFatal(t *testing.T) {
	// 1 de 3 expiraciones falla → resultados de las otras 2, sin error.
	feed := healthyFeed()
	feed.chainErr[exp2.Format("2006-01-02")] = &domain.FeedError{
		Kind: domain.KindUpstream, Ticker: "NVDA", Detail: "HTTP 502",
	}
	fetcher := screener.NewSnapshotFetcher(feed, 3)

	snap, err := fetcher.Fetch(context.Background(), "NVDA")

	require.NoError(t, err)
	assert.Len(t, snap.Contracts, 3)
	require.Len(t, snap.Skipped, 1)
	assert.Equal(t, exp2, snap.Skipped[0].Expiration)
}

func TestSnapshotFetcher_AllExpirationsFailed(t *testing.T) {
	feed := healthyFeed()
	for _, e := range []time.Time{exp1, exp2, exp3} {
		feed.chainErr[e.Format("2006-01-02")] = &domain.FeedError{
			Kind: domain.KindUpstream, Ticker: "NVDA", Detail: "HTTP 502",
		}
	}
	fetcher := screener.NewSnapshotFetcher(feed, 3)

	_, err := fetcher.Fetch(context.Background(), "NVDA")

	require.Error(t, err)
	kind, ok := domain.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindNoOptionData, kind)
}

func TestSnapshotFetcher_AllThrottledSurfacesRateLimit(t *testing.T) {
	// Si todo falló por throttling, la guía correcta es la de rate limit,
	// no NoOptionData.
	feed := healthyFeed()
	for _, e := range []time.Time{exp1, exp2, exp3} {
		feed.chainErr[e.Format("2006-01-02")] = &domain.FeedError{
			Kind: domain.KindRateLimited, Ticker: "NVDA", Detail: "HTTP 429",
		}
	}
	fetcher := screener.NewSnapshotFetcher(feed, 3)

	_, err := fetcher.Fetch(context.Background(), "NVDA")

	require.Error(t, err)
	assert.True(t, domain.IsRateLimited(err))
}

func TestSnapshotFetcher_BoundsExpirations(t *testing.T) {
	feed := healthyFeed()
	fetcher := screener.NewSnapshotFetcher(feed, 2)

	snap, err := fetcher.Fetch(context.Background(), "NVDA")

	require.NoError(t, err)
	assert.Equal(t, 2, feed.chainCalls)
	assert.Len(t, snap.Contracts, 3) // exp1 (2 puts) + exp2 (1 put)
}

func TestSnapshotFetcher_QuoteErrorPropagates(t *testing.T) {
	feed := healthyFeed()
	feed.priceErr = &domain.FeedError{Kind: domain.KindPriceUnavailable, Ticker: "NVDA"}
	fetcher := screener.NewSnapshotFetcher(feed, 3)

	_, err := fetcher.Fetch(context.Background(), "NVDA")

	require.Error(t, err)
	kind, ok := domain.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindPriceUnavailable, kind)
	assert.Zero(t, feed.chainCalls)
}

func TestSnapshotFetcher_ExpirationsErrorPropagates(t *testing.T) {
	feed := healthyFeed()
	feed.expErr = &domain.FeedError{Kind: domain.KindNoExpirations, Ticker: "NVDA"}
	fetcher := screener.NewSnapshotFetcher(feed, 3)

	_, err := fetcher.Fetch(context.Background(), "NVDA")

	require.Error(t, err)
	kind, ok := domain.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindNoExpirations, kind)
}
