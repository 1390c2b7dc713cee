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

// --- mocks ---

type mockNotifier struct {
	rows []domain.Row
	err  error
}

func (m *mockNotifier) Notify(_ context.Context, _ domain.ChainSnapshot, _ domain.CriteriaSelection, rows []domain.Row) error {
	m.rows = rows
	return m.err
}

type mockStorage struct {
	saved []domain.Row
	err   error
}

func (m *mockStorage) SaveScan(_ context.Context, _ domain.ChainSnapshot, _ domain.CriteriaSelection, rows []domain.Row) error {
	m.saved = rows
	return m.err
}

func (m *mockStorage) History(_ context.Context, _ string, _ int) ([]domain.ScanSummary, error) {
	return nil, nil
}

func (m *mockStorage) Close() error { return nil }

// --- helpers ---

func referenceFeed() *fakeFeed {
	// Escenario de referencia: precio 150, strike 140 con bid 2.00 y 30 DTE.
	exp := time.Date(2026, 9, 22, 0, 0, 0, 0, time.UTC)
	contract := domain.OptionContract{
		ContractSymbol: "NVDA260922P00140000",
		Strike:         140,
		Bid:            2.00,
		Ask:            2.60,
		LastPrice:      2.30,
		Volume:         812,
		OpenInterest:   4521,
		Expiration:     exp,
		DTE:            30,
	}
	return &fakeFeed{
		price:       150.00,
		expirations: []time.Time{exp},
		chains: map[string][]domain.OptionContract{
			exp.Format("2006-01-02"): {contract},
		},
		chainErr: map[string]error{},
	}
}

func defaultCriteria() domain.CriteriaSelection {
	return domain.CriteriaSelection{
		PriceBasis:             domain.BasisBid,
		MinAnnualizedReturnPct: 15,
		MinSafetyMarginPct:     5,
		OTMOnly:                true,
	}
}

func newTestScreener(feed *fakeFeed) *screener.Screener {
	cfg := screener.DefaultConfig()
	return screener.New(cfg, feed, nil, nil)
}

// --- tests ---

func TestScreener_Screen_ReferenceScenario(t *testing.T) {
	s := newTestScreener(referenceFeed())

	rows, err := s.Screen(context.Background(), "nvda", defaultCriteria())

	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "2026-09-22", row.Expiration)
	assert.Equal(t, 30, row.DTE)
	assert.InDelta(t, 140.00, row.Strike, 0.001)
	assert.InDelta(t, 2.00, row.Premium, 0.001)
	assert.InDelta(t, 17.38, row.AnnualizedReturnPct, 0.01)
	assert.InDelta(t, 6.67, row.SafetyMarginPct, 0.01)
	assert.InDelta(t, 138.00, row.BreakEven, 0.001)
	assert.Equal(t, 812, row.Volume)
	assert.Equal(t, 4521, row.OpenInterest)
}

func TestScreener_Screen_EmptyTickerDisablesPipeline(t *testing.T) {
	feed := referenceFeed()
	s := newTestScreener(feed)

	rows, err := s.Screen(context.Background(), "   ", defaultCriteria())

	require.NoError(t, err)
	assert.Nil(t, rows)
	assert.Zero(t, feed.quoteCalls)
}

func TestScreener_SwitchingBasisNeverRefetches(t *testing.T) {
	feed := referenceFeed()
	s := newTestScreener(feed)

	criteria := defaultCriteria()
	bidRows, err := s.Screen(context.Background(), "NVDA", criteria)
	require.NoError(t, err)
	require.Len(t, bidRows, 1)

	// Cambiar la base de precio recalcula sobre el snapshot cacheado.
	criteria.PriceBasis = domain.BasisAsk
	askRows, err := s.Screen(context.Background(), "NVDA", criteria)
	require.NoError(t, err)
	require.Len(t, askRows, 1)

	assert.InDelta(t, 2.60, askRows[0].Premium, 0.001)
	assert.Greater(t, askRows[0].AnnualizedReturnPct, bidRows[0].AnnualizedReturnPct)
	assert.Equal(t, 1, feed.quoteCalls, "el cambio de basis no debe tocar el feed")
}

func TestScreener_RaisingThresholdShrinksRowsWithoutRefetch(t *testing.T) {
	feed := referenceFeed()
	s := newTestScreener(feed)

	criteria := defaultCriteria()
	criteria.MinAnnualizedReturnPct = 15
	before, err := s.Screen(context.Background(), "NVDA", criteria)
	require.NoError(t, err)

	criteria.MinAnnualizedReturnPct = 30
	after, err := s.Screen(context.Background(), "NVDA", criteria)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(after), len(before))
	assert.Empty(t, after) // 17.38 < 30
	assert.Equal(t, 1, feed.quoteCalls)
}

func TestScreener_RefreshForcesFreshFetch(t *testing.T) {
	feed := referenceFeed()
	s := newTestScreener(feed)

	_, err := s.Screen(context.Background(), "NVDA", defaultCriteria())
	require.NoError(t, err)

	s.Refresh("NVDA")

	_, err = s.Screen(context.Background(), "NVDA", defaultCriteria())
	require.NoError(t, err)

	assert.Equal(t, 2, feed.quoteCalls)
}

func TestScreener_Run_NotifiesAndPersists(t *testing.T) {
	feed := referenceFeed()
	notifier := &mockNotifier{}
	store := &mockStorage{}
	s := screener.New(screener.DefaultConfig(), feed, notifier, store)

	err := s.Run(context.Background(), "NVDA", defaultCriteria())

	require.NoError(t, err)
	require.Len(t, notifier.rows, 1)
	require.Len(t, store.saved, 1)
	assert.Equal(t, notifier.rows[0], store.saved[0])
}

func TestScreener_Run_FeedErrorSurfacesKind(t *testing.T) {
	feed := referenceFeed()
	feed.priceErr = &domain.FeedError{Kind: domain.KindRateLimited, Ticker: "NVDA", Detail: "HTTP 429"}
	s := screener.New(screener.DefaultConfig(), feed, &mockNotifier{}, nil)

	err := s.Run(context.Background(), "NVDA", defaultCriteria())

	require.Error(t, err)
	assert.True(t, domain.IsRateLimited(err))
}

func TestScreener_Screen_PartialFailureStillReturnsRows(t *testing.T) {
	feed := healthyFeed()
	feed.chainErr[exp3.Format("2006-01-02")] = &domain.FeedError{
		Kind: domain.KindUpstream, Ticker: "NVDA", Detail: "HTTP 500",
	}
	s := newTestScreener(feed)

	criteria := domain.CriteriaSelection{PriceBasis: domain.BasisBid, OTMOnly: true}
	rows, err := s.Screen(context.Background(), "NVDA", criteria)

	require.NoError(t, err)
	// exp1 aporta 2 puts y exp2 uno; exp3 quedó fuera.
	assert.Len(t, rows, 3)
}
