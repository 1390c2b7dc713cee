package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/putscan/internal/domain"
)

const (
	defaultBaseURL = "https://query2.finance.yahoo.com"
	optionsPath    = "/v7/finance/options/"

	// Espaciado mínimo entre requests sucesivos al feed para reducir
	// rechazos por rate limit. Bloquea solo el camino de fetch.
	defaultSpacing = 100 * time.Millisecond

	// El feed rechaza requests sin un User-Agent de navegador.
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) putscan/1.0"
)

// Client es el HTTP client del feed de opciones, con espaciado mínimo
// entre requests. Sin retries: el único mecanismo de reintento del sistema
// es un clear explícito de la cache por parte del caller.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
}

// NewClient crea un Client. baseURL vacío usa el feed de producción;
// spacing <= 0 usa el espaciado por defecto (~100ms).
func NewClient(baseURL string, spacing time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if spacing <= 0 {
		spacing = defaultSpacing
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Every(spacing), 1),
	}
}

// get hace un GET respetando el espaciado y clasifica la respuesta:
// 429 → KindRateLimited, resto de fallos → KindUpstream.
func (c *Client) get(ctx context.Context, ticker, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &domain.FeedError{Kind: domain.KindUpstream, Ticker: ticker, Detail: "rate limiter wait", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &domain.FeedError{Kind: domain.KindUpstream, Ticker: ticker, Detail: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.FeedError{Kind: domain.KindUpstream, Ticker: ticker, Detail: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &domain.FeedError{Kind: domain.KindRateLimited, Ticker: ticker, Detail: "HTTP 429"}
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &domain.FeedError{
			Kind:   domain.KindUpstream,
			Ticker: ticker,
			Detail: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.FeedError{Kind: domain.KindUpstream, Ticker: ticker, Detail: "decode response", Err: err}
	}
	return nil
}
