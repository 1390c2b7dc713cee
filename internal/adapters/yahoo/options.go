package yahoo

// options.go — implementación de ports.MarketFeed sobre el endpoint
// /v7/finance/options del feed.
//
// El mismo envelope sirve para las tres operaciones: sin parámetro date trae
// quote + lista de expiraciones; con date trae la cadena de esa expiración.

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/alejandrodnm/putscan/internal/domain"
)

// FetchQuote resuelve el precio actual probando los campos en orden:
// currentPrice → regularMarketPrice → previousClose.
func (c *Client) FetchQuote(ctx context.Context, ticker string) (domain.Quote, error) {
	key := domain.NormalizeTicker(ticker)

	res, err := c.fetchEnvelope(ctx, key, 0)
	if err != nil {
		return domain.Quote{}, err
	}

	price, ok := firstPrice(res.Quote)
	if !ok {
		return domain.Quote{}, &domain.FeedError{
			Kind:   domain.KindPriceUnavailable,
			Ticker: key,
			Detail: "no price field resolved",
		}
	}

	return domain.Quote{
		Ticker:       key,
		CurrentPrice: price,
		FetchedAt:    time.Now().UTC(),
	}, nil
}

// FetchExpirations devuelve las expiraciones disponibles en el orden del feed.
func (c *Client) FetchExpirations(ctx context.Context, ticker string) ([]time.Time, error) {
	key := domain.NormalizeTicker(ticker)

	res, err := c.fetchEnvelope(ctx, key, 0)
	if err != nil {
		return nil, err
	}

	if len(res.ExpirationDates) == 0 {
		return nil, &domain.FeedError{
			Kind:   domain.KindNoExpirations,
			Ticker: key,
			Detail: "feed returned no expiration dates",
		}
	}

	expirations := make([]time.Time, 0, len(res.ExpirationDates))
	for _, epoch := range res.ExpirationDates {
		expirations = append(expirations, time.Unix(epoch, 0).UTC())
	}

	slog.Debug("expirations fetched", "ticker", key, "count", len(expirations))
	return expirations, nil
}

// FetchPutChain devuelve los puts de una expiración. Strikes sin precio
// alguno se mapean con prima 0; strikes inválidos se descartan.
func (c *Client) FetchPutChain(ctx context.Context, ticker string, expiration time.Time) ([]domain.OptionContract, error) {
	key := domain.NormalizeTicker(ticker)

	res, err := c.fetchEnvelope(ctx, key, expiration.Unix())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var puts []domain.OptionContract
	for _, set := range res.Options {
		puts = append(puts, mapPuts(set.Puts, now)...)
	}

	slog.Debug("put chain fetched",
		"ticker", key,
		"expiration", expiration.Format("2006-01-02"),
		"puts", len(puts),
	)
	return puts, nil
}

// fetchEnvelope hace el GET y desempaqueta el envelope, clasificando el
// error estructurado que el feed puede devolver con HTTP 200.
func (c *Client) fetchEnvelope(ctx context.Context, ticker string, date int64) (optionsResult, error) {
	u := c.baseURL + optionsPath + url.PathEscape(ticker)
	if date > 0 {
		u += fmt.Sprintf("?date=%d", date)
	}

	var env optionsEnvelope
	if err := c.get(ctx, ticker, u, &env); err != nil {
		return optionsResult{}, err
	}

	if fe := env.OptionChain.Error; fe != nil {
		kind := domain.KindUpstream
		// Señal estructurada de throttling dentro del envelope.
		if strings.EqualFold(fe.Code, "too many requests") {
			kind = domain.KindRateLimited
		}
		return optionsResult{}, &domain.FeedError{
			Kind:   kind,
			Ticker: ticker,
			Detail: fmt.Sprintf("%s: %s", fe.Code, fe.Description),
		}
	}

	if len(env.OptionChain.Result) == 0 {
		return optionsResult{}, &domain.FeedError{
			Kind:   domain.KindUpstream,
			Ticker: ticker,
			Detail: "empty result set",
		}
	}

	return env.OptionChain.Result[0], nil
}
