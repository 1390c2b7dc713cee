package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/putscan/internal/domain"
)

// MarketFeed obtiene precio y cadenas de puts del feed upstream.
// El protocolo del feed es un servicio externo opaco: los adapters devuelven
// entidades de dominio y errores con kind explícito (domain.FeedError).
type MarketFeed interface {
	// FetchQuote resuelve el precio actual probando una lista ordenada de
	// campos del feed. Falla con KindPriceUnavailable si ninguno resuelve.
	FetchQuote(ctx context.Context, ticker string) (domain.Quote, error)

	// FetchExpirations devuelve las expiraciones disponibles en el orden
	// del feed. Falla con KindNoExpirations si no hay ninguna.
	FetchExpirations(ctx context.Context, ticker string) ([]time.Time, error)

	// FetchPutChain devuelve los puts de una expiración concreta. Un fallo
	// aquí es recuperable: el caller puede saltar la expiración y seguir
	// con el resto del batch.
	FetchPutChain(ctx context.Context, ticker string, expiration time.Time) ([]domain.OptionContract, error)
}
