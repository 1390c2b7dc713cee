package yahoo

import (
	"time"

	"github.com/alejandrodnm/putscan/internal/domain"
)

// mapPuts convierte contratos raw a domain.OptionContract preservando el
// orden del feed. Contratos sin strike válido se descartan.
func mapPuts(raw []rawContract, now time.Time) []domain.OptionContract {
	contracts := make([]domain.OptionContract, 0, len(raw))
	for _, r := range raw {
		if c, ok := mapContract(r, now); ok {
			contracts = append(contracts, c)
		}
	}
	return contracts
}

// mapContract convierte un contrato raw. Precios ausentes → 0 (un put con
// prima 0 rinde 0% y se filtra solo); DTE clampado a >= 1.
func mapContract(r rawContract, now time.Time) (domain.OptionContract, bool) {
	strike := derefPrice(r.Strike)
	if strike <= 0 {
		return domain.OptionContract{}, false
	}

	expiration := time.Unix(r.Expiration, 0).UTC()

	return domain.OptionContract{
		ContractSymbol: r.ContractSymbol,
		Strike:         strike,
		Bid:            derefPrice(r.Bid),
		Ask:            derefPrice(r.Ask),
		LastPrice:      derefPrice(r.LastPrice),
		Volume:         derefCount(r.Volume),
		OpenInterest:   derefCount(r.OpenInterest),
		Expiration:     expiration,
		DTE:            domain.DaysToExpiration(expiration, now),
	}, true
}

// firstPrice recorre los campos de precio en orden y devuelve el primero
// con valor positivo.
func firstPrice(q rawQuote) (float64, bool) {
	for _, field := range []*float64{q.CurrentPrice, q.RegularMarketPrice, q.PreviousClose} {
		if field != nil && *field > 0 {
			return *field, true
		}
	}
	return 0, false
}

func derefPrice(p *float64) float64 {
	if p == nil || *p < 0 {
		return 0
	}
	return *p
}

func derefCount(p *int) int {
	if p == nil || *p < 0 {
		return 0
	}
	return *p
}
