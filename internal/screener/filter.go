package screener

import (
	"sort"

	"github.com/alejandrodnm/putscan/internal/domain"
)

// FilterConfig contiene los parámetros configurables del filtrado.
type FilterConfig struct {
	// BandLow y BandHigh delimitan la banda de strikes alrededor del precio
	// actual cuando OTMOnly está desactivado:
	// strike ∈ (BandLow×precio, BandHigh×precio). Tunables, no contrato.
	BandLow  float64
	BandHigh float64
}

// DefaultFilterConfig devuelve la banda por defecto.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{BandLow: 0.7, BandHigh: 1.1}
}

// Filter aplica las etapas del pipeline en orden: banda de strikes →
// umbrales → sort estable. Subir cualquier umbral solo puede encoger el
// resultado, nunca crecerlo.
type Filter struct {
	cfg FilterConfig
}

// NewFilter crea un Filter con la configuración dada.
func NewFilter(cfg FilterConfig) *Filter {
	if cfg.BandLow <= 0 || cfg.BandHigh <= 0 || cfg.BandLow >= cfg.BandHigh {
		cfg = DefaultFilterConfig()
	}
	return &Filter{cfg: cfg}
}

// Apply devuelve los candidatos que pasan todas las etapas, ordenados por
// (expiración asc, strike desc).
func (f *Filter) Apply(currentPrice float64, candidates []domain.Candidate, criteria domain.CriteriaSelection) []domain.Candidate {
	result := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !f.inStrikeBand(currentPrice, c.Contract.Strike, criteria.OTMOnly) {
			continue
		}
		if !passesThresholds(c.Metrics, criteria) {
			continue
		}
		result = append(result, c)
	}
	sortCandidates(result)
	return result
}

// inStrikeBand es la etapa 1: OTM puro (strike < precio) o banda configurable.
func (f *Filter) inStrikeBand(price, strike float64, otmOnly bool) bool {
	if otmOnly {
		return strike < price
	}
	return strike > price*f.cfg.BandLow && strike < price*f.cfg.BandHigh
}

// passesThresholds es la etapa 2: ambos umbrales deben cumplirse.
func passesThresholds(m domain.DerivedMetrics, criteria domain.CriteriaSelection) bool {
	if m.AnnualizedReturnPct < criteria.MinAnnualizedReturnPct {
		return false
	}
	if m.SafetyMarginPct < criteria.MinSafetyMarginPct {
		return false
	}
	return true
}

// sortCandidates es la etapa 3: (expiración asc, strike desc), estable —
// en empates se preserva el orden de fetch.
func sortCandidates(candidates []domain.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		ei, ej := candidates[i].Contract.Expiration, candidates[j].Contract.Expiration
		if !ei.Equal(ej) {
			return ei.Before(ej)
		}
		return candidates[i].Contract.Strike > candidates[j].Contract.Strike
	})
}
