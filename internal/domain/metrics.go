package domain

import "time"

// DerivedMetrics son las métricas calculadas por contrato. Nunca se cachean:
// son función pura de (Quote × OptionContract × PriceBasis).
type DerivedMetrics struct {
	// AnnualizedReturnPct es el rendimiento de la prima sobre el strike,
	// extrapolado a base 365 días según el DTE del contrato.
	AnnualizedReturnPct float64
	// SafetyMarginPct es el porcentaje que puede caer el subyacente antes
	// de tocar el strike.
	SafetyMarginPct float64
	// BreakEven es strike − prima: el coste efectivo si hay asignación.
	BreakEven float64
}

// Compute calcula las métricas de un contrato. Función pura: mismas
// entradas producen siempre el mismo resultado. Sin redondeo — el redondeo
// es asunto de presentación.
func Compute(quote Quote, contract OptionContract, basis PriceBasis) DerivedMetrics {
	premium := basis.Premium(contract)
	if premium < 0 {
		premium = 0
	}

	dte := contract.DTE
	if dte < 1 {
		dte = 1
	}

	m := DerivedMetrics{BreakEven: contract.Strike - premium}
	if contract.Strike > 0 {
		m.AnnualizedReturnPct = premium / contract.Strike * 365 / float64(dte) * 100
	}
	if quote.CurrentPrice > 0 {
		m.SafetyMarginPct = (quote.CurrentPrice - contract.Strike) / quote.CurrentPrice * 100
	}
	return m
}

// DaysToExpiration devuelve los días entre now y la expiración.
// Valores <= 0 se clampan a 1 para que la anualización quede bien definida
// incluso en contratos que expiran hoy.
func DaysToExpiration(expiration, now time.Time) int {
	days := int(expiration.Sub(now).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// Candidate empareja un contrato raw con su prima y métricas derivadas
// bajo la CriteriaSelection vigente.
type Candidate struct {
	Contract OptionContract
	Premium  float64
	Metrics  DerivedMetrics
}
