package domain

import "time"

// ChainSnapshot es el payload cacheado por ticker: quote + contratos raw
// en orden de fetch. Las métricas derivadas NO viven aquí — se recalculan
// con cada CriteriaSelection sobre el mismo snapshot.
type ChainSnapshot struct {
	Quote     Quote
	Contracts []OptionContract
	FetchedAt time.Time
	// Skipped registra las expiraciones que fallaron durante el batch.
	// Decisión auditable, no un swallow silencioso de excepciones.
	Skipped []ExpirationFailure
}

// ExpirationFailure es el fallo de una expiración concreta dentro de un
// batch best-effort.
type ExpirationFailure struct {
	Expiration time.Time
	Err        error
}

// Row es una fila del schema externo que consume la capa de presentación.
// Proyección pura de un candidato superviviente.
type Row struct {
	Expiration          string // ISO 8601 (YYYY-MM-DD)
	DTE                 int
	Strike              float64
	Premium             float64 // bajo el PriceBasis seleccionado
	AnnualizedReturnPct float64
	SafetyMarginPct     float64
	BreakEven           float64
	Volume              int
	OpenInterest        int
}

// ScanSummary resume un screening persistido, para la vista de histórico.
type ScanSummary struct {
	ID                string
	Ticker            string
	ScannedAt         time.Time
	PriceBasis        string
	CurrentPrice      float64
	Contracts         int
	Candidates        int
	BestAnnualizedPct float64
}
