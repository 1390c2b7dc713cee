package domain

import (
	"fmt"
	"strings"
	"time"
)

// Quote es el precio actual del subyacente en el momento del fetch.
type Quote struct {
	Ticker       string
	CurrentPrice float64
	FetchedAt    time.Time
}

// OptionContract es un put tal como lo entrega el feed.
// Inmutable una vez fetcheado: un fetch nuevo reemplaza, nunca muta.
type OptionContract struct {
	ContractSymbol string
	Strike         float64
	Bid            float64 // 0 si el feed no lo trae
	Ask            float64
	LastPrice      float64
	Volume         int
	OpenInterest   int
	Expiration     time.Time
	DTE            int // días a expiración, clampado a >= 1
}

// PriceBasis selecciona qué precio del contrato alimenta la prima.
type PriceBasis int

const (
	// BasisBid es el precio al que un vendedor puede ejecutar ya — conservador.
	BasisBid PriceBasis = iota
	// BasisLast es el precio de la última transacción.
	BasisLast
	// BasisAsk es el precio pedido por los compradores — optimista.
	BasisAsk
)

// premiumAccessors es la tabla cerrada basis → accessor.
// Enumeración explícita: nada de matching por substrings de labels de UI.
var premiumAccessors = map[PriceBasis]func(OptionContract) float64{
	BasisBid:  func(c OptionContract) float64 { return c.Bid },
	BasisLast: func(c OptionContract) float64 { return c.LastPrice },
	BasisAsk:  func(c OptionContract) float64 { return c.Ask },
}

// Premium devuelve la prima del contrato bajo esta base de precio.
// Un campo ausente ya viene mapeado como 0: rinde 0% y se filtra, no es error.
func (b PriceBasis) Premium(c OptionContract) float64 {
	if accessor, ok := premiumAccessors[b]; ok {
		return accessor(c)
	}
	return c.Bid
}

// String devuelve el nombre de la base en minúsculas.
func (b PriceBasis) String() string {
	switch b {
	case BasisLast:
		return "last"
	case BasisAsk:
		return "ask"
	default:
		return "bid"
	}
}

// ParsePriceBasis convierte "bid" | "last" | "ask" en un PriceBasis.
func ParsePriceBasis(s string) (PriceBasis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bid":
		return BasisBid, nil
	case "last":
		return BasisLast, nil
	case "ask":
		return BasisAsk, nil
	default:
		return BasisBid, fmt.Errorf("invalid price basis %q (want bid|last|ask)", s)
	}
}

// CriteriaSelection son los umbrales del usuario. Se aplican sobre datos ya
// cacheados: cambiar criterios nunca dispara un re-fetch.
type CriteriaSelection struct {
	PriceBasis             PriceBasis
	MinAnnualizedReturnPct float64
	MinSafetyMarginPct     float64
	OTMOnly                bool
}

// NormalizeTicker normaliza un ticker: mayúsculas y sin espacios.
// Un resultado vacío desactiva el pipeline.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
