package domain

import (
	"errors"
	"fmt"
)

// FeedErrorKind clasifica los fallos del feed upstream. Taxonomía cerrada:
// la capa de presentación decide qué mostrar según el kind, nunca
// inspeccionando el texto del error.
type FeedErrorKind int

const (
	// KindUpstream es el catch-all para fallos inesperados del feed.
	KindUpstream FeedErrorKind = iota
	// KindPriceUnavailable: ningún campo de precio resolvió.
	KindPriceUnavailable
	// KindNoExpirations: el feed no lista expiraciones para el ticker.
	KindNoExpirations
	// KindNoOptionData: todas las expiraciones pedidas fallaron.
	KindNoOptionData
	// KindRateLimited: el feed está throttleando. Se distingue de
	// KindUpstream porque cambia la guía mostrada al usuario.
	KindRateLimited
)

// String devuelve el nombre del kind.
func (k FeedErrorKind) String() string {
	switch k {
	case KindPriceUnavailable:
		return "PriceUnavailable"
	case KindNoExpirations:
		return "NoExpirations"
	case KindNoOptionData:
		return "NoOptionData"
	case KindRateLimited:
		return "RateLimited"
	default:
		return "UpstreamError"
	}
}

// Guidance devuelve la orientación al usuario para este kind de fallo.
func (k FeedErrorKind) Guidance() string {
	switch k {
	case KindPriceUnavailable:
		return "no price field resolved — check the ticker symbol"
	case KindNoExpirations:
		return "the feed lists no option expirations for this ticker"
	case KindNoOptionData:
		return "every requested expiration failed — retry later or force a refresh"
	case KindRateLimited:
		return "the upstream feed is throttling: wait, reduce scan frequency, or try another ticker"
	default:
		return "unexpected feed failure — retry, or force a refresh"
	}
}

// FeedError es un fallo del feed con kind explícito.
type FeedError struct {
	Kind   FeedErrorKind
	Ticker string
	Detail string
	Err    error
}

// Error implementa error.
func (e *FeedError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Ticker)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap expone la causa para errors.Is/As.
func (e *FeedError) Unwrap() error {
	return e.Err
}

// KindOf extrae el FeedErrorKind de un error, atravesando wrapping.
func KindOf(err error) (FeedErrorKind, bool) {
	var fe *FeedError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return KindUpstream, false
}

// IsRateLimited devuelve true si el error (o su causa) es throttling del feed.
func IsRateLimited(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindRateLimited
}
