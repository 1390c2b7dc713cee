package yahoo

// DTOs raw del feed de opciones. Solo se usan dentro de este paquete.
// La conversión a entidades de dominio vive en mapping.go.

// optionsEnvelope es la respuesta de GET /v7/finance/options/{ticker}.
type optionsEnvelope struct {
	OptionChain struct {
		Result []optionsResult `json:"result"`
		Error  *envelopeError  `json:"error"`
	} `json:"optionChain"`
}

// envelopeError es el error estructurado dentro del envelope. El feed puede
// devolver HTTP 200 con un error aquí, incluido el de throttling.
type envelopeError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// optionsResult es el resultado para un underlying.
type optionsResult struct {
	UnderlyingSymbol string        `json:"underlyingSymbol"`
	ExpirationDates  []int64       `json:"expirationDates"` // epoch seconds, orden del feed
	Quote            rawQuote      `json:"quote"`
	Options          []rawChainSet `json:"options"`
}

// rawQuote trae el precio del subyacente. El feed renombra u omite campos
// según el estado del mercado, por eso todo es puntero.
type rawQuote struct {
	CurrentPrice       *float64 `json:"currentPrice"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	PreviousClose      *float64 `json:"previousClose"`
}

// rawChainSet es la cadena de una expiración concreta.
type rawChainSet struct {
	ExpirationDate int64         `json:"expirationDate"`
	Puts           []rawContract `json:"puts"`
	Calls          []rawContract `json:"calls"`
}

// rawContract es un contrato tal como llega del feed. bid/ask/lastPrice y
// volume/openInterest faltan con frecuencia en strikes ilíquidos.
type rawContract struct {
	ContractSymbol string   `json:"contractSymbol"`
	Strike         *float64 `json:"strike"`
	Bid            *float64 `json:"bid"`
	Ask            *float64 `json:"ask"`
	LastPrice      *float64 `json:"lastPrice"`
	Volume         *int     `json:"volume"`
	OpenInterest   *int     `json:"openInterest"`
	Expiration     int64    `json:"expiration"`
}
