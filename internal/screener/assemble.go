package screener

import "github.com/alejandrodnm/putscan/internal/domain"

// AssembleRows proyecta los candidatos supervivientes al schema externo de
// filas. Sin lógica de negocio: selección y renombrado de campos; la capa
// de presentación depende de esta forma exacta.
func AssembleRows(candidates []domain.Candidate) []domain.Row {
	rows := make([]domain.Row, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, domain.Row{
			Expiration:          c.Contract.Expiration.Format("2006-01-02"),
			DTE:                 c.Contract.DTE,
			Strike:              c.Contract.Strike,
			Premium:             c.Premium,
			AnnualizedReturnPct: c.Metrics.AnnualizedReturnPct,
			SafetyMarginPct:     c.Metrics.SafetyMarginPct,
			BreakEven:           c.Metrics.BreakEven,
			Volume:              c.Contract.Volume,
			OpenInterest:        c.Contract.OpenInterest,
		})
	}
	return rows
}
