package ports

import (
	"context"

	"github.com/alejandrodnm/putscan/internal/domain"
)

// Storage persiste los resultados de cada screening.
type Storage interface {
	// SaveScan persiste el resumen del screening y sus filas supervivientes.
	SaveScan(ctx context.Context, snap domain.ChainSnapshot, criteria domain.CriteriaSelection, rows []domain.Row) error

	// History devuelve los screenings registrados para un ticker,
	// del más reciente al más antiguo. Ticker vacío devuelve todos.
	History(ctx context.Context, ticker string, limit int) ([]domain.ScanSummary, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
