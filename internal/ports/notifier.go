package ports

import (
	"context"

	"github.com/alejandrodnm/putscan/internal/domain"
)

// Notifier presenta las filas resultantes al usuario.
type Notifier interface {
	// Notify muestra las filas ya filtradas y ordenadas.
	// En la implementación de consola, imprime una tabla formateada.
	Notify(ctx context.Context, snap domain.ChainSnapshot, criteria domain.CriteriaSelection, rows []domain.Row) error
}
