package ports

import (
	"context"

	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
)

// RunStorage persiste los resultados de cada run de descubrimiento.
type RunStorage interface {
	// SaveRun persiste el resumen del run y hace upsert de su shortlist.
	SaveRun(ctx context.Context, result domain.DiscoveryResult) error

	// TopStrategies devuelve las mejores estrategias históricas por peak score.
	TopStrategies(ctx context.Context, limit int) ([]domain.Strategy, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
