package ports

import (
	"context"

	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
)

// Notifier presenta el resultado de un run al usuario.
type Notifier interface {
	// Notify muestra el shortlist del run. En la implementación de consola,
	// imprime una línea compacta o una tabla formateada.
	Notify(ctx context.Context, result domain.DiscoveryResult) error
}
