package ports

import (
	"context"

	"github.com/synqra/aurafx/internal/domain"
)

// Notifier presenta los snapshots evaluados al usuario.
type Notifier interface {
	// Notify muestra los snapshots ordenados por score.
	// En la implementación de consola, imprime una tabla formateada.
	Notify(ctx context.Context, snapshots []domain.Snapshot) error
}
