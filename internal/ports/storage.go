package ports

import (
	"context"
	"time"

	"github.com/synqra/aurafx/internal/domain"
)

// Storage persiste los resultados de cada ciclo de evaluación.
type Storage interface {
	// SaveScan persiste los snapshots producidos en un ciclo.
	SaveScan(ctx context.Context, snapshots []domain.Snapshot) error

	// GetHistory devuelve los snapshots registrados en el rango de tiempo dado.
	GetHistory(ctx context.Context, from, to time.Time) ([]domain.Snapshot, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
