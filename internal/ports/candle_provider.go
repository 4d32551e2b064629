package ports

import (
	"context"

	"github.com/synqra/aurafx/internal/domain"
)

// CandleProvider obtiene ventanas de velas OHLCV de un proveedor externo.
type CandleProvider interface {
	// FetchCandles devuelve las últimas `limit` velas del símbolo en el
	// intervalo dado (p.ej. "15m", "1h"), en orden cronológico.
	FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error)
}
