package aura

import (
	"fmt"

	"github.com/synqra/aurafx/internal/domain"
)

const (
	defaultTrendLookback   = 50
	defaultSwingWindow     = 2
	defaultMinSwingSizePct = 0.05

	// Umbrales de tendencia fijos: ±1.5% de cambio sobre el lookback.
	// Decisión deliberada de simplicidad — no son configurables.
	trendBullishPct = 1.5
	trendBearishPct = -1.5
)

// TrendOptions controla la ventana de la clasificación de tendencia.
type TrendOptions struct {
	// Lookback es el número de velas finales consideradas. Default 50.
	Lookback int
	// MinSwingSizePct está reservado para filtrado de swings menores.
	// Hoy no participa en la comparación.
	MinSwingSizePct float64
}

// DetectTrend clasifica la dirección de tendencia de una ventana de velas
// por cambio porcentual close-a-close sobre el lookback.
//
// Menos de 3 velas NO es un error: devuelve RANGE con reason explicativo,
// un resultado degradado pero válido.
func DetectTrend(candles []domain.Candle, opts TrendOptions) domain.TrendResult {
	if opts.Lookback <= 0 {
		opts.Lookback = defaultTrendLookback
	}

	if len(candles) < 3 {
		return domain.TrendResult{
			Direction: domain.DirectionRange,
			Reason:    "Insufficient candles",
		}
	}

	window := candles
	if len(window) > opts.Lookback {
		window = window[len(window)-opts.Lookback:]
	}

	first := window[0].Close
	last := window[len(window)-1].Close
	if first == 0 {
		return domain.TrendResult{
			Direction: domain.DirectionRange,
			Reason:    "Zero reference close",
		}
	}

	changePct := (last - first) / first * 100

	direction := domain.DirectionRange
	switch {
	case changePct > trendBullishPct:
		direction = domain.DirectionBullish
	case changePct < trendBearishPct:
		direction = domain.DirectionBearish
	}

	return domain.TrendResult{
		Direction: direction,
		ChangePct: changePct,
		Reason:    fmt.Sprintf("Price change %.2f%% over %d candles", changePct, len(window)),
	}
}
