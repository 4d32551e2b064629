package aura

import (
	"fmt"
	"math"

	"github.com/synqra/aurafx/internal/domain"
)

const (
	// regimeBaseline es cuántas velas recientes se comparan contra las
	// anteriores para medir expansión de rango.
	regimeBaseline = 10
	// El régimen pasa a EXPANSION cuando el true range promedio reciente
	// supera al previo en este factor.
	regimeExpansionRatio = 1.2
)

// ClassifyRegime distingue EXPANSION (el rango se abre, hay desplazamiento)
// de MEAN_REVERSION (el precio rota sobre un valor) comparando el true range
// promedio de las últimas velas contra el tramo anterior.
//
// Con menos de 2×baseline velas devuelve MEAN_REVERSION con confianza baja:
// sin base de comparación, asumir rotación es lo conservador.
func ClassifyRegime(candles []domain.Candle) domain.Regime {
	if len(candles) < 2*regimeBaseline {
		return domain.Regime{
			State:      domain.RegimeMeanReversion,
			Confidence: 0.3,
			Reason:     "Insufficient candles for regime baseline",
		}
	}

	recent := candles[len(candles)-regimeBaseline:]
	prior := candles[len(candles)-2*regimeBaseline : len(candles)-regimeBaseline]

	recentTR := averageTrueRange(recent)
	priorTR := averageTrueRange(prior)
	if priorTR == 0 {
		return domain.Regime{
			State:      domain.RegimeMeanReversion,
			Confidence: 0.3,
			Reason:     "Flat prior range",
		}
	}

	ratio := recentTR / priorTR
	if ratio >= regimeExpansionRatio {
		return domain.Regime{
			State:      domain.RegimeExpansion,
			Confidence: clamp01(0.5 + (ratio-regimeExpansionRatio)/2),
			Reason:     fmt.Sprintf("Range expanding %.2fx vs prior window", ratio),
		}
	}

	return domain.Regime{
		State:      domain.RegimeMeanReversion,
		Confidence: clamp01(0.5 + (regimeExpansionRatio-ratio)/2),
		Reason:     fmt.Sprintf("Range contracting %.2fx vs prior window", ratio),
	}
}

// averageTrueRange promedia el true range clásico: max(H-L, |H-Cprev|, |L-Cprev|).
// La primera vela de la ventana usa solo H-L.
func averageTrueRange(candles []domain.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	var sum float64
	for i, c := range candles {
		tr := c.Range()
		if i > 0 {
			prevClose := candles[i-1].Close
			tr = math.Max(tr, math.Abs(c.High-prevClose))
			tr = math.Max(tr, math.Abs(c.Low-prevClose))
		}
		sum += tr
	}
	return sum / float64(len(candles))
}
