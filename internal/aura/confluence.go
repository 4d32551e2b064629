package aura

import "github.com/synqra/aurafx/internal/domain"

// Pesos de cada factor de confluencia. Suman 1.0, así el score queda en [0,1]
// sin normalización posterior. La estructura y la tendencia dominan; sesión y
// régimen solo afinan.
const (
	weightStructure   = 0.30
	weightTrend       = 0.20
	weightOrderBlocks = 0.15
	weightFVG         = 0.15
	weightLiquidity   = 0.10
	weightSession     = 0.05
	weightRegime      = 0.05
)

const (
	// Contribución de cada tipo de evento al componente de estructura.
	// Un BOS confirma más que un CHOCH.
	bosEventWeight   = 1.0
	chochEventWeight = 0.6
	// El componente de estructura satura con este peso acumulado.
	structureSaturation = 2.0
	// Pools necesarios contra la dirección primaria para anular el bias.
	opposingPoolsForVeto = 2
)

// ConfluenceInputs agrupa las señales que el scorer combina. Todas son datos
// planos: el scorer no llama a ningún detector, solo pondera lo recibido.
type ConfluenceInputs struct {
	Trend          domain.TrendResult
	Events         []domain.StructureEvent
	OrderBlocks    []domain.OrderBlock
	FairValueGaps  []domain.FairValueGap
	LiquidityPools []domain.LiquidityPool
	Session        domain.SessionState
	Regime         domain.Regime
}

// ScoreConfluence combina las señales en un score ponderado [0,1] y un bias
// direccional primario. Función pura.
//
// El score es monótono: cada factor confirmatorio solo suma términos no
// negativos, así que agregar evidencia nunca lo reduce. La evidencia en
// conflicto (tendencia contra estructura, liquidez dominante en contra) no
// toca el score — anula el bias hacia NO_TRADE.
func ScoreConfluence(in ConfluenceInputs) domain.ConfluenceBreakdown {
	comp := domain.ConfluenceComponents{
		Structure:     structureComponent(in.Events),
		Trend:         trendComponent(in.Trend),
		OrderBlocks:   imbalancePresence(countUnmitigated(in.OrderBlocks)),
		FairValueGaps: imbalancePresence(countUnfilled(in.FairValueGaps)),
		Liquidity:     clamp01(float64(len(in.LiquidityPools)) / 2),
		Session:       sessionComponent(in.Session),
		Regime:        regimeComponent(in.Regime),
	}

	score := weightStructure*comp.Structure +
		weightTrend*comp.Trend +
		weightOrderBlocks*comp.OrderBlocks +
		weightFVG*comp.FairValueGaps +
		weightLiquidity*comp.Liquidity +
		weightSession*comp.Session +
		weightRegime*comp.Regime

	return domain.ConfluenceBreakdown{
		OverallScore: clamp01(score),
		PrimaryBias:  resolveBias(in),
		Components:   comp,
	}
}

// ApplySetupStateToConfluence fuerza el bias a NO_TRADE cuando el setup no
// es VALID. Score y bias operable están desacoplados a propósito: un score
// alto sin setup validado jamás debe filtrarse como señal accionable.
func ApplySetupStateToConfluence(conf domain.ConfluenceBreakdown, setup domain.SetupEvaluation) domain.ConfluenceBreakdown {
	if setup.State != domain.SetupValid {
		conf.PrimaryBias = domain.BiasNoTrade
	}
	return conf
}

// structureComponent acumula el peso de los eventos y satura en 1.
func structureComponent(events []domain.StructureEvent) float64 {
	var total float64
	for _, ev := range events {
		if ev.Type == domain.EventBOS {
			total += bosEventWeight
		} else {
			total += chochEventWeight
		}
	}
	return clamp01(total / structureSaturation)
}

// trendComponent: una tendencia direccional aporta el componente completo;
// RANGE aporta una base reducida, no cero, porque un rango limpio también
// es información.
func trendComponent(tr domain.TrendResult) float64 {
	if tr.Direction.Directional() {
		return 1.0
	}
	return 0.3
}

// imbalancePresence satura con la primera zona activa: una segunda zona no
// duplica la evidencia.
func imbalancePresence(count int) float64 {
	if count > 0 {
		return 1.0
	}
	return 0
}

func sessionComponent(s domain.SessionState) float64 {
	if s.Active {
		return 1.0
	}
	return 0
}

func regimeComponent(r domain.Regime) float64 {
	if r.State == domain.RegimeExpansion {
		return 1.0
	}
	return 0.4
}

// resolveBias determina la inclinación direccional primaria.
// Reglas de conflicto, en orden:
//  1. Tendencia y estructura dominante en direcciones opuestas → NO_TRADE.
//  2. Liquidez dominante en contra de la dirección primaria → NO_TRADE.
//  3. Sin dirección en tendencia ni estructura → NO_TRADE.
func resolveBias(in ConfluenceInputs) domain.Bias {
	trendDir := in.Trend.Direction
	eventDir := dominantEventDirection(in.Events)

	if trendDir.Directional() && eventDir.Directional() && trendDir != eventDir {
		return domain.BiasNoTrade
	}

	primary := trendDir
	if !primary.Directional() {
		primary = eventDir
	}
	if !primary.Directional() {
		return domain.BiasNoTrade
	}

	if opposingPools(in.LiquidityPools, primary) >= opposingPoolsForVeto {
		return domain.BiasNoTrade
	}

	if primary == domain.DirectionBullish {
		return domain.BiasBullish
	}
	return domain.BiasBearish
}

// dominantEventDirection pondera los eventos por tipo y devuelve la dirección
// con más peso acumulado; empate o ausencia resuelven RANGE.
func dominantEventDirection(events []domain.StructureEvent) domain.Direction {
	var bull, bear float64
	for _, ev := range events {
		w := chochEventWeight
		if ev.Type == domain.EventBOS {
			w = bosEventWeight
		}
		switch ev.Direction {
		case domain.DirectionBullish:
			bull += w
		case domain.DirectionBearish:
			bear += w
		}
	}
	switch {
	case bull > bear:
		return domain.DirectionBullish
	case bear > bull:
		return domain.DirectionBearish
	default:
		return domain.DirectionRange
	}
}

// opposingPools cuenta los pools cuya dirección implícita va contra la dada.
func opposingPools(pools []domain.LiquidityPool, dir domain.Direction) int {
	var n int
	for _, p := range pools {
		if p.Direction().Directional() && p.Direction() != dir {
			n++
		}
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
