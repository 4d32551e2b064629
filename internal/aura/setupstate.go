package aura

import "github.com/synqra/aurafx/internal/domain"

// Umbrales del state machine de setups. El orden de las reglas que los usan
// es política de desempate deliberada, no accidente: cada regla asume que
// las anteriores ya excluyeron sus casos.
const (
	invalidScoreMax     = 0.42 // regla 1: score en o bajo esto → INVALID
	sessionScoreMin     = 0.60 // regla 3: fuera de sesión se exige al menos esto
	meanRevScoreMin     = 0.72 // regla 4: mean reversion direccional exige esto
	validScoreMin       = 0.68 // regla 5: piso de score para VALID
	formingScoreMin     = 0.52 // regla 6: piso de score para FORMING
	invalidConfidence   = 0.6
	weakScoreConfidence = 0.7
	sessionConfidence   = 0.55
	meanRevConfidence   = 0.5
)

// SetupInputs agrupa todo lo que el state machine considera. Datos planos,
// sin detectores: el caller decide de dónde salen.
type SetupInputs struct {
	Confluence    domain.ConfluenceBreakdown
	Trend         domain.Direction
	Regime        domain.RegimeState
	Session       domain.SessionState
	Events        []domain.StructureEvent
	OrderBlocks   []domain.OrderBlock
	FairValueGaps []domain.FairValueGap
}

// EvaluateSetupState resuelve FORMING/VALID/INVALID con reglas ordenadas:
// gana la primera que aplica. No hay tabla de transiciones entre llamadas —
// cada invocación recalcula el estado desde cero con los inputs actuales.
//
// Las reglas de rechazo por umbral llevan confianza fija; las aceptaciones
// por score (reglas 5 y 6) escalan con la evidencia: su confianza es el
// propio score acotado a [0,1]. Esa asimetría es intencional.
//
// Nunca devuelve error: inputs degenerados (sin eventos, sin imbalances)
// simplemente caen por las reglas hasta INVALID o FORMING.
func EvaluateSetupState(in SetupInputs) domain.SetupEvaluation {
	score := in.Confluence.OverallScore

	// Regla 1: score insuficiente de plano.
	if score <= invalidScoreMax {
		return domain.SetupEvaluation{
			State:      domain.SetupInvalid,
			Confidence: weakScoreConfidence,
			Reason:     "Confluence score below invalid threshold.",
		}
	}

	// Regla 2: el bias ya resolvió que no hay lado operable.
	if in.Confluence.PrimaryBias == domain.BiasNoTrade {
		return domain.SetupEvaluation{
			State:      domain.SetupInvalid,
			Confidence: invalidConfidence,
			Reason:     "Bias resolved to NO_TRADE.",
		}
	}

	// Regla 3: fuera de killzone, un score medio no alcanza todavía.
	if !in.Session.Active && score < sessionScoreMin {
		return domain.SetupEvaluation{
			State:      domain.SetupForming,
			Confidence: sessionConfidence,
			Reason:     "Outside active session; wait for timing alignment.",
		}
	}

	// Regla 4: en mean reversion, operar a favor de dirección exige más.
	if in.Regime == domain.RegimeMeanReversion && in.Trend.Directional() && score < meanRevScoreMin {
		return domain.SetupEvaluation{
			State:      domain.SetupForming,
			Confidence: meanRevConfidence,
			Reason:     "Mean reversion regime; directional bias requires stronger confluence.",
		}
	}

	// Regla 5: confluencia alta + imbalance activo + estructura → VALID.
	hasImbalance := countUnfilled(in.FairValueGaps) > 0 || countUnmitigated(in.OrderBlocks) > 0
	if score >= validScoreMin && hasImbalance && len(in.Events) > 0 {
		return domain.SetupEvaluation{
			State:      domain.SetupValid,
			Confidence: clamp01(score),
			Reason:     "Confluence, imbalance, and structure aligned.",
		}
	}

	// Regla 6: score decente pero falta confirmación.
	if score >= formingScoreMin {
		return domain.SetupEvaluation{
			State:      domain.SetupForming,
			Confidence: clamp01(score),
			Reason:     "Setup forming; awaiting stronger confluence or structure.",
		}
	}

	// Regla 7: nada alineó.
	return domain.SetupEvaluation{
		State:      domain.SetupInvalid,
		Confidence: invalidConfidence,
		Reason:     "Insufficient alignment for a valid setup.",
	}
}
