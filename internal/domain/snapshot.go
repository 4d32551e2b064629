package domain

import "time"

// Snapshot es el resultado compuesto de una evaluación completa del engine
// sobre una ventana de velas. Objeto de valor: se construye fresco por
// evaluación y se descarta; no hay estado compartido entre llamadas.
type Snapshot struct {
	Symbol      string
	EvaluatedAt time.Time

	Trend           TrendResult
	StructurePoints []StructurePoint
	StructureEvents []StructureEvent

	OrderBlocks    []OrderBlock
	FairValueGaps  []FairValueGap
	LiquidityPools []LiquidityPool
	Session        SessionState
	Regime         Regime

	// RawConfluence es el score antes de aplicar el estado del setup.
	RawConfluence ConfluenceBreakdown
	// Confluence es el breakdown con enforcement: si Setup.State != VALID,
	// PrimaryBias queda forzado a NO_TRADE.
	Confluence ConfluenceBreakdown
	Setup      SetupEvaluation

	// Risk solo está presente si el setup es VALID y el sizing es computable.
	Risk *RiskSizing

	// LastClose es el último cierre de la ventana evaluada, para display.
	LastClose float64
}

// Actionable devuelve true si el snapshot representa una señal operable:
// setup VALID con bias direccional tras el enforcement.
func (s Snapshot) Actionable() bool {
	return s.Setup.State == SetupValid && s.Confluence.PrimaryBias != BiasNoTrade
}

// EventCounts devuelve cuántos BOS y CHOCH hay entre los eventos detectados.
func (s Snapshot) EventCounts() (bos, choch int) {
	for _, ev := range s.StructureEvents {
		if ev.Type == EventBOS {
			bos++
		} else {
			choch++
		}
	}
	return bos, choch
}

// HasImbalance devuelve true si hay al menos un order block sin mitigar
// o un fair value gap sin rellenar.
func (s Snapshot) HasImbalance() bool {
	for _, ob := range s.OrderBlocks {
		if !ob.Mitigated {
			return true
		}
	}
	for _, gap := range s.FairValueGaps {
		if !gap.Filled {
			return true
		}
	}
	return false
}
