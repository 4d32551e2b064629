package domain

import "math"

// TradeDirection es el lado de una operación propuesta.
type TradeDirection int

const (
	TradeLong TradeDirection = iota
	TradeShort
)

func (t TradeDirection) String() string {
	if t == TradeShort {
		return "SHORT"
	}
	return "LONG"
}

// PriceZone es un rango de precio [Low, High] para entrada, stop o target.
// Un nivel exacto se representa con Low == High.
type PriceZone struct {
	High float64
	Low  float64
}

// Midpoint devuelve el punto medio de la zona.
func (z PriceZone) Midpoint() float64 {
	return (z.High + z.Low) / 2
}

// ZoneAt crea una zona puntual en el precio dado.
func ZoneAt(price float64) PriceZone {
	return PriceZone{High: price, Low: price}
}

// RiskSizing es el resultado del cálculo de tamaño de posición.
type RiskSizing struct {
	RMultiple    float64 // distancia de reward / distancia de riesgo
	PositionSize float64 // unidades del instrumento
	RiskAmount   float64 // capital arriesgado (balance × riskPercent)
}

// ComputeRiskSizing convierte zonas de entrada/stop/target y parámetros de
// cuenta en un sizing recomendado. Usa midpoints de zona, con la misma
// convención para LONG y SHORT: riesgo = |entry − stop|, reward = |target − entry|.
//
// Devuelve ok=false si la distancia de riesgo es cero o los parámetros de
// cuenta son inválidos — un stop de ancho cero es un error del caller, no
// una falla del sistema, así que se señala con resultado ausente en lugar
// de error para mantener la función pura en loops calientes.
func ComputeRiskSizing(direction TradeDirection, entry, stop, target PriceZone, accountBalance, riskPercent float64) (RiskSizing, bool) {
	if accountBalance <= 0 || riskPercent <= 0 {
		return RiskSizing{}, false
	}

	entryPx := entry.Midpoint()
	stopPx := stop.Midpoint()
	targetPx := target.Midpoint()

	riskPerUnit := math.Abs(entryPx - stopPx)
	if riskPerUnit == 0 {
		return RiskSizing{}, false
	}
	rewardPerUnit := math.Abs(targetPx - entryPx)

	riskAmount := accountBalance * riskPercent
	return RiskSizing{
		RMultiple:    rewardPerUnit / riskPerUnit,
		PositionSize: riskAmount / riskPerUnit,
		RiskAmount:   riskAmount,
	}, true
}
