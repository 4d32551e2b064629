package domain

// Direction es la dirección de una tendencia, evento estructural o zona.
type Direction int

const (
	// DirectionRange indica ausencia de dirección clara. Es el caso por defecto.
	DirectionRange Direction = iota
	// DirectionBullish indica dirección alcista.
	DirectionBullish
	// DirectionBearish indica dirección bajista.
	DirectionBearish
)

func (d Direction) String() string {
	switch d {
	case DirectionBullish:
		return "BULLISH"
	case DirectionBearish:
		return "BEARISH"
	default:
		return "RANGE"
	}
}

// Directional devuelve true si la dirección no es RANGE.
func (d Direction) Directional() bool {
	return d == DirectionBullish || d == DirectionBearish
}

// TrendResult es el resultado de la clasificación de tendencia sobre
// una ventana de velas. Reason lleva el porcentaje formateado para auditoría.
type TrendResult struct {
	Direction Direction
	ChangePct float64 // cambio % close-a-close sobre el lookback
	Reason    string
}
