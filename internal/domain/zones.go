package domain

import "time"

// OrderBlock es la zona de la última vela contraria antes de un
// movimiento de desplazamiento. Demand = bullish, supply = bearish.
type OrderBlock struct {
	Direction Direction // DirectionBullish (demand) | DirectionBearish (supply)
	High      float64
	Low       float64
	Index     int
	Time      time.Time
	Mitigated bool // el precio ya volvió a atravesar la zona
}

// FairValueGap es un hueco de precio dejado por un movimiento brusco
// de tres velas. Se considera soporte/resistencia hasta que se rellena.
type FairValueGap struct {
	Direction Direction
	Top       float64
	Bottom    float64
	Index     int // índice de la vela central del patrón de tres
	Time      time.Time
	Filled    bool
}

// PoolSide indica de qué lado del precio se acumula la liquidez.
type PoolSide int

const (
	// PoolEqualHighs: máximos iguales — liquidez de stops por encima.
	PoolEqualHighs PoolSide = iota
	// PoolEqualLows: mínimos iguales — liquidez de stops por debajo.
	PoolEqualLows
)

func (p PoolSide) String() string {
	if p == PoolEqualHighs {
		return "EQUAL_HIGHS"
	}
	return "EQUAL_LOWS"
}

// LiquidityPool es un cluster de extremos casi iguales donde se asume
// liquidez descansando.
type LiquidityPool struct {
	Side      PoolSide
	Level     float64 // nivel promedio del cluster
	Touches   int     // cuántos extremos forman el cluster (>= 2)
	LastIndex int
}

// Direction devuelve la dirección implícita del pool: equal highs atraen
// precio hacia arriba (barrido alcista), equal lows hacia abajo.
func (l LiquidityPool) Direction() Direction {
	if l.Side == PoolEqualHighs {
		return DirectionBullish
	}
	return DirectionBearish
}

// Killzone es una ventana horaria de sesión usada como filtro de timing.
type Killzone int

const (
	KillzoneNone Killzone = iota
	KillzoneAsia
	KillzoneLondonOpen
	KillzoneNewYorkOpen
	KillzoneLondonClose
)

func (k Killzone) String() string {
	switch k {
	case KillzoneAsia:
		return "ASIA"
	case KillzoneLondonOpen:
		return "LONDON_OPEN"
	case KillzoneNewYorkOpen:
		return "NEW_YORK_OPEN"
	case KillzoneLondonClose:
		return "LONDON_CLOSE"
	default:
		return "NONE"
	}
}

// SessionWindow es el rango horario UTC de una killzone.
type SessionWindow struct {
	StartHourUTC int
	EndHourUTC   int
}

// SessionState es el resultado del clasificador de sesión.
type SessionState struct {
	Killzone Killzone
	Active   bool
	Window   SessionWindow
}

// RegimeState distingue los dos regímenes de mercado que el engine reconoce.
type RegimeState int

const (
	// RegimeMeanReversion: el rango se contrae, el precio rota sobre un valor.
	RegimeMeanReversion RegimeState = iota
	// RegimeExpansion: el rango se expande, el precio inicia desplazamiento.
	RegimeExpansion
)

func (r RegimeState) String() string {
	if r == RegimeExpansion {
		return "EXPANSION"
	}
	return "MEAN_REVERSION"
}

// Regime es el resultado del clasificador de régimen.
type Regime struct {
	State      RegimeState
	Confidence float64 // 0..1
	Reason     string
}
