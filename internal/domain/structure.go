package domain

import "time"

// SwingType distingue los dos tipos de extremo estructural.
type SwingType int

const (
	SwingHigh SwingType = iota
	SwingLow
)

func (s SwingType) String() string {
	if s == SwingHigh {
		return "SWING_HIGH"
	}
	return "SWING_LOW"
}

// StructurePoint es un extremo de swing detectado por comparación fractal.
// Invariante: su high/low domina estrictamente a todas las velas dentro
// de `window` posiciones a ambos lados.
type StructurePoint struct {
	Type  SwingType
	Index int
	Price float64
	Time  time.Time
}

// EventType distingue continuación (BOS) de posible reversión (CHOCH).
type EventType int

const (
	// EventBOS: break of structure — el nuevo swing extiende la tendencia
	// más allá del extremo anterior.
	EventBOS EventType = iota
	// EventCHOCH: change of character — el swing rompe sin continuar la
	// secuencia direccional previa.
	EventCHOCH
)

func (e EventType) String() string {
	if e == EventBOS {
		return "BOS"
	}
	return "CHOCH"
}

// StructureEvent es la transición entre dos swing points consecutivos.
// Solo pares low→high o high→low producen evento; pares del mismo tipo
// no resuelven dirección y se descartan.
type StructureEvent struct {
	Type        EventType
	Direction   Direction
	BrokenLevel float64 // precio del swing anterior, el nivel violado
	AtIndex     int
	Time        time.Time
	FromSwing   StructurePoint
	ToSwing     StructurePoint
}
