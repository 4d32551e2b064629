package aura

import "github.com/synqra/aurafx/internal/domain"

// DetectStructurePoints encuentra extremos de swing por comparación fractal:
// la vela i es SWING_HIGH si su high supera estrictamente el high de todas
// las velas dentro de `window` posiciones a ambos lados; SWING_LOW es la
// condición simétrica sobre lows.
//
// Ambas condiciones pueden cumplirse en el mismo índice y emiten dos puntos —
// high y low son chequeos independientes, no es un bug.
// Nunca emite puntos en índices < window ni >= len-window.
func DetectStructurePoints(candles []domain.Candle, window int) []domain.StructurePoint {
	if window <= 0 {
		window = defaultSwingWindow
	}
	if len(candles) < 2*window+1 {
		return nil
	}

	var points []domain.StructurePoint
	for i := window; i < len(candles)-window; i++ {
		isHigh := true
		isLow := true
		for j := i - window; j <= i+window; j++ {
			if j == i {
				continue
			}
			if candles[j].High >= candles[i].High {
				isHigh = false
			}
			if candles[j].Low <= candles[i].Low {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}
		if isHigh {
			points = append(points, domain.StructurePoint{
				Type:  domain.SwingHigh,
				Index: i,
				Price: candles[i].High,
				Time:  candles[i].Time,
			})
		}
		if isLow {
			points = append(points, domain.StructurePoint{
				Type:  domain.SwingLow,
				Index: i,
				Price: candles[i].Low,
				Time:  candles[i].Time,
			})
		}
	}
	return points
}

// DetectStructureEvents deriva eventos BOS/CHOCH de pares consecutivos de
// swing points. Pares del mismo tipo (HIGH→HIGH, LOW→LOW) no resuelven
// dirección y se descartan sin evento. Pares opuestos que no rompen el
// nivel anterior resuelven RANGE y caen por la rama de no-continuación
// como CHOCH — solo el par mismo-tipo se filtra.
func DetectStructureEvents(swings []domain.StructurePoint) []domain.StructureEvent {
	if len(swings) < 2 {
		return nil
	}

	var events []domain.StructureEvent
	for i := 1; i < len(swings); i++ {
		prev, curr := swings[i-1], swings[i]

		direction, ok := resolveDirection(prev, curr)
		if !ok {
			continue
		}

		// BOS solo si el nuevo swing extiende estrictamente la dirección rota:
		// higher high tras un low alcista, lower low tras un high bajista.
		continuation := (direction == domain.DirectionBullish && curr.Price > prev.Price) ||
			(direction == domain.DirectionBearish && curr.Price < prev.Price)

		eventType := domain.EventCHOCH
		if continuation {
			eventType = domain.EventBOS
		}

		events = append(events, domain.StructureEvent{
			Type:        eventType,
			Direction:   direction,
			BrokenLevel: prev.Price,
			AtIndex:     curr.Index,
			Time:        curr.Time,
			FromSwing:   prev,
			ToSwing:     curr,
		})
	}
	return events
}

// resolveDirection resuelve la dirección de un par de swings consecutivos.
// ok=false únicamente para pares del mismo tipo; un par opuesto que no
// rompe el precio anterior resuelve RANGE con ok=true.
func resolveDirection(prev, curr domain.StructurePoint) (domain.Direction, bool) {
	if prev.Type == curr.Type {
		return domain.DirectionRange, false
	}
	if prev.Type == domain.SwingLow && curr.Type == domain.SwingHigh {
		if curr.Price > prev.Price {
			return domain.DirectionBullish, true
		}
		return domain.DirectionRange, true
	}
	if curr.Price < prev.Price {
		return domain.DirectionBearish, true
	}
	return domain.DirectionRange, true
}
