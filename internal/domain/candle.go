package domain

import (
	"fmt"
	"math"
	"time"
)

// Candle es una vela OHLCV. Inmutable una vez ingerida.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64 // opcional: 0 si el proveedor no lo reporta
}

// Bullish devuelve true si la vela cerró por encima de su apertura.
func (c Candle) Bullish() bool {
	return c.Close > c.Open
}

// Bearish devuelve true si la vela cerró por debajo de su apertura.
func (c Candle) Bearish() bool {
	return c.Close < c.Open
}

// Range devuelve el rango total de la vela (high - low).
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// Body devuelve el tamaño absoluto del cuerpo de la vela.
func (c Candle) Body() float64 {
	return math.Abs(c.Close - c.Open)
}

// ValidateCandles verifica que la ventana de velas esté bien formada:
// orden cronológico estricto, precios finitos y high >= low.
//
// Es la única frontera donde el engine falla con error: producir
// tendencia/estructura sobre datos corruptos sería peor que rechazarlos.
// Input insuficiente (pocas velas) NO es un error — ver DetectTrend.
func ValidateCandles(candles []Candle) error {
	for i, c := range candles {
		for _, p := range [4]float64{c.Open, c.High, c.Low, c.Close} {
			if math.IsNaN(p) || math.IsInf(p, 0) {
				return fmt.Errorf("domain.ValidateCandles: non-finite price at index %d", i)
			}
		}
		if c.High < c.Low {
			return fmt.Errorf("domain.ValidateCandles: high < low at index %d", i)
		}
		if i > 0 && !candles[i-1].Time.Before(c.Time) {
			return fmt.Errorf("domain.ValidateCandles: candles not in chronological order at index %d", i)
		}
	}
	return nil
}
