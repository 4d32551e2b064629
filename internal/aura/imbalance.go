package aura

import "github.com/synqra/aurafx/internal/domain"

const (
	// Una vela es desplazamiento si su cuerpo supera este múltiplo del
	// cuerpo promedio de la ventana.
	displacementBodyFactor = 1.5
	// Dos extremos forman un pool de liquidez si difieren menos de este %.
	equalLevelTolerancePct = 0.1
)

// DetectOrderBlocks busca la última vela contraria antes de cada vela de
// desplazamiento: esa zona actúa como referencia de demanda (bullish) o
// de oferta (bearish). Una zona queda mitigada cuando el precio vuelve
// a operar dentro de ella en velas posteriores.
func DetectOrderBlocks(candles []domain.Candle) []domain.OrderBlock {
	if len(candles) < 3 {
		return nil
	}

	avgBody := averageBody(candles)
	if avgBody == 0 {
		return nil
	}

	var blocks []domain.OrderBlock
	for i := 1; i < len(candles); i++ {
		curr := candles[i]
		prev := candles[i-1]

		if curr.Body() < avgBody*displacementBodyFactor {
			continue
		}

		// El order block es la vela contraria inmediatamente anterior.
		var direction domain.Direction
		switch {
		case curr.Bullish() && prev.Bearish():
			direction = domain.DirectionBullish
		case curr.Bearish() && prev.Bullish():
			direction = domain.DirectionBearish
		default:
			continue
		}

		ob := domain.OrderBlock{
			Direction: direction,
			High:      prev.High,
			Low:       prev.Low,
			Index:     i - 1,
			Time:      prev.Time,
		}
		ob.Mitigated = orderBlockMitigated(ob, candles[i+1:])
		blocks = append(blocks, ob)
	}
	return blocks
}

// orderBlockMitigated: el precio volvió a entrar en la zona tras formarse.
func orderBlockMitigated(ob domain.OrderBlock, later []domain.Candle) bool {
	for _, c := range later {
		if ob.Direction == domain.DirectionBullish && c.Low <= ob.High {
			return true
		}
		if ob.Direction == domain.DirectionBearish && c.High >= ob.Low {
			return true
		}
	}
	return false
}

// DetectFairValueGaps busca huecos de tres velas: hay FVG alcista cuando el
// high de la vela i-2 queda por debajo del low de la vela i (el rango de la
// vela central no se solapa con sus vecinas), y el caso simétrico bajista.
// Un gap queda rellenado cuando una vela posterior opera a través de él.
func DetectFairValueGaps(candles []domain.Candle) []domain.FairValueGap {
	if len(candles) < 3 {
		return nil
	}

	var gaps []domain.FairValueGap
	for i := 2; i < len(candles); i++ {
		left, mid, right := candles[i-2], candles[i-1], candles[i]

		if left.High < right.Low {
			gap := domain.FairValueGap{
				Direction: domain.DirectionBullish,
				Top:       right.Low,
				Bottom:    left.High,
				Index:     i - 1,
				Time:      mid.Time,
			}
			gap.Filled = gapFilled(gap, candles[i+1:])
			gaps = append(gaps, gap)
		}

		if left.Low > right.High {
			gap := domain.FairValueGap{
				Direction: domain.DirectionBearish,
				Top:       left.Low,
				Bottom:    right.High,
				Index:     i - 1,
				Time:      mid.Time,
			}
			gap.Filled = gapFilled(gap, candles[i+1:])
			gaps = append(gaps, gap)
		}
	}
	return gaps
}

// gapFilled: una vela posterior atravesó el gap por completo.
func gapFilled(gap domain.FairValueGap, later []domain.Candle) bool {
	for _, c := range later {
		if gap.Direction == domain.DirectionBullish && c.Low <= gap.Bottom {
			return true
		}
		if gap.Direction == domain.DirectionBearish && c.High >= gap.Top {
			return true
		}
	}
	return false
}

// DetectLiquidityPools agrupa swings consecutivos del mismo tipo con precios
// casi iguales (tolerancia relativa) en pools de liquidez: equal highs
// acumulan stops por encima, equal lows por debajo.
func DetectLiquidityPools(swings []domain.StructurePoint) []domain.LiquidityPool {
	highs := filterSwings(swings, domain.SwingHigh)
	lows := filterSwings(swings, domain.SwingLow)

	pools := clusterLevels(highs, domain.PoolEqualHighs)
	pools = append(pools, clusterLevels(lows, domain.PoolEqualLows)...)
	return pools
}

func filterSwings(swings []domain.StructurePoint, typ domain.SwingType) []domain.StructurePoint {
	var out []domain.StructurePoint
	for _, s := range swings {
		if s.Type == typ {
			out = append(out, s)
		}
	}
	return out
}

// clusterLevels recorre los swings en orden y acumula rachas de precios
// dentro de la tolerancia. Una racha de 2+ toques forma un pool.
func clusterLevels(swings []domain.StructurePoint, side domain.PoolSide) []domain.LiquidityPool {
	var pools []domain.LiquidityPool

	var sum float64
	var touches int
	var lastIndex int

	flush := func() {
		if touches >= 2 {
			pools = append(pools, domain.LiquidityPool{
				Side:      side,
				Level:     sum / float64(touches),
				Touches:   touches,
				LastIndex: lastIndex,
			})
		}
		sum, touches = 0, 0
	}

	for _, s := range swings {
		if touches > 0 {
			ref := sum / float64(touches)
			if relDiffPct(s.Price, ref) > equalLevelTolerancePct {
				flush()
			}
		}
		sum += s.Price
		touches++
		lastIndex = s.Index
	}
	flush()

	return pools
}

func relDiffPct(a, b float64) float64 {
	if b == 0 {
		return 100
	}
	d := (a - b) / b * 100
	if d < 0 {
		return -d
	}
	return d
}

// countUnmitigated cuenta order blocks cuya zona no fue revisitada.
func countUnmitigated(blocks []domain.OrderBlock) int {
	var n int
	for _, ob := range blocks {
		if !ob.Mitigated {
			n++
		}
	}
	return n
}

// countUnfilled cuenta fair value gaps todavía abiertos.
func countUnfilled(gaps []domain.FairValueGap) int {
	var n int
	for _, g := range gaps {
		if !g.Filled {
			n++
		}
	}
	return n
}

func averageBody(candles []domain.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	var sum float64
	for _, c := range candles {
		sum += c.Body()
	}
	return sum / float64(len(candles))
}
