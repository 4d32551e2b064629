package aura_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synqra/aurafx/internal/aura"
	"github.com/synqra/aurafx/internal/domain"
)

// ohlc arma una vela sin volumen con timestamps consecutivos de 15m.
func ohlc(i int, o, h, l, c float64) domain.Candle {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	return domain.Candle{
		Time: base.Add(time.Duration(i) * 15 * time.Minute),
		Open: o, High: h, Low: l, Close: c,
	}
}

func TestDetectOrderBlocks_BullishDemandZone(t *testing.T) {
	// Vela bajista (índice 1) seguida de desplazamiento alcista (índice 2)
	// con cuerpo muy por encima del promedio; el precio nunca vuelve a la zona.
	candles := []domain.Candle{
		ohlc(0, 100.5, 100.6, 99.9, 100.0),
		ohlc(1, 100.0, 100.1, 99.4, 99.5),
		ohlc(2, 99.5, 102.6, 99.4, 102.5),
		ohlc(3, 102.5, 103.1, 102.3, 103.0),
	}

	blocks := aura.DetectOrderBlocks(candles)
	require.Len(t, blocks, 1)

	ob := blocks[0]
	assert.Equal(t, domain.DirectionBullish, ob.Direction)
	assert.Equal(t, 1, ob.Index)
	assert.InDelta(t, 100.1, ob.High, 0.001)
	assert.InDelta(t, 99.4, ob.Low, 0.001)
	assert.False(t, ob.Mitigated)
}

func TestDetectOrderBlocks_MitigatedOnRevisit(t *testing.T) {
	candles := []domain.Candle{
		ohlc(0, 100.5, 100.6, 99.9, 100.0),
		ohlc(1, 100.0, 100.1, 99.4, 99.5),
		ohlc(2, 99.5, 102.6, 99.4, 102.5),
		ohlc(3, 102.5, 103.1, 102.3, 103.0),
		// Retroceso que opera dentro de la zona [99.4, 100.1].
		ohlc(4, 103.0, 103.1, 100.0, 102.8),
	}

	blocks := aura.DetectOrderBlocks(candles)
	require.Len(t, blocks, 1)
	assert.True(t, blocks[0].Mitigated)
}

func TestDetectOrderBlocks_BearishSupplyZone(t *testing.T) {
	// Espejo bajista: vela alcista antes de un desplazamiento a la baja.
	candles := []domain.Candle{
		ohlc(0, 100.0, 100.6, 99.9, 100.5),
		ohlc(1, 100.5, 101.1, 100.4, 101.0),
		ohlc(2, 101.0, 101.1, 97.9, 98.0),
		ohlc(3, 98.0, 98.2, 97.4, 97.5),
	}

	blocks := aura.DetectOrderBlocks(candles)
	require.Len(t, blocks, 1)

	ob := blocks[0]
	assert.Equal(t, domain.DirectionBearish, ob.Direction)
	assert.InDelta(t, 101.1, ob.High, 0.001)
	assert.InDelta(t, 100.4, ob.Low, 0.001)
	assert.False(t, ob.Mitigated)
}

func TestDetectOrderBlocks_NoDisplacementNoBlocks(t *testing.T) {
	// Cuerpos uniformes: ninguna vela destaca sobre el promedio.
	candles := []domain.Candle{
		ohlc(0, 100.0, 100.6, 99.9, 100.5),
		ohlc(1, 100.5, 101.1, 100.4, 101.0),
		ohlc(2, 101.0, 101.6, 100.9, 101.5),
		ohlc(3, 101.5, 102.1, 101.4, 102.0),
	}
	assert.Empty(t, aura.DetectOrderBlocks(candles))
}

func TestDetectFairValueGaps_BullishGap(t *testing.T) {
	// El high de la vela 0 (101) queda por debajo del low de la vela 2 (103).
	candles := []domain.Candle{
		ohlc(0, 100.0, 101.0, 99.0, 100.5),
		ohlc(1, 100.5, 104.5, 100.4, 104.0),
		ohlc(2, 104.0, 105.5, 103.0, 105.0),
	}

	gaps := aura.DetectFairValueGaps(candles)
	require.Len(t, gaps, 1)

	gap := gaps[0]
	assert.Equal(t, domain.DirectionBullish, gap.Direction)
	assert.InDelta(t, 103.0, gap.Top, 0.001)
	assert.InDelta(t, 101.0, gap.Bottom, 0.001)
	assert.Equal(t, 1, gap.Index)
	assert.False(t, gap.Filled)
}

func TestDetectFairValueGaps_FilledOnTradeThrough(t *testing.T) {
	candles := []domain.Candle{
		ohlc(0, 100.0, 101.0, 99.0, 100.5),
		ohlc(1, 100.5, 104.5, 100.4, 104.0),
		ohlc(2, 104.0, 105.5, 103.0, 105.0),
		// Retroceso que atraviesa el gap hasta por debajo de 101.
		ohlc(3, 105.0, 105.2, 100.8, 101.2),
	}

	gaps := aura.DetectFairValueGaps(candles)
	require.Len(t, gaps, 1)
	assert.True(t, gaps[0].Filled)
}

func TestDetectFairValueGaps_BearishGap(t *testing.T) {
	candles := []domain.Candle{
		ohlc(0, 100.0, 101.0, 99.0, 99.5),
		ohlc(1, 99.5, 99.6, 95.5, 96.0),
		ohlc(2, 96.0, 97.0, 94.5, 95.0),
	}

	gaps := aura.DetectFairValueGaps(candles)
	require.Len(t, gaps, 1)

	gap := gaps[0]
	assert.Equal(t, domain.DirectionBearish, gap.Direction)
	assert.InDelta(t, 99.0, gap.Top, 0.001)
	assert.InDelta(t, 97.0, gap.Bottom, 0.001)
}

func TestDetectFairValueGaps_OverlappingCandlesNoGap(t *testing.T) {
	candles := []domain.Candle{
		ohlc(0, 100.0, 101.0, 99.0, 100.5),
		ohlc(1, 100.5, 101.5, 100.0, 101.0),
		ohlc(2, 101.0, 102.0, 100.5, 101.5),
	}
	assert.Empty(t, aura.DetectFairValueGaps(candles))
}

func TestDetectLiquidityPools_EqualHighsCluster(t *testing.T) {
	swings := []domain.StructurePoint{
		{Type: domain.SwingHigh, Index: 5, Price: 110.00},
		{Type: domain.SwingHigh, Index: 12, Price: 110.05},
		// Lejos de la tolerancia: rompe la racha y queda como toque único.
		{Type: domain.SwingHigh, Index: 20, Price: 115.00},
	}

	pools := aura.DetectLiquidityPools(swings)
	require.Len(t, pools, 1)

	pool := pools[0]
	assert.Equal(t, domain.PoolEqualHighs, pool.Side)
	assert.Equal(t, 2, pool.Touches)
	assert.Equal(t, 12, pool.LastIndex)
	assert.InDelta(t, 110.025, pool.Level, 0.001)
}

func TestDetectLiquidityPools_HighsAndLowsIndependent(t *testing.T) {
	swings := []domain.StructurePoint{
		{Type: domain.SwingHigh, Index: 3, Price: 110.00},
		{Type: domain.SwingLow, Index: 6, Price: 95.00},
		{Type: domain.SwingHigh, Index: 9, Price: 110.02},
		{Type: domain.SwingLow, Index: 13, Price: 95.03},
	}

	pools := aura.DetectLiquidityPools(swings)
	require.Len(t, pools, 2)
	assert.Equal(t, domain.PoolEqualHighs, pools[0].Side)
	assert.Equal(t, domain.PoolEqualLows, pools[1].Side)
}

func TestDetectLiquidityPools_SingleTouchIsNotAPool(t *testing.T) {
	swings := []domain.StructurePoint{
		{Type: domain.SwingHigh, Index: 4, Price: 110.0},
		{Type: domain.SwingLow, Index: 8, Price: 95.0},
	}
	assert.Empty(t, aura.DetectLiquidityPools(swings))
}
