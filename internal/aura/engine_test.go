package aura_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synqra/aurafx/internal/aura"
	"github.com/synqra/aurafx/internal/domain"
)

// evaluateScenario corre la composición pura del pipeline sobre señales
// prearmadas: score → state machine → enforcement. Es el mismo camino que
// recorre Engine.Evaluate con los detectores ya resueltos.
func evaluateScenario(in aura.ConfluenceInputs) (domain.SetupEvaluation, domain.ConfluenceBreakdown) {
	raw := aura.ScoreConfluence(in)
	setup := aura.EvaluateSetupState(aura.SetupInputs{
		Confluence:    raw,
		Trend:         in.Trend.Direction,
		Regime:        in.Regime.State,
		Session:       in.Session,
		Events:        in.Events,
		OrderBlocks:   in.OrderBlocks,
		FairValueGaps: in.FairValueGaps,
	})
	return setup, aura.ApplySetupStateToConfluence(raw, setup)
}

func TestScenario_AlignedBullishSetupIsValid(t *testing.T) {
	// Tendencia alcista, un BOS, un order block de demanda sin mitigar,
	// un FVG alcista sin rellenar, killzone activa, régimen EXPANSION.
	setup, enforced := evaluateScenario(aura.ConfluenceInputs{
		Trend:         domain.TrendResult{Direction: domain.DirectionBullish, ChangePct: 2.8},
		Events:        []domain.StructureEvent{bullishBOS()},
		OrderBlocks:   []domain.OrderBlock{unmitigatedOB(domain.DirectionBullish)},
		FairValueGaps: []domain.FairValueGap{unfilledFVG(domain.DirectionBullish)},
		Session:       activeSession(),
		Regime:        domain.Regime{State: domain.RegimeExpansion, Confidence: 0.7},
	})

	assert.Equal(t, domain.SetupValid, setup.State)
	assert.NotEqual(t, domain.BiasNoTrade, enforced.PrimaryBias)
}

func TestScenario_WeakAlignmentIsForming(t *testing.T) {
	// Tendencia alcista, un CHOCH, un order block, sin FVG ni pools,
	// killzone inactiva, régimen MEAN_REVERSION.
	choch := bullishBOS()
	choch.Type = domain.EventCHOCH

	setup, enforced := evaluateScenario(aura.ConfluenceInputs{
		Trend:       domain.TrendResult{Direction: domain.DirectionBullish, ChangePct: 1.9},
		Events:      []domain.StructureEvent{choch},
		OrderBlocks: []domain.OrderBlock{unmitigatedOB(domain.DirectionBullish)},
		Regime:      domain.Regime{State: domain.RegimeMeanReversion, Confidence: 0.6},
	})

	assert.Equal(t, domain.SetupForming, setup.State)
	// Sin VALID, el enforcement anula el bias.
	assert.Equal(t, domain.BiasNoTrade, enforced.PrimaryBias)
}

func TestScenario_ConflictingStructureIsInvalid(t *testing.T) {
	// Tendencia alcista pero el evento es un BOS bajista, dos pools de
	// liquidez, sin imbalances, killzone inactiva, MEAN_REVERSION.
	bearBOS := bullishBOS()
	bearBOS.Direction = domain.DirectionBearish

	setup, enforced := evaluateScenario(aura.ConfluenceInputs{
		Trend:  domain.TrendResult{Direction: domain.DirectionBullish, ChangePct: 2.1},
		Events: []domain.StructureEvent{bearBOS},
		LiquidityPools: []domain.LiquidityPool{
			{Side: domain.PoolEqualHighs, Level: 108, Touches: 2},
			{Side: domain.PoolEqualLows, Level: 94, Touches: 2},
		},
		Regime: domain.Regime{State: domain.RegimeMeanReversion, Confidence: 0.6},
	})

	assert.Equal(t, domain.SetupInvalid, setup.State)
	assert.Equal(t, domain.BiasNoTrade, enforced.PrimaryBias)
}

// trendingCandles genera una subida sostenida con pullbacks para que el
// pipeline completo tenga swings, eventos y zonas que detectar.
func trendingCandles(n int) []domain.Candle {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	candles := make([]domain.Candle, n)
	price := 100.0
	for i := 0; i < n; i++ {
		step := 0.8
		if i%5 == 3 || i%5 == 4 {
			step = -0.4 // pullback corto cada cinco velas
		}
		open := price
		price += step
		high := max(open, price) + 0.3
		low := min(open, price) - 0.3
		candles[i] = domain.Candle{
			Time:   base.Add(time.Duration(i) * 15 * time.Minute),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 1000,
		}
	}
	return candles
}

func TestEngine_Evaluate_Idempotent(t *testing.T) {
	engine := aura.New(aura.Options{AccountBalance: 10000, RiskPercent: 0.01})
	input := aura.Input{Symbol: "BTCUSDT", Candles: trendingCandles(80)}

	first, err := engine.Evaluate(input)
	require.NoError(t, err)
	second, err := engine.Evaluate(input)
	require.NoError(t, err)

	// Sin estado oculto: misma ventana, mismo snapshot.
	assert.Equal(t, first, second)
}

func TestEngine_Evaluate_RejectsUnorderedCandles(t *testing.T) {
	candles := trendingCandles(10)
	candles[3], candles[7] = candles[7], candles[3]

	engine := aura.New(aura.Options{})
	_, err := engine.Evaluate(aura.Input{Symbol: "BTCUSDT", Candles: candles})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chronological")
}

func TestEngine_Evaluate_RejectsNaNPrices(t *testing.T) {
	candles := trendingCandles(10)
	candles[5].Close = math.NaN()

	engine := aura.New(aura.Options{})
	_, err := engine.Evaluate(aura.Input{Symbol: "BTCUSDT", Candles: candles})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-finite")
}

func TestEngine_Evaluate_DegradedWindowIsNotAnError(t *testing.T) {
	// Dos velas: tendencia degradada a RANGE, sin swings, sin pánico.
	engine := aura.New(aura.Options{})
	snap, err := engine.Evaluate(aura.Input{Symbol: "BTCUSDT", Candles: trendingCandles(2)})
	require.NoError(t, err)
	assert.Equal(t, domain.DirectionRange, snap.Trend.Direction)
	assert.Equal(t, "Insufficient candles", snap.Trend.Reason)
	assert.Empty(t, snap.StructurePoints)
}

func TestEngine_Evaluate_OverridesReplaceDetectors(t *testing.T) {
	engine := aura.New(aura.Options{})

	trend := domain.TrendResult{Direction: domain.DirectionBearish, ChangePct: -4.2, Reason: "supplied"}
	session := activeSession()
	regime := domain.Regime{State: domain.RegimeExpansion, Confidence: 0.9, Reason: "supplied"}

	snap, err := engine.Evaluate(aura.Input{
		Symbol:  "ETHUSDT",
		Candles: trendingCandles(30),
		Trend:   &trend,
		Session: &session,
		Regime:  &regime,
	})
	require.NoError(t, err)

	assert.Equal(t, trend, snap.Trend)
	assert.Equal(t, session, snap.Session)
	assert.Equal(t, regime, snap.Regime)
}

func TestEngine_Evaluate_EvaluatedAtComesFromCandles(t *testing.T) {
	engine := aura.New(aura.Options{})
	candles := trendingCandles(20)

	snap, err := engine.Evaluate(aura.Input{Symbol: "BTCUSDT", Candles: candles})
	require.NoError(t, err)
	assert.Equal(t, candles[len(candles)-1].Time, snap.EvaluatedAt)
	assert.InDelta(t, candles[len(candles)-1].Close, snap.LastClose, 0.001)
}
