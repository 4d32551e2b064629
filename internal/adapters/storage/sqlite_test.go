package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synqra/aurafx/internal/adapters/storage"
	"github.com/synqra/aurafx/internal/domain"
)

func makeSnapshot(symbol string, state domain.SetupState, bias domain.Bias, score float64) domain.Snapshot {
	return domain.Snapshot{
		Symbol:      symbol,
		EvaluatedAt: time.Now().UTC().Truncate(time.Second),
		Trend:       domain.TrendResult{Direction: domain.DirectionBullish, ChangePct: 2.1},
		Confluence:  domain.ConfluenceBreakdown{OverallScore: score, PrimaryBias: bias},
		Setup:       domain.SetupEvaluation{State: state, Confidence: 0.7, Reason: "test"},
		Session:     domain.SessionState{Killzone: domain.KillzoneLondonOpen, Active: true},
		Regime:      domain.Regime{State: domain.RegimeExpansion},
		LastClose:   104.2,
	}
}

func TestSQLiteStorage_SaveAndGetHistory(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	snaps := []domain.Snapshot{
		makeSnapshot("BTCUSDT", domain.SetupValid, domain.BiasBullish, 0.75),
		makeSnapshot("ETHUSDT", domain.SetupForming, domain.BiasNoTrade, 0.55),
	}

	err = db.SaveScan(context.Background(), snaps)
	require.NoError(t, err)

	from := time.Now().UTC().Add(-time.Minute)
	to := time.Now().UTC().Add(time.Minute)
	history, err := db.GetHistory(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Ordenados por score desc
	assert.Equal(t, "BTCUSDT", history[0].Symbol)
	assert.InDelta(t, 0.75, history[0].Confluence.OverallScore, 0.001)
	assert.Equal(t, domain.SetupValid, history[0].Setup.State)
	assert.Equal(t, domain.BiasBullish, history[0].Confluence.PrimaryBias)
	assert.Equal(t, domain.DirectionBullish, history[0].Trend.Direction)

	assert.Equal(t, "ETHUSDT", history[1].Symbol)
	assert.Equal(t, domain.SetupForming, history[1].Setup.State)
}

func TestSQLiteStorage_InvalidNotPersisted(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	snaps := []domain.Snapshot{
		makeSnapshot("BTCUSDT", domain.SetupValid, domain.BiasBullish, 0.75),
		makeSnapshot("ETHUSDT", domain.SetupInvalid, domain.BiasNoTrade, 0.30),
	}
	require.NoError(t, db.SaveScan(context.Background(), snaps))

	history, err := db.GetHistory(context.Background(),
		time.Now().UTC().Add(-time.Minute), time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "BTCUSDT", history[0].Symbol)
}

func TestSQLiteStorage_SaveEmptySlice(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.SaveScan(context.Background(), nil))
}

func TestSQLiteStorage_GetHistory_EmptyRange(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	history, err := db.GetHistory(context.Background(),
		time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSQLiteStorage_SmallScoreChangeSkipsRewrite(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.SaveScan(ctx, []domain.Snapshot{
		makeSnapshot("BTCUSDT", domain.SetupValid, domain.BiasBullish, 0.75),
	}))

	// Cambio de score < 5% con mismo estado y bias: la caché lo filtra,
	// el histórico sigue mostrando el valor anterior.
	require.NoError(t, db.SaveScan(ctx, []domain.Snapshot{
		makeSnapshot("BTCUSDT", domain.SetupValid, domain.BiasBullish, 0.74),
	}))

	history, err := db.GetHistory(ctx,
		time.Now().UTC().Add(-time.Minute), time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.InDelta(t, 0.75, history[0].Confluence.OverallScore, 0.001)
}

func TestSQLiteStorage_LargeScoreChangeRewrites(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.SaveScan(ctx, []domain.Snapshot{
		makeSnapshot("BTCUSDT", domain.SetupValid, domain.BiasBullish, 0.75),
	}))
	require.NoError(t, db.SaveScan(ctx, []domain.Snapshot{
		makeSnapshot("BTCUSDT", domain.SetupValid, domain.BiasBullish, 0.60),
	}))

	history, err := db.GetHistory(ctx,
		time.Now().UTC().Add(-time.Minute), time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.InDelta(t, 0.60, history[0].Confluence.OverallScore, 0.001)
}

func TestSQLiteStorage_StateChangeRewrites(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.SaveScan(ctx, []domain.Snapshot{
		makeSnapshot("BTCUSDT", domain.SetupForming, domain.BiasNoTrade, 0.55),
	}))
	require.NoError(t, db.SaveScan(ctx, []domain.Snapshot{
		makeSnapshot("BTCUSDT", domain.SetupValid, domain.BiasBullish, 0.55),
	}))

	history, err := db.GetHistory(ctx,
		time.Now().UTC().Add(-time.Minute), time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.SetupValid, history[0].Setup.State)
}

func TestSQLiteStorage_RiskRoundTrip(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	snap := makeSnapshot("BTCUSDT", domain.SetupValid, domain.BiasBullish, 0.75)
	snap.Risk = &domain.RiskSizing{RMultiple: 3.0, PositionSize: 50.0, RiskAmount: 100.0}

	ctx := context.Background()
	require.NoError(t, db.SaveScan(ctx, []domain.Snapshot{snap}))

	history, err := db.GetHistory(ctx,
		time.Now().UTC().Add(-time.Minute), time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].Risk)
	assert.InDelta(t, 3.0, history[0].Risk.RMultiple, 0.001)
	assert.InDelta(t, 50.0, history[0].Risk.PositionSize, 0.001)
}
