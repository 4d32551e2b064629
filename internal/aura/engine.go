package aura

import (
	"fmt"

	"github.com/synqra/aurafx/internal/domain"
)

// Options son los parámetros del engine. Los ceros se rellenan con los
// defaults documentados, así el zero value es utilizable.
type Options struct {
	// TrendLookback es la ventana de velas para la tendencia. Default 50.
	TrendLookback int
	// SwingWindow es el lookback fractal simétrico para swings. Default 2.
	SwingWindow int
	// MinSwingSizePct está reservado; hoy no filtra. Default 0.05.
	MinSwingSizePct float64
	// TzOffsetMinutes ajusta los timestamps del proveedor a UTC para la
	// clasificación de sesión.
	TzOffsetMinutes int
	// AccountBalance y RiskPercent habilitan el sizing de riesgo en
	// setups VALID. Con balance 0 el sizing se omite.
	AccountBalance float64
	RiskPercent    float64
}

func (o Options) withDefaults() Options {
	if o.TrendLookback <= 0 {
		o.TrendLookback = defaultTrendLookback
	}
	if o.SwingWindow <= 0 {
		o.SwingWindow = defaultSwingWindow
	}
	if o.MinSwingSizePct <= 0 {
		o.MinSwingSizePct = defaultMinSwingSizePct
	}
	return o
}

// Input es la entrada de una evaluación. Solo Candles es obligatorio.
// Los campos opcionales, cuando vienen, reemplazan al detector interno
// correspondiente — el engine los consume como datos planos.
type Input struct {
	Symbol  string
	Candles []domain.Candle

	Trend          *domain.TrendResult
	OrderBlocks    []domain.OrderBlock
	FairValueGaps  []domain.FairValueGap
	LiquidityPools []domain.LiquidityPool
	Session        *domain.SessionState
	Regime         *domain.Regime
}

// Engine compone el pipeline completo: estructura → confluencia → setup →
// riesgo. Sin estado mutable: cada Evaluate es independiente, idempotente
// y reentrante por construcción.
type Engine struct {
	opts Options
}

// New crea un Engine con las opciones dadas (defaults aplicados).
func New(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Evaluate corre el pipeline sobre la ventana de velas y devuelve el
// snapshot compuesto. El único error posible es input malformado en la
// frontera (velas fuera de orden, precios no finitos); el input degradado
// pero bien formado produce un snapshot degradado, nunca error.
func (e *Engine) Evaluate(in Input) (domain.Snapshot, error) {
	if err := domain.ValidateCandles(in.Candles); err != nil {
		return domain.Snapshot{}, fmt.Errorf("aura.Evaluate: %w", err)
	}

	trend := DetectTrend(in.Candles, TrendOptions{
		Lookback:        e.opts.TrendLookback,
		MinSwingSizePct: e.opts.MinSwingSizePct,
	})
	if in.Trend != nil {
		trend = *in.Trend
	}

	points := DetectStructurePoints(in.Candles, e.opts.SwingWindow)
	events := DetectStructureEvents(points)

	orderBlocks := in.OrderBlocks
	if orderBlocks == nil {
		orderBlocks = DetectOrderBlocks(in.Candles)
	}
	gaps := in.FairValueGaps
	if gaps == nil {
		gaps = DetectFairValueGaps(in.Candles)
	}
	pools := in.LiquidityPools
	if pools == nil {
		pools = DetectLiquidityPools(points)
	}

	var session domain.SessionState
	if in.Session != nil {
		session = *in.Session
	} else if len(in.Candles) > 0 {
		session = ClassifySession(in.Candles[len(in.Candles)-1].Time, e.opts.TzOffsetMinutes)
	}

	var regime domain.Regime
	if in.Regime != nil {
		regime = *in.Regime
	} else {
		regime = ClassifyRegime(in.Candles)
	}

	raw := ScoreConfluence(ConfluenceInputs{
		Trend:          trend,
		Events:         events,
		OrderBlocks:    orderBlocks,
		FairValueGaps:  gaps,
		LiquidityPools: pools,
		Session:        session,
		Regime:         regime,
	})

	setup := EvaluateSetupState(SetupInputs{
		Confluence:    raw,
		Trend:         trend.Direction,
		Regime:        regime.State,
		Session:       session,
		Events:        events,
		OrderBlocks:   orderBlocks,
		FairValueGaps: gaps,
	})

	enforced := ApplySetupStateToConfluence(raw, setup)

	snap := domain.Snapshot{
		Symbol:          in.Symbol,
		Trend:           trend,
		StructurePoints: points,
		StructureEvents: events,
		OrderBlocks:     orderBlocks,
		FairValueGaps:   gaps,
		LiquidityPools:  pools,
		Session:         session,
		Regime:          regime,
		RawConfluence:   raw,
		Confluence:      enforced,
		Setup:           setup,
	}
	if n := len(in.Candles); n > 0 {
		snap.LastClose = in.Candles[n-1].Close
		// EvaluatedAt sale de la última vela, no del reloj: misma ventana,
		// mismo snapshot, byte a byte.
		snap.EvaluatedAt = in.Candles[n-1].Time
	}

	if snap.Actionable() {
		snap.Risk = e.proposeRisk(snap)
	}

	return snap, nil
}

// proposeRisk arma zonas de entrada/stop/target para un setup VALID y
// calcula el sizing. Entrada en el último cierre; stop anclado al order
// block activo más reciente a favor del bias, o al último swing contrario;
// target en el pool de liquidez del lado del movimiento, o el último swing
// a favor. Sin anclas utilizables devuelve nil.
func (e *Engine) proposeRisk(snap domain.Snapshot) *domain.RiskSizing {
	if e.opts.AccountBalance <= 0 || e.opts.RiskPercent <= 0 {
		return nil
	}

	direction := domain.TradeLong
	bullish := snap.Confluence.PrimaryBias == domain.BiasBullish
	if !bullish {
		direction = domain.TradeShort
	}

	entry := domain.ZoneAt(snap.LastClose)
	stop, ok := stopAnchor(snap, bullish)
	if !ok {
		return nil
	}
	target, ok := targetAnchor(snap, bullish)
	if !ok {
		return nil
	}

	sizing, ok := domain.ComputeRiskSizing(direction, entry, stop, target, e.opts.AccountBalance, e.opts.RiskPercent)
	if !ok {
		return nil
	}
	return &sizing
}

// stopAnchor busca la referencia de stop: order block activo a favor del
// bias del lado protegido, si no el último swing contrario al movimiento.
func stopAnchor(snap domain.Snapshot, bullish bool) (domain.PriceZone, bool) {
	for i := len(snap.OrderBlocks) - 1; i >= 0; i-- {
		ob := snap.OrderBlocks[i]
		if ob.Mitigated {
			continue
		}
		if bullish && ob.Direction == domain.DirectionBullish && ob.Low < snap.LastClose {
			return domain.PriceZone{High: ob.High, Low: ob.Low}, true
		}
		if !bullish && ob.Direction == domain.DirectionBearish && ob.High > snap.LastClose {
			return domain.PriceZone{High: ob.High, Low: ob.Low}, true
		}
	}

	want := domain.SwingLow
	if !bullish {
		want = domain.SwingHigh
	}
	for i := len(snap.StructurePoints) - 1; i >= 0; i-- {
		p := snap.StructurePoints[i]
		if p.Type != want {
			continue
		}
		if bullish && p.Price < snap.LastClose {
			return domain.ZoneAt(p.Price), true
		}
		if !bullish && p.Price > snap.LastClose {
			return domain.ZoneAt(p.Price), true
		}
	}
	return domain.PriceZone{}, false
}

// targetAnchor busca la referencia de target: pool de liquidez del lado del
// movimiento, si no el último swing a favor más allá del cierre.
func targetAnchor(snap domain.Snapshot, bullish bool) (domain.PriceZone, bool) {
	wantSide := domain.PoolEqualHighs
	if !bullish {
		wantSide = domain.PoolEqualLows
	}
	for i := len(snap.LiquidityPools) - 1; i >= 0; i-- {
		pool := snap.LiquidityPools[i]
		if pool.Side != wantSide {
			continue
		}
		if bullish && pool.Level > snap.LastClose {
			return domain.ZoneAt(pool.Level), true
		}
		if !bullish && pool.Level < snap.LastClose {
			return domain.ZoneAt(pool.Level), true
		}
	}

	want := domain.SwingHigh
	if !bullish {
		want = domain.SwingLow
	}
	for i := len(snap.StructurePoints) - 1; i >= 0; i-- {
		p := snap.StructurePoints[i]
		if p.Type != want {
			continue
		}
		if bullish && p.Price > snap.LastClose {
			return domain.ZoneAt(p.Price), true
		}
		if !bullish && p.Price < snap.LastClose {
			return domain.ZoneAt(p.Price), true
		}
	}
	return domain.PriceZone{}, false
}
