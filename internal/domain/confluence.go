package domain

// Bias es la inclinación direccional accionable de una confluencia.
// A diferencia de Direction, NO_TRADE es un veredicto, no una ausencia:
// score y bias están desacoplados a propósito (ver ApplySetupState).
type Bias int

const (
	BiasNoTrade Bias = iota
	BiasBullish
	BiasBearish
)

func (b Bias) String() string {
	switch b {
	case BiasBullish:
		return "BULLISH"
	case BiasBearish:
		return "BEARISH"
	default:
		return "NO_TRADE"
	}
}

// ConfluenceComponents desglosa la contribución de cada factor al score.
// Cada componente está en [0,1] antes de ponderarse.
type ConfluenceComponents struct {
	Structure     float64
	Trend         float64
	OrderBlocks   float64
	FairValueGaps float64
	Liquidity     float64
	Session       float64
	Regime        float64
}

// ConfluenceBreakdown es la combinación ponderada de todas las señales.
// Objeto de valor puro: se recalcula en cada evaluación, nunca se persiste
// como estado interno.
type ConfluenceBreakdown struct {
	OverallScore float64 // 0..1
	PrimaryBias  Bias
	Components   ConfluenceComponents
}
