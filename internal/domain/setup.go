package domain

// SetupState es la clasificación terminal de un setup.
// No hay tabla de transiciones entre llamadas: cada evaluación recalcula
// el estado desde cero a partir de los inputs actuales.
type SetupState int

const (
	// SetupForming: las condiciones se están desarrollando.
	SetupForming SetupState = iota
	// SetupValid: confluencia, imbalance y estructura alineados.
	SetupValid
	// SetupInvalid: violado o insuficientemente alineado.
	SetupInvalid
)

func (s SetupState) String() string {
	switch s {
	case SetupValid:
		return "VALID"
	case SetupInvalid:
		return "INVALID"
	default:
		return "FORMING"
	}
}

// SetupEvaluation es el veredicto del state machine de setups.
// Se crea fresco en cada llamada y nunca se muta.
type SetupEvaluation struct {
	State      SetupState
	Confidence float64 // 0..1
	Reason     string
}
