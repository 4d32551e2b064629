package scanner

import (
	"github.com/synqra/aurafx/internal/domain"
)

// FilterConfig contiene los parámetros configurables de filtrado.
type FilterConfig struct {
	// MinScore descarta snapshots con score de confluencia menor a esto.
	MinScore float64
	// IncludeInvalid si true, deja pasar snapshots INVALID (útil en debug).
	IncludeInvalid bool
	// OnlyActionable si true, solo incluye setups VALID con bias operable.
	OnlyActionable bool
	// RequireActiveSession descarta snapshots evaluados fuera de killzone.
	RequireActiveSession bool
}

// DefaultFilterConfig devuelve una configuración de filtrado conservadora.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinScore:       0.0,
		IncludeInvalid: false,
	}
}

// Filter aplica los filtros configurados sobre una lista de snapshots.
type Filter struct {
	cfg FilterConfig
}

// NewFilter crea un Filter con la configuración dada.
func NewFilter(cfg FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Apply devuelve los snapshots que pasan todos los filtros.
func (f *Filter) Apply(snaps []domain.Snapshot) []domain.Snapshot {
	result := make([]domain.Snapshot, 0, len(snaps))
	for _, snap := range snaps {
		if f.passes(snap) {
			result = append(result, snap)
		}
	}
	return result
}

// passes devuelve true si el snapshot supera todos los criterios.
func (f *Filter) passes(snap domain.Snapshot) bool {
	if !f.cfg.IncludeInvalid && snap.Setup.State == domain.SetupInvalid {
		return false
	}
	if f.cfg.OnlyActionable && !snap.Actionable() {
		return false
	}
	if f.cfg.MinScore > 0 && snap.Confluence.OverallScore < f.cfg.MinScore {
		return false
	}
	if f.cfg.RequireActiveSession && !snap.Session.Active {
		return false
	}
	return true
}
