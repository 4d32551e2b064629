package aura

import (
	"time"

	"github.com/synqra/aurafx/internal/domain"
)

// Ventanas de killzone en horas UTC, [start, end).
// El orden importa: la primera que contiene la hora gana, así London Close
// no pisa a New York Open en el tramo compartido de la tarde.
var killzoneWindows = []struct {
	zone   domain.Killzone
	window domain.SessionWindow
}{
	{domain.KillzoneAsia, domain.SessionWindow{StartHourUTC: 0, EndHourUTC: 4}},
	{domain.KillzoneLondonOpen, domain.SessionWindow{StartHourUTC: 7, EndHourUTC: 10}},
	{domain.KillzoneNewYorkOpen, domain.SessionWindow{StartHourUTC: 12, EndHourUTC: 15}},
	{domain.KillzoneLondonClose, domain.SessionWindow{StartHourUTC: 15, EndHourUTC: 17}},
}

// ClassifySession determina en qué killzone cae el instante dado.
// tzOffsetMinutes permite pasar timestamps en hora local del proveedor:
// se suma al instante antes de evaluar la hora UTC.
func ClassifySession(t time.Time, tzOffsetMinutes int) domain.SessionState {
	shifted := t.UTC().Add(time.Duration(tzOffsetMinutes) * time.Minute)
	hour := shifted.Hour()

	for _, kz := range killzoneWindows {
		if hour >= kz.window.StartHourUTC && hour < kz.window.EndHourUTC {
			return domain.SessionState{
				Killzone: kz.zone,
				Active:   true,
				Window:   kz.window,
			}
		}
	}

	return domain.SessionState{Killzone: domain.KillzoneNone}
}
