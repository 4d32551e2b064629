package aura_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/synqra/aurafx/internal/aura"
	"github.com/synqra/aurafx/internal/domain"
)

func utcAt(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestClassifySession_Killzones(t *testing.T) {
	cases := []struct {
		hour int
		want domain.Killzone
	}{
		{0, domain.KillzoneAsia},
		{3, domain.KillzoneAsia},
		{7, domain.KillzoneLondonOpen},
		{9, domain.KillzoneLondonOpen},
		{12, domain.KillzoneNewYorkOpen},
		{14, domain.KillzoneNewYorkOpen},
		{15, domain.KillzoneLondonClose},
		{16, domain.KillzoneLondonClose},
	}
	for _, tc := range cases {
		state := aura.ClassifySession(utcAt(tc.hour, 30), 0)
		assert.Equal(t, tc.want, state.Killzone, "hour %d", tc.hour)
		assert.True(t, state.Active, "hour %d", tc.hour)
	}
}

func TestClassifySession_DeadHoursInactive(t *testing.T) {
	for _, hour := range []int{5, 6, 10, 11, 18, 22} {
		state := aura.ClassifySession(utcAt(hour, 0), 0)
		assert.False(t, state.Active, "hour %d", hour)
		assert.Equal(t, domain.KillzoneNone, state.Killzone)
	}
}

func TestClassifySession_WindowBoundaries(t *testing.T) {
	// [start, end): la hora de inicio cuenta, la de fin no.
	assert.True(t, aura.ClassifySession(utcAt(7, 0), 0).Active)
	assert.False(t, aura.ClassifySession(utcAt(10, 0), 0).Active)
	// ...salvo que otra killzone arranque justo ahí (NY 15 → London Close 15).
	assert.Equal(t, domain.KillzoneNewYorkOpen, aura.ClassifySession(utcAt(14, 59), 0).Killzone)
	assert.Equal(t, domain.KillzoneLondonClose, aura.ClassifySession(utcAt(15, 0), 0).Killzone)
}

func TestClassifySession_TzOffsetShiftsEvaluation(t *testing.T) {
	// 06:00 UTC está muerto, pero con offset +60 se evalúa como 07:00 → London.
	state := aura.ClassifySession(utcAt(6, 0), 60)
	assert.Equal(t, domain.KillzoneLondonOpen, state.Killzone)
	assert.True(t, state.Active)

	// Offset negativo: 08:00 UTC con -120 se evalúa como 06:00 → inactivo.
	state = aura.ClassifySession(utcAt(8, 0), -120)
	assert.False(t, state.Active)
}

func TestClassifySession_WindowReported(t *testing.T) {
	state := aura.ClassifySession(utcAt(13, 0), 0)
	assert.Equal(t, domain.SessionWindow{StartHourUTC: 12, EndHourUTC: 15}, state.Window)
}
