package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventTypeString(t *testing.T) {
	t.Parallel()

	cases := map[EventType]string{
		EventStop:     "stop",
		EventStart:    "start",
		EventCancel:   "cancel",
		EventOnAir:    "on_air",
		EventOther:    "other",
		EventType(42): "unknown",
	}
	for eventType, want := range cases {
		assert.Equal(t, want, eventType.String())
	}
}

func TestRelated_FirstNonNilWins(t *testing.T) {
	t.Parallel()

	sound := &Sound{ID: 1}
	track := &Track{ID: 2}
	diffusion := &Diffusion{ID: 3}

	assert.Nil(t, (&Log{}).Related())
	assert.Equal(t, diffusion, (&Log{Diffusion: diffusion}).Related())
	assert.Equal(t, track, (&Log{Track: track, Diffusion: diffusion}).Related())
	// Exclusivity is not enforced: with every reference set, sound wins.
	assert.Equal(t, sound, (&Log{Sound: sound, Track: track, Diffusion: diffusion}).Related())
}

func TestLocalDate(t *testing.T) {
	t.Parallel()

	entry := &Log{Date: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}

	helsinki := &Station{Timezone: "Europe/Helsinki"}
	local := entry.LocalDate(helsinki)
	assert.Equal(t, 14, local.Hour(), "Helsinki is UTC+2 in March before DST")
	assert.True(t, local.Equal(entry.Date), "conversion must not move the instant")

	assert.Equal(t, entry.Date, entry.LocalDate(nil))
	assert.Equal(t, entry.Date, entry.LocalDate(&Station{Timezone: "Not/AZone"}))
}
