package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveTeamConfig(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		wantMin int
		wantMax int
	}{
		{"defaults", Event{}, 1, 1},
		{"legacy team limit", Event{TeamLimit: 4}, 1, 4},
		{"config wins over legacy", Event{TeamLimit: 4, TeamConfig: TeamConfig{MinSize: 2, MaxSize: 6}}, 2, 6},
		{"max never below one", Event{TeamLimit: -3}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.event.EffectiveTeamConfig()
			assert.Equal(t, tt.wantMin, cfg.MinSize)
			assert.Equal(t, tt.wantMax, cfg.MaxSize)
		})
	}
}

func TestSeatsAvailable(t *testing.T) {
	assert.Equal(t, -1, (&Event{}).SeatsAvailable())
	assert.Equal(t, 3, (&Event{MaxAttendees: 5, CurrentAttendees: 2}).SeatsAvailable())
	assert.Equal(t, 0, (&Event{MaxAttendees: 5, CurrentAttendees: 7}).SeatsAvailable())
}

func TestEventStatusValid(t *testing.T) {
	assert.True(t, EventCompleted.Valid())
	assert.False(t, EventStatus("archived").Valid())
}
