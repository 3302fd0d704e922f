package service

import (
	"testing"
	"time"

	"github.com/avvvet/badge-services/internal/badgesvc/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDirection(t *testing.T) {
	cases := []struct {
		name string
		last *models.Movement
		want models.Direction
	}{
		{"no movement", nil, models.DirectionIn},
		{"last in", &models.Movement{Direction: models.DirectionIn}, models.DirectionOut},
		{"last out", &models.Movement{Direction: models.DirectionOut}, models.DirectionIn},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextDirection(tc.last))
		})
	}
}

func TestPresenceOf(t *testing.T) {
	p := PresenceOf("B1", nil)
	assert.Equal(t, models.PresenceOutside, p.State)
	assert.Nil(t, p.LastDirection)
	assert.Nil(t, p.LastMovementAt)

	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	p = PresenceOf("B1", &models.Movement{BadgeID: "B1", Direction: models.DirectionIn, CreatedAt: at})
	assert.Equal(t, models.PresenceInside, p.State)
	require.NotNil(t, p.LastDirection)
	assert.Equal(t, models.DirectionIn, *p.LastDirection)
	require.NotNil(t, p.LastMovementAt)
	assert.True(t, at.Equal(*p.LastMovementAt))

	p = PresenceOf("B1", &models.Movement{BadgeID: "B1", Direction: models.DirectionOut, CreatedAt: at})
	assert.Equal(t, models.PresenceOutside, p.State)
}
