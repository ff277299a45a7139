package game

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

func TestShotCount(t *testing.T) {
	cases := []struct {
		coins int
		want  int
	}{
		{0, 1},
		{9, 1},
		{10, 2},
		{14, 2},
		{15, 3},
		{20, 4},
		{39, 7},
		{40, 8},
		{1000, 8},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ShotCount(c.coins), "coins=%d", c.coins)
	}
}

func TestFanAngles(t *testing.T) {
	assert.Nil(t, FanAngles(0, 0))
	assert.Equal(t, []float64{1.5}, FanAngles(1.5, 1))

	three := FanAngles(0, 3)
	require.Len(t, three, 3)
	assert.InDelta(t, -0.14, three[0], 1e-9)
	assert.InDelta(t, 0, three[1], 1e-9)
	assert.InDelta(t, 0.14, three[2], 1e-9)

	two := FanAngles(1, 2)
	require.Len(t, two, 2)
	assert.InDelta(t, 0.93, two[0], 1e-9)
	assert.InDelta(t, 1.07, two[1], 1e-9)
}

func TestShootSpawnsFan(t *testing.T) {
	m, clock := newTestMatch(t)
	m.CoinsCollected = 15
	target := models.Vector2D{X: m.Player.Position.X + 100, Y: m.Player.Position.Y}

	require.True(t, m.Shoot(target))
	require.Len(t, m.Projectiles, 3)
	for i, p := range m.Projectiles {
		assert.Equal(t, ProjectileDamage, p.Damage)
		assert.Equal(t, m.Player.Position, p.Position)
		assert.InDelta(t, ProjectileSpeed, p.Velocity.Len(), 1e-6)
		angle := math.Atan2(p.Velocity.Y, p.Velocity.X)
		assert.InDelta(t, float64(i-1)*FanSpacing, angle, 1e-9)
	}

	// 冷却 250ms
	clock.Advance(200 * time.Millisecond)
	assert.False(t, m.Shoot(target))
	clock.Advance(50 * time.Millisecond)
	assert.True(t, m.Shoot(target))
	assert.Len(t, m.Projectiles, 6)
}
