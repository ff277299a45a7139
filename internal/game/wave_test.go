package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

func TestSpawnWaveScalesWithWave(t *testing.T) {
	m, _ := newTestMatch(t)

	require.Len(t, m.Enemies, 3)
	for _, e := range m.Enemies {
		assert.Equal(t, 50, e.Health)
		assert.Equal(t, 50, e.MaxHealth)
		assert.Equal(t, EnemySpawnY, e.Position.Y)
		assert.GreaterOrEqual(t, e.Position.X, 0.0)
		assert.Less(t, e.Position.X, testArena.Width)
		assert.Equal(t, 1, e.Wave)
	}

	m.Advance()
	assert.Equal(t, 2, m.Wave)
	assert.Equal(t, 9, m.ActiveEnemies())
	for _, e := range m.Enemies[3:] {
		assert.Equal(t, 60, e.Health)
	}
}

func TestEnemyHealthForWave(t *testing.T) {
	assert.Equal(t, 50, EnemyHealthForWave(1))
	assert.Equal(t, 90, EnemyHealthForWave(5))
	assert.Equal(t, 30, EnemiesForWave(10))
}

func TestWaveClearedByProjectiles(t *testing.T) {
	m, _ := newTestMatch(t)
	m.DrainEvents()

	wave1 := append([]*models.EnemyEntity(nil), m.Enemies...)
	for i, e := range wave1 {
		e.Health = ProjectileDamage
		m.Resolve(ProjectileHit{Projectile: &models.ProjectileEntity{Damage: ProjectileDamage}, Enemy: e})
		if i < len(wave1)-1 {
			assert.Equal(t, 1, m.Wave)
		}
	}

	assert.Equal(t, 2, m.Wave)
	assert.Equal(t, 6, m.ActiveEnemies())
	assert.Len(t, m.Coins, 3)

	events := m.DrainEvents()
	assert.Equal(t, 3, countEvents(events, models.EventEnemyKilled))
	assert.Equal(t, 1, countEvents(events, models.EventWaveStarted))
}

func TestEnemiesSteerTowardBase(t *testing.T) {
	m, _ := newTestMatch(t)
	e := m.Enemies[0]
	e.Position = models.Vector2D{X: m.Base.Position.X, Y: 0}

	m.steerEnemies()

	assert.InDelta(t, 0, e.Velocity.X, 1e-9)
	assert.InDelta(t, EnemySpeed, e.Velocity.Y, 1e-9)
}
