package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

func TestMeleeCooldown(t *testing.T) {
	m, clock := newTestMatch(t)

	require.True(t, m.Attack())
	clock.Advance(400 * time.Millisecond)
	assert.False(t, m.Attack())
	clock.Advance(200 * time.Millisecond)
	assert.True(t, m.Attack())
}

func TestMeleeAndShootCooldownsAreIndependent(t *testing.T) {
	m, clock := newTestMatch(t)
	target := models.Vector2D{X: m.Player.Position.X, Y: 0}

	require.True(t, m.Attack())
	require.True(t, m.Shoot(target), "近战冷却不影响射击")

	clock.Advance(100 * time.Millisecond)
	assert.False(t, m.Attack())
	assert.False(t, m.Shoot(target))
}

func TestMeleeRange(t *testing.T) {
	m, _ := newTestMatch(t)
	near, edge := m.Enemies[0], m.Enemies[1]
	near.Position = models.Vector2D{X: m.Player.Position.X + 59, Y: m.Player.Position.Y}
	edge.Position = models.Vector2D{X: m.Player.Position.X, Y: m.Player.Position.Y - MeleeRange}

	require.True(t, m.Attack())

	assert.Equal(t, 30, near.Health)
	assert.Equal(t, 50, edge.Health)
}

func TestMeleeKillDropsSingleCoin(t *testing.T) {
	m, clock := newTestMatch(t)
	enemy := m.Enemies[0]
	enemy.Health = 40
	enemy.Position = m.Player.Position

	require.True(t, m.Attack())
	assert.Equal(t, 20, enemy.Health)
	assert.Empty(t, m.Coins)

	clock.Advance(MeleeCooldown)
	require.True(t, m.Attack())
	assert.True(t, enemy.Removed)
	require.Len(t, m.Coins, 1)
	assert.Equal(t, enemy.Position, m.Coins[0].Position)

	coin := m.Coins[0]
	m.Resolve(CoinPickup{Coin: coin})
	m.Resolve(CoinPickup{Coin: coin})
	assert.Equal(t, 1, m.CoinsCollected)
	assert.Equal(t, 1, m.Wave)
}

func TestMeleeClearsWave(t *testing.T) {
	m, clock := newTestMatch(t)
	m.DrainEvents()
	for _, e := range m.Enemies {
		e.Position = m.Player.Position
	}

	// 50hp 需要三次近战
	for i := 0; i < 3; i++ {
		require.True(t, m.Attack())
		clock.Advance(MeleeCooldown)
	}

	assert.Equal(t, 2, m.Wave)
	assert.Equal(t, 6, m.ActiveEnemies())
	assert.Len(t, m.Coins, 3)
	assert.Equal(t, 1, countEvents(m.DrainEvents(), models.EventWaveStarted))
}

func TestBaseCollisions(t *testing.T) {
	m, _ := newTestMatch(t)

	for i := 0; i < 3; i++ {
		m.Resolve(BaseHit{Enemy: m.liveEnemies()[0]})
	}
	assert.Equal(t, 270, m.Base.Health)
	assert.Equal(t, MatchPlaying, m.Status)
	assert.Equal(t, 2, m.Wave)

	for i := 0; i < 27; i++ {
		live := m.liveEnemies()
		require.NotEmpty(t, live)
		m.Resolve(BaseHit{Enemy: live[0]})
	}

	assert.Equal(t, 0, m.Base.Health)
	require.True(t, m.IsOver())
	assert.Equal(t, CauseBaseDestroyed, m.Result.Cause)
	assert.Equal(t, 4, m.Result.Wave)
	assert.Equal(t, 0, m.Result.Score)

	m.Resolve(BaseHit{Enemy: &models.EnemyEntity{}})
	assert.Equal(t, 0, m.Base.Health)
	assert.Equal(t, 1, countEvents(m.DrainEvents(), models.EventGameOver))
}

func TestPlayerCollision(t *testing.T) {
	m, _ := newTestMatch(t)
	enemy := m.Enemies[0]

	m.Resolve(PlayerHit{Enemy: enemy})
	m.Resolve(PlayerHit{Enemy: enemy})

	assert.Equal(t, PlayerMaxHealth-PlayerCollisionDamage, m.Player.Health)
	assert.True(t, enemy.Removed)
	assert.Empty(t, m.Coins)
}

func TestProjectileOnDeadEnemyIsNoop(t *testing.T) {
	m, _ := newTestMatch(t)
	enemy := m.Enemies[0]
	m.Resolve(BaseHit{Enemy: enemy})

	p := &models.ProjectileEntity{Damage: ProjectileDamage}
	m.Resolve(ProjectileHit{Projectile: p, Enemy: enemy})

	assert.False(t, p.Removed)
	assert.Empty(t, m.Coins)
	assert.Equal(t, 2, m.ActiveEnemies())
}

func TestProjectileDestroyedOnHit(t *testing.T) {
	m, _ := newTestMatch(t)
	enemy := m.Enemies[0]
	p := &models.ProjectileEntity{Damage: ProjectileDamage}

	m.Resolve(ProjectileHit{Projectile: p, Enemy: enemy})

	assert.True(t, p.Removed)
	assert.Equal(t, 20, enemy.Health)
	assert.False(t, enemy.Removed)

	// 已销毁的投射物不再造成伤害
	m.Resolve(ProjectileHit{Projectile: p, Enemy: enemy})
	assert.Equal(t, 20, enemy.Health)
}
