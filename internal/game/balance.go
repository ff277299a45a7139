package game

import "time"

// 平衡常量，固定值，不随配置变化
const (
	PlayerMaxHealth = 100
	BaseMaxHealth   = 300
	PlayerSpeed     = 400.0

	EnemiesPerWave     = 3
	EnemyBaseHealth    = 40
	EnemyHealthPerWave = 10
	EnemySpeed         = 60.0
	EnemySpawnY        = -50.0

	MeleeDamage   = 20
	MeleeRange    = 60.0
	MeleeCooldown = 500 * time.Millisecond

	ProjectileDamage  = 30
	ProjectileSpeed   = 800.0
	ShootCooldown     = 250 * time.Millisecond
	FanSpacing        = 0.14
	MaxShots          = 8
	MultiShotCoins    = 10
	CoinsPerExtraShot = 5

	BaseCollisionDamage   = 10
	PlayerCollisionDamage = 5

	// 玩家出生点距底边的距离
	PlayerSpawnOffset = 150.0
)

// 碰撞半径
const (
	playerRadius     = 20.0
	enemyRadius      = 16.0
	baseRadius       = 60.0
	projectileRadius = 5.0
	coinRadius       = 10.0
)
