package game

import (
	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

// Arena 竞技场尺寸，原点在左上角
type Arena struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center 竞技场中心，基地所在位置
func (a Arena) Center() models.Vector2D {
	return models.Vector2D{X: a.Width / 2, Y: a.Height / 2}
}

// PlayerSpawn 玩家出生点
func (a Arena) PlayerSpawn() models.Vector2D {
	return models.Vector2D{X: a.Width / 2, Y: a.Height - PlayerSpawnOffset}
}

// Contains 点是否在竞技场内
func (a Arena) Contains(p models.Vector2D) bool {
	return p.X >= 0 && p.X <= a.Width && p.Y >= 0 && p.Y <= a.Height
}

// Clamp 把点限制在竞技场内
func (a Arena) Clamp(p models.Vector2D) models.Vector2D {
	return models.Vector2D{
		X: min(max(p.X, 0), a.Width),
		Y: min(max(p.Y, 0), a.Height),
	}
}

// step 按dt秒推进所有实体的位置
func (m *Match) step(dt float64) {
	if dt <= 0 {
		return
	}

	// 玩家
	dir := m.moveDir
	if l := dir.Len(); l > 0 {
		m.Player.Velocity = models.Vector2D{X: dir.X / l * PlayerSpeed, Y: dir.Y / l * PlayerSpeed}
	} else {
		m.Player.Velocity = models.Vector2D{}
	}
	m.Player.Position = m.Arena.Clamp(advance(m.Player.Position, m.Player.Velocity, dt))

	// 敌人
	m.steerEnemies()
	for _, e := range m.Enemies {
		if !e.Removed {
			e.Position = advance(e.Position, e.Velocity, dt)
		}
	}

	// 投射物，离开边界即销毁
	for _, p := range m.Projectiles {
		if p.Removed {
			continue
		}
		p.Position = advance(p.Position, p.Velocity, dt)
		if !m.Arena.Contains(p.Position) {
			p.Remove()
		}
	}
}

func advance(pos, vel models.Vector2D, dt float64) models.Vector2D {
	return models.Vector2D{X: pos.X + vel.X*dt, Y: pos.Y + vel.Y*dt}
}

func overlaps(a, b models.Vector2D, ra, rb float64) bool {
	return a.DistanceTo(b) < ra+rb
}

// detectCollisions 圆形重叠检测。投射物命中最先排列，
// 同一帧内已被击杀的敌人后续碰撞会被 Resolve 忽略
func (m *Match) detectCollisions() []Collision {
	var collisions []Collision

	for _, p := range m.Projectiles {
		if p.Removed {
			continue
		}
		for _, e := range m.Enemies {
			if !e.Removed && overlaps(p.Position, e.Position, projectileRadius, enemyRadius) {
				collisions = append(collisions, ProjectileHit{Projectile: p, Enemy: e})
				break
			}
		}
	}

	for _, e := range m.Enemies {
		if e.Removed {
			continue
		}
		if overlaps(e.Position, m.Base.Position, enemyRadius, baseRadius) {
			collisions = append(collisions, BaseHit{Enemy: e})
		} else if overlaps(e.Position, m.Player.Position, enemyRadius, playerRadius) {
			collisions = append(collisions, PlayerHit{Enemy: e})
		}
	}

	for _, c := range m.Coins {
		if !c.Removed && overlaps(c.Position, m.Player.Position, coinRadius, playerRadius) {
			collisions = append(collisions, CoinPickup{Coin: c})
		}
	}

	return collisions
}
