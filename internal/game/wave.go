package game

import (
	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

// EnemiesForWave 第n波的敌人数量
func EnemiesForWave(wave int) int {
	return wave * EnemiesPerWave
}

// EnemyHealthForWave 第n波敌人的生命值
func EnemyHealthForWave(wave int) int {
	return EnemyBaseHealth + EnemyHealthPerWave*wave
}

// SpawnWave 在竞技场顶部上方生成当前波次的敌人，返回生成数量
func (m *Match) SpawnWave() int {
	count := EnemiesForWave(m.Wave)
	hp := EnemyHealthForWave(m.Wave)

	for i := 0; i < count; i++ {
		at := models.Vector2D{X: m.rng.Float64() * m.Arena.Width, Y: EnemySpawnY}
		m.Enemies = append(m.Enemies, &models.EnemyEntity{
			BaseEntity: m.newBase(models.EntityEnemy, at),
			Vitals:     models.Vitals{Health: hp, MaxHealth: hp},
			Speed:      EnemySpeed,
			Wave:       m.Wave,
		})
	}

	m.emit(models.GameEvent{Type: models.EventWaveStarted, Value: m.Wave})
	return count
}

// Advance 波次加一并生成新一波
func (m *Match) Advance() {
	m.Wave++
	m.SpawnWave()
}

// ActiveEnemies 存活敌人数量
func (m *Match) ActiveEnemies() int {
	n := 0
	for _, e := range m.Enemies {
		if !e.Removed {
			n++
		}
	}
	return n
}

// steerEnemies 每帧把敌人速度重新指向基地
func (m *Match) steerEnemies() {
	for _, e := range m.Enemies {
		if e.Removed {
			continue
		}
		e.Velocity = steerToward(e.Position, m.Base.Position, e.Speed)
	}
}

func steerToward(from, to models.Vector2D, speed float64) models.Vector2D {
	d := to.Sub(from)
	l := d.Len()
	if l == 0 {
		return models.Vector2D{}
	}
	return models.Vector2D{X: d.X / l * speed, Y: d.Y / l * speed}
}
