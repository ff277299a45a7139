package game

import (
	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

// Attack 近战攻击：对玩家周围 MeleeRange 内的所有存活敌人造成伤害。
// 冷却中或对局未进行时返回false
func (m *Match) Attack() bool {
	if m.Status != MatchPlaying {
		return false
	}
	if !m.melee.try(m.clock.Now()) {
		return false
	}

	origin := m.Player.Position
	m.emit(models.GameEvent{Type: models.EventMeleeSwing, EntityID: m.Player.ID, Position: origin})

	// 遍历快照，击杀不影响本次遍历
	for _, enemy := range m.liveEnemies() {
		if enemy.Position.DistanceTo(origin) >= MeleeRange {
			continue
		}
		if ApplyDamage(enemy, MeleeDamage) {
			m.killEnemy(enemy)
		}
	}

	m.checkWaveCleared()
	return true
}

// projectileHitEnemy 投射物命中敌人，投射物总是被销毁
func (m *Match) projectileHitEnemy(p *models.ProjectileEntity, enemy *models.EnemyEntity) {
	if p == nil || enemy == nil || p.Removed || enemy.Removed {
		return
	}

	p.Remove()
	if ApplyDamage(enemy, p.Damage) {
		m.killEnemy(enemy)
		m.checkWaveCleared()
	}
}

// enemyHitBase 敌人撞上基地后消失并对基地造成伤害
func (m *Match) enemyHitBase(enemy *models.EnemyEntity) {
	if enemy == nil || enemy.Removed {
		return
	}

	enemy.Remove()
	dead := ApplyDamage(m.Base, BaseCollisionDamage)
	m.emit(models.GameEvent{Type: models.EventBaseDamaged, EntityID: m.Base.ID, Position: m.Base.Position, Value: m.Base.Health})
	if dead {
		m.triggerGameOver(CauseBaseDestroyed)
		return
	}
	m.checkWaveCleared()
}

// enemyHitPlayer 敌人撞上玩家后消失并对玩家造成伤害
func (m *Match) enemyHitPlayer(enemy *models.EnemyEntity) {
	if enemy == nil || enemy.Removed {
		return
	}

	enemy.Remove()
	dead := ApplyDamage(m.Player, PlayerCollisionDamage)
	m.emit(models.GameEvent{Type: models.EventPlayerDamaged, EntityID: m.Player.ID, Position: m.Player.Position, Value: m.Player.Health})
	if dead {
		m.triggerGameOver(CausePlayerDestroyed)
		return
	}
	m.checkWaveCleared()
}

// killEnemy 移除敌人并掉落金币，已移除的敌人不会重复掉落
func (m *Match) killEnemy(enemy *models.EnemyEntity) {
	if enemy.Removed {
		return
	}
	enemy.Remove()
	m.emit(models.GameEvent{Type: models.EventEnemyKilled, EntityID: enemy.ID, Position: enemy.Position})
	m.dropCoin(enemy.Position)
}

// checkWaveCleared 场上没有存活敌人时进入下一波
func (m *Match) checkWaveCleared() {
	if m.Status != MatchPlaying {
		return
	}
	if m.ActiveEnemies() == 0 {
		m.Advance()
	}
}

func (m *Match) liveEnemies() []*models.EnemyEntity {
	live := make([]*models.EnemyEntity, 0, len(m.Enemies))
	for _, e := range m.Enemies {
		if !e.Removed {
			live = append(live, e)
		}
	}
	return live
}
