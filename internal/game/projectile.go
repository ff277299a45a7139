package game

import (
	"math"

	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

// FanAngles 以瞄准角为中心的扇形角度，相邻间隔 FanSpacing 弧度
func FanAngles(aim float64, shots int) []float64 {
	if shots <= 0 {
		return nil
	}
	angles := make([]float64, shots)
	mid := float64(shots-1) / 2
	for i := range angles {
		angles[i] = aim + (float64(i)-mid)*FanSpacing
	}
	return angles
}

// Shoot 朝目标点发射一组投射物，数量由累计金币决定。
// 冷却中或对局未进行时返回false
func (m *Match) Shoot(target models.Vector2D) bool {
	if m.Status != MatchPlaying {
		return false
	}
	if !m.shoot.try(m.clock.Now()) {
		return false
	}

	origin := m.Player.Position
	aim := math.Atan2(target.Y-origin.Y, target.X-origin.X)
	shots := ShotCount(m.CoinsCollected)

	for _, angle := range FanAngles(aim, shots) {
		p := &models.ProjectileEntity{
			BaseEntity: m.newBase(models.EntityProjectile, origin),
			Damage:     ProjectileDamage,
		}
		p.Velocity = models.Vector2D{
			X: math.Cos(angle) * ProjectileSpeed,
			Y: math.Sin(angle) * ProjectileSpeed,
		}
		m.Projectiles = append(m.Projectiles, p)
	}

	m.emit(models.GameEvent{Type: models.EventProjectilesFired, EntityID: m.Player.ID, Position: origin, Value: shots})
	return true
}
