package game

// Damageable 可受伤实体：玩家、基地、敌人
type Damageable interface {
	TakeDamage(amount int) bool
	HP() int
	MaxHP() int
}

// ApplyDamage 扣血并返回是否死亡(hp <= 0)。
// 不把生命值截断到0，死亡后的处理由调用方决定。
func ApplyDamage(target Damageable, amount int) bool {
	if target == nil {
		return false
	}
	return target.TakeDamage(amount)
}
