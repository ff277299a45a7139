package game

import (
	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

// InputType 玩家输入类型
type InputType string

const (
	// InputMove 设置移动方向
	InputMove InputType = "move"
	// InputAttack 近战攻击(E)
	InputAttack InputType = "attack"
	// InputShoot 射击(空格)，朝目标点
	InputShoot InputType = "shoot"
)

// Input 一次输入事件，在下一个tick统一处理
type Input struct {
	Type   InputType
	Move   models.Vector2D
	Target models.Vector2D
}

// Collision 碰撞事件，由竞技场或外部物理层给出，参与者角色在类型中明确
type Collision interface {
	collision()
}

// ProjectileHit 投射物命中敌人
type ProjectileHit struct {
	Projectile *models.ProjectileEntity
	Enemy      *models.EnemyEntity
}

// BaseHit 敌人撞到基地
type BaseHit struct {
	Enemy *models.EnemyEntity
}

// PlayerHit 敌人撞到玩家
type PlayerHit struct {
	Enemy *models.EnemyEntity
}

// CoinPickup 玩家碰到金币
type CoinPickup struct {
	Coin *models.CoinEntity
}

func (ProjectileHit) collision() {}
func (BaseHit) collision()       {}
func (PlayerHit) collision()     {}
func (CoinPickup) collision()    {}
