// entity.go

package models

import (
	"math"
	"time"
)

// Vector2D 二维向量
type Vector2D struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Sub 向量相减
func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{X: v.X - o.X, Y: v.Y - o.Y}
}

// Len 向量长度
func (v Vector2D) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// DistanceTo 两点距离
func (v Vector2D) DistanceTo(o Vector2D) float64 {
	return v.Sub(o).Len()
}

// EntityType 实体类型
type EntityType string

const (
	// EntityPlayer 玩家实体
	EntityPlayer EntityType = "player"
	// EntityBase 基地实体
	EntityBase EntityType = "base"
	// EntityEnemy 敌人实体
	EntityEnemy EntityType = "enemy"
	// EntityProjectile 投射物实体
	EntityProjectile EntityType = "projectile"
	// EntityCoin 金币拾取物
	EntityCoin EntityType = "coin"
)

// Entity 游戏实体基础接口
type Entity interface {
	GetID() string
	GetType() EntityType
	GetPosition() Vector2D
	GetVelocity() Vector2D
	IsRemoved() bool
}

// BaseEntity 基础实体结构
type BaseEntity struct {
	ID        string     `json:"id"`
	Type      EntityType `json:"type"`
	Position  Vector2D   `json:"position"`
	Velocity  Vector2D   `json:"velocity"`
	CreatedAt time.Time  `json:"created_at"`

	// Removed 实体已被移除，之后的碰撞事件全部忽略
	Removed bool `json:"-"`
}

// GetID 获取实体ID
func (e *BaseEntity) GetID() string {
	return e.ID
}

// GetType 获取实体类型
func (e *BaseEntity) GetType() EntityType {
	return e.Type
}

// GetPosition 获取实体位置
func (e *BaseEntity) GetPosition() Vector2D {
	return e.Position
}

// GetVelocity 获取实体速度
func (e *BaseEntity) GetVelocity() Vector2D {
	return e.Velocity
}

// IsRemoved 实体是否已移除
func (e *BaseEntity) IsRemoved() bool {
	return e.Removed
}

// Remove 标记移除
func (e *BaseEntity) Remove() {
	e.Removed = true
	e.Velocity = Vector2D{}
}

// Vitals 生命值
type Vitals struct {
	Health    int `json:"health"`
	MaxHealth int `json:"max_health"`
}

// TakeDamage 扣除生命值，返回是否死亡。负数伤害按0处理
func (v *Vitals) TakeDamage(amount int) bool {
	if amount > 0 {
		v.Health -= amount
	}
	return v.Health <= 0
}

// HP 当前生命值
func (v *Vitals) HP() int {
	return v.Health
}

// MaxHP 最大生命值
func (v *Vitals) MaxHP() int {
	return v.MaxHealth
}

// PlayerEntity 玩家实体
type PlayerEntity struct {
	BaseEntity
	Vitals
	Name string `json:"name"`
}

// BaseStructure 需要保卫的基地
type BaseStructure struct {
	BaseEntity
	Vitals
}

// EnemyEntity 敌人实体
type EnemyEntity struct {
	BaseEntity
	Vitals
	Speed float64 `json:"speed"`
	// Wave 生成时所属波次
	Wave int `json:"wave"`
}

// ProjectileEntity 投射物实体
type ProjectileEntity struct {
	BaseEntity
	Damage int `json:"damage"`
}

// CoinEntity 金币
type CoinEntity struct {
	BaseEntity
}
