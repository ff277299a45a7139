package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

// MatchStatus 对局状态
type MatchStatus string

const (
	MatchWaiting  MatchStatus = "waiting"
	MatchPlaying  MatchStatus = "playing"
	MatchPaused   MatchStatus = "paused"
	MatchGameOver MatchStatus = "game_over"
)

// 结束原因
const (
	CauseBaseDestroyed   = "base_destroyed"
	CausePlayerDestroyed = "player_destroyed"
)

// Match 一局守卫基地的完整状态。
// Match 本身不加锁，由 Room 的游戏循环独占访问。
type Match struct {
	ID     string
	Arena  Arena
	Status MatchStatus

	Player      *models.PlayerEntity
	Base        *models.BaseStructure
	Enemies     []*models.EnemyEntity
	Projectiles []*models.ProjectileEntity
	Coins       []*models.CoinEntity

	Wave           int
	CoinsCollected int
	Result         *models.MatchResult
	FrameID        int64

	clock   Clock
	rng     *rand.Rand
	melee   cooldown
	shoot   cooldown
	moveDir models.Vector2D
	inputs  []Input
	events  []models.GameEvent
}

// NewMatch 创建对局，clock 和 rng 为空时使用系统时间和随机种子
func NewMatch(arena Arena, clock Clock, rng *rand.Rand) *Match {
	if clock == nil {
		clock = SystemClock{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	m := &Match{
		ID:    uuid.New().String(),
		Arena: arena,
		clock: clock,
		rng:   rng,
		melee: cooldown{interval: MeleeCooldown},
		shoot: cooldown{interval: ShootCooldown},
	}
	m.reset()
	return m
}

// reset 回到开局前的状态
func (m *Match) reset() {
	m.Status = MatchWaiting
	m.Wave = 1
	m.CoinsCollected = 0
	m.Result = nil
	m.FrameID = 0
	m.Enemies = nil
	m.Projectiles = nil
	m.Coins = nil
	m.inputs = nil
	m.events = nil
	m.moveDir = models.Vector2D{}
	m.melee.reset()
	m.shoot.reset()

	m.Base = &models.BaseStructure{
		BaseEntity: m.newBase(models.EntityBase, m.Arena.Center()),
		Vitals:     models.Vitals{Health: BaseMaxHealth, MaxHealth: BaseMaxHealth},
	}
	m.Player = &models.PlayerEntity{
		BaseEntity: m.newBase(models.EntityPlayer, m.Arena.PlayerSpawn()),
		Vitals:     models.Vitals{Health: PlayerMaxHealth, MaxHealth: PlayerMaxHealth},
	}
}

func (m *Match) newBase(t models.EntityType, at models.Vector2D) models.BaseEntity {
	return models.BaseEntity{
		ID:        uuid.New().String(),
		Type:      t,
		Position:  at,
		CreatedAt: m.clock.Now(),
	}
}

func (m *Match) emit(ev models.GameEvent) {
	m.events = append(m.events, ev)
}

// DrainEvents 取出并清空积累的事件
func (m *Match) DrainEvents() []models.GameEvent {
	events := m.events
	m.events = nil
	return events
}

// Start 开始对局并生成第一波
func (m *Match) Start() bool {
	if m.Status != MatchWaiting {
		return false
	}
	m.Status = MatchPlaying
	m.SpawnWave()
	return true
}

// Restart 重置金币、波次、冷却后重新开始
func (m *Match) Restart() {
	m.reset()
	m.Start()
}

// Pause 暂停对局
func (m *Match) Pause() bool {
	if m.Status != MatchPlaying {
		return false
	}
	m.Status = MatchPaused
	m.inputs = nil
	return true
}

// Resume 恢复对局
func (m *Match) Resume() bool {
	if m.Status != MatchPaused {
		return false
	}
	m.Status = MatchPlaying
	return true
}

// Resize 调整竞技场尺寸，基地回到中心，玩家限制在边界内
func (m *Match) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	m.Arena = Arena{Width: width, Height: height}
	m.Base.Position = m.Arena.Center()
	m.Player.Position = m.Arena.Clamp(m.Player.Position)
}

// Enqueue 记录一次输入，在下一个tick处理。非进行中的对局丢弃输入
func (m *Match) Enqueue(in Input) bool {
	if m.Status != MatchPlaying {
		return false
	}
	m.inputs = append(m.inputs, in)
	return true
}

// IsOver 对局是否已结束
func (m *Match) IsOver() bool {
	return m.Status == MatchGameOver
}

// Tick 推进一帧：输入、移动、碰撞、清理
func (m *Match) Tick(dt float64) {
	if m.Status != MatchPlaying {
		return
	}
	m.FrameID++

	m.applyInputs()
	m.step(dt)

	for _, c := range m.detectCollisions() {
		m.Resolve(c)
		if m.Status != MatchPlaying {
			break
		}
	}

	m.compact()
}

func (m *Match) applyInputs() {
	inputs := m.inputs
	m.inputs = nil

	for _, in := range inputs {
		if m.Status != MatchPlaying {
			return
		}
		switch in.Type {
		case InputMove:
			m.moveDir = in.Move
		case InputAttack:
			m.Attack()
		case InputShoot:
			m.Shoot(in.Target)
		}
	}
}

// Resolve 处理一次碰撞。对局结束后或参与者已移除时不做任何事
func (m *Match) Resolve(c Collision) {
	if m.Status != MatchPlaying {
		return
	}

	switch hit := c.(type) {
	case ProjectileHit:
		m.projectileHitEnemy(hit.Projectile, hit.Enemy)
	case BaseHit:
		m.enemyHitBase(hit.Enemy)
	case PlayerHit:
		m.enemyHitPlayer(hit.Enemy)
	case CoinPickup:
		m.collectCoin(hit.Coin)
	}
}

// triggerGameOver 结束对局，只触发一次
func (m *Match) triggerGameOver(cause string) {
	if m.Status == MatchGameOver {
		return
	}
	m.Status = MatchGameOver
	m.inputs = nil
	m.Result = &models.MatchResult{
		Score: m.CoinsCollected,
		Wave:  m.Wave,
		Cause: cause,
	}
	m.Player.Remove()
	m.Base.Remove()
	m.emit(models.GameEvent{Type: models.EventGameOver, Value: m.CoinsCollected, Result: m.Result})
}

// compact 去掉已移除的实体
func (m *Match) compact() {
	m.Enemies = removeDead(m.Enemies)
	m.Projectiles = removeDead(m.Projectiles)
	m.Coins = removeDead(m.Coins)
}

func removeDead[T models.Entity](list []T) []T {
	kept := list[:0]
	for _, e := range list {
		if !e.IsRemoved() {
			kept = append(kept, e)
		}
	}
	clear(list[len(kept):])
	return kept
}
