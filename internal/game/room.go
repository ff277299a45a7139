package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jacl-coder/BaseDefender-Server/internal/models"
	"github.com/jacl-coder/BaseDefender-Server/internal/protocol"
)

// 单帧最大时间步长，避免卡顿后实体瞬移
const maxFrameDelta = 100 * time.Millisecond

var (
	// ErrRoomFull 房间已满
	ErrRoomFull = errors.New("房间已满")
	// ErrRoomClosed 房间已关闭
	ErrRoomClosed = errors.New("房间已关闭")
)

// ReceiptIssuer 为结算签发凭证
type ReceiptIssuer interface {
	IssueReceipt(score, wave int, game, roomID string) (string, error)
}

// RoomConfig 房间参数
type RoomConfig struct {
	Name         string
	Arena        Arena
	MaxPlayers   int
	TickInterval time.Duration
	Clock        Clock
	Rand         *rand.Rand
	Receipts     ReceiptIssuer
}

// Room 游戏房间，每个房间运行一局守卫基地
type Room struct {
	ID         string
	Name       string
	Mode       models.GameMode
	MaxPlayers int
	CreatedAt  time.Time

	// 以下字段由 mu 保护
	mu           sync.Mutex
	status       models.RoomStatus
	wave         int
	arena        Arena
	startedAt    time.Time
	endedAt      time.Time
	lastActivity time.Time
	pending      []func(*Match)

	// 玩家管理
	players     map[string]*PlayerConnection
	playerMutex sync.RWMutex

	// 只由游戏循环访问
	match         *Match
	lastFrameTime time.Time
	dirty         bool
	reported      bool

	tickInterval time.Duration
	receipts     ReceiptIssuer

	shutdown  chan struct{}
	stopOnce  sync.Once
	isRunning bool
}

// NewRoom 创建新房间
func NewRoom(cfg RoomConfig) *Room {
	now := time.Now()
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = 1
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 16 * time.Millisecond
	}

	match := NewMatch(cfg.Arena, cfg.Clock, cfg.Rand)
	return &Room{
		ID:           uuid.New().String(),
		Name:         cfg.Name,
		Mode:         models.BaseDefender,
		MaxPlayers:   cfg.MaxPlayers,
		CreatedAt:    now,
		status:       models.RoomWaiting,
		wave:         1,
		arena:        match.Arena,
		lastActivity: now,
		players:      make(map[string]*PlayerConnection),
		match:        match,
		tickInterval: cfg.TickInterval,
		receipts:     cfg.Receipts,
		shutdown:     make(chan struct{}),
	}
}

// Start 启动房间
func (r *Room) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return fmt.Errorf("房间已经在运行")
	}

	log.Printf("房间 %s 启动", r.ID)
	r.isRunning = true
	r.lastFrameTime = time.Now()

	go r.gameLoop()
	return nil
}

// Stop 停止房间，仍在房间内的玩家被移出并收到通知
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		close(r.shutdown)

		r.mu.Lock()
		r.isRunning = false
		r.status = models.RoomEnded
		r.endedAt = time.Now()
		r.pending = nil
		r.mu.Unlock()

		r.playerMutex.Lock()
		players := r.players
		r.players = make(map[string]*PlayerConnection)
		r.playerMutex.Unlock()

		for _, player := range players {
			player.leaveRoom(r)
			player.Send(protocol.MsgError, protocol.ErrorPayload{Code: "room_closed", Message: ErrRoomClosed.Error()})
		}

		log.Printf("房间 %s 已停止", r.ID)
	})
}

// IsClosed 房间是否已停止
func (r *Room) IsClosed() bool {
	select {
	case <-r.shutdown:
		return true
	default:
		return false
	}
}

// AddPlayer 添加玩家到房间
func (r *Room) AddPlayer(conn *PlayerConnection) error {
	r.playerMutex.Lock()
	defer r.playerMutex.Unlock()

	// Stop 先关闭 shutdown 再取走玩家表，持锁检查保证不会漏掉通知
	if r.IsClosed() {
		return ErrRoomClosed
	}

	if _, ok := r.players[conn.ID]; ok {
		return nil
	}
	if len(r.players) >= r.MaxPlayers {
		return ErrRoomFull
	}

	r.players[conn.ID] = conn
	r.touch()
	log.Printf("玩家 %s 加入房间 %s", conn.Name, r.ID)

	// 新玩家需要一帧完整状态
	r.submit(func(*Match) { r.dirty = true })
	return nil
}

// RemovePlayer 从房间移除玩家
func (r *Room) RemovePlayer(connID string) {
	r.playerMutex.Lock()
	defer r.playerMutex.Unlock()

	if _, exists := r.players[connID]; !exists {
		return
	}
	delete(r.players, connID)
	r.touch()

	log.Printf("玩家已离开房间 %s", r.ID)
	if len(r.players) == 0 {
		log.Printf("房间 %s 已空，等待清理", r.ID)
	}
}

// GetPlayerCount 获取玩家数量
func (r *Room) GetPlayerCount() int {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()
	return len(r.players)
}

// IsEmpty 检查房间是否为空
func (r *Room) IsEmpty() bool {
	return r.GetPlayerCount() == 0
}

// Status 房间状态
func (r *Room) Status() models.RoomStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Info 房间概要
func (r *Room) Info() models.RoomInfo {
	r.mu.Lock()
	status, wave := r.status, r.wave
	r.mu.Unlock()

	return models.RoomInfo{
		ID:          r.ID,
		Name:        r.Name,
		Mode:        r.Mode,
		Status:      status,
		PlayerCount: r.GetPlayerCount(),
		MaxPlayers:  r.MaxPlayers,
		CreatedAt:   r.CreatedAt,
		Wave:        wave,
	}
}

// Arena 最近一帧的竞技场尺寸
func (r *Room) Arena() Arena {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.arena
}

// ShouldCleanup 检查房间是否应该被清理
func (r *Room) ShouldCleanup(maxIdle time.Duration) bool {
	empty := r.IsEmpty()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == models.RoomEnded && !r.endedAt.IsZero() && time.Since(r.endedAt) > maxIdle {
		return true
	}
	return empty && time.Since(r.lastActivity) > maxIdle
}

// HandleInput 把一帧客户端输入转换为对局输入事件
func (r *Room) HandleInput(in protocol.PlayerInputPayload) {
	inputs := []Input{{Type: InputMove, Move: models.Vector2D{X: in.MoveX, Y: in.MoveY}}}
	target := models.Vector2D{X: in.TargetX, Y: in.TargetY}
	if in.Attack {
		inputs = append(inputs, Input{Type: InputAttack})
	}
	if in.Shoot {
		inputs = append(inputs, Input{Type: InputShoot, Target: target})
	}

	r.submit(func(m *Match) {
		for _, input := range inputs {
			m.Enqueue(input)
		}
	})
}

// StartMatch 开始对局
func (r *Room) StartMatch() {
	r.submit(func(m *Match) {
		if m.Start() {
			r.setStatus(models.RoomPlaying)
			log.Printf("房间 %s 对局开始", r.ID)
		}
	})
}

// Pause 暂停
func (r *Room) Pause() {
	r.submit(func(m *Match) { m.Pause() })
}

// Resume 恢复
func (r *Room) Resume() {
	r.submit(func(m *Match) { m.Resume() })
}

// Restart 重新开始
func (r *Room) Restart() {
	r.submit(func(m *Match) {
		m.Restart()
		r.reported = false
		r.setStatus(models.RoomPlaying)
		log.Printf("房间 %s 重新开始", r.ID)
	})
}

// Resize 调整竞技场尺寸
func (r *Room) Resize(width, height float64) {
	r.submit(func(m *Match) { m.Resize(width, height) })
}

// submit 命令排队，在下一个tick由游戏循环执行。房间停止后丢弃
func (r *Room) submit(cmd func(*Match)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.IsClosed() {
		return false
	}
	r.pending = append(r.pending, cmd)
	r.lastActivity = time.Now()
	return true
}

func (r *Room) touch() {
	r.mu.Lock()
	r.lastActivity = time.Now()
	r.mu.Unlock()
}

func (r *Room) setStatus(status models.RoomStatus) {
	r.mu.Lock()
	r.status = status
	if status == models.RoomPlaying {
		r.startedAt = time.Now()
		r.endedAt = time.Time{}
	} else if status == models.RoomEnded {
		r.endedAt = time.Now()
	}
	r.mu.Unlock()
}

// gameLoop 游戏主循环
func (r *Room) gameLoop() {
	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			dt := min(now.Sub(r.lastFrameTime), maxFrameDelta)
			r.lastFrameTime = now
			r.update(dt.Seconds())
		case <-r.shutdown:
			return
		}
	}
}

// update 执行排队命令，推进对局并广播
func (r *Room) update(dt float64) {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, cmd := range pending {
		cmd(r.match)
	}
	if len(pending) > 0 {
		r.dirty = true
	}

	r.match.Tick(dt)

	events := r.match.DrainEvents()
	if len(events) > 0 {
		r.broadcast(protocol.MsgEvent, protocol.EventBatch{FrameID: r.match.FrameID, Events: events})
	}
	if r.match.Status == MatchPlaying || r.dirty || len(events) > 0 {
		r.broadcast(protocol.MsgState, r.frame())
		r.dirty = false
	}

	r.mu.Lock()
	r.wave = r.match.Wave
	r.arena = r.match.Arena
	r.mu.Unlock()

	if r.match.IsOver() && !r.reported {
		r.reported = true
		r.reportGameOver()
	}
}

// reportGameOver 广播结算信息
func (r *Room) reportGameOver() {
	r.setStatus(models.RoomEnded)
	result := r.match.Result

	payload := protocol.GameOverPayload{
		Score: result.Score,
		Wave:  result.Wave,
		Cause: result.Cause,
	}
	if r.receipts != nil {
		receipt, err := r.receipts.IssueReceipt(result.Score, result.Wave, string(r.Mode), r.ID)
		if err != nil {
			log.Printf("签发结算凭证失败: %v", err)
		} else {
			payload.Receipt = receipt
		}
	}

	log.Printf("房间 %s 对局结束: 波次 %d, 金币 %d, 原因 %s", r.ID, result.Wave, result.Score, result.Cause)
	r.broadcast(protocol.MsgGameOver, payload)
}

// frame 当前状态帧
func (r *Room) frame() protocol.StateFrame {
	m := r.match
	return protocol.StateFrame{
		FrameID:        m.FrameID,
		Status:         string(m.Status),
		Wave:           m.Wave,
		CoinsCollected: m.CoinsCollected,
		ShotCount:      ShotCount(m.CoinsCollected),
		Player:         protocol.ConvertEntity(m.Player),
		Base:           protocol.ConvertEntity(m.Base),
		Enemies:        protocol.ConvertEntities(m.Enemies),
		Projectiles:    protocol.ConvertEntities(m.Projectiles),
		Pickups:        protocol.ConvertEntities(m.Coins),
	}
}

// broadcast 按每个连接的编解码器发送消息
func (r *Room) broadcast(msgType string, payload any) {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	for _, player := range r.players {
		player.Send(msgType, payload)
	}
}
