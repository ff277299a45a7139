package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/jacl-coder/BaseDefender-Server/config"
	"github.com/jacl-coder/BaseDefender-Server/internal/models"
	"github.com/jacl-coder/BaseDefender-Server/internal/protocol"
	"github.com/jacl-coder/BaseDefender-Server/pkg/auth"
)

// ErrTooManyRooms 房间数达到上限
var ErrTooManyRooms = errors.New("房间数量已达上限")

// GameServer 游戏服务器
type GameServer struct {
	config      *config.Config
	tokens      *auth.Manager
	rooms       map[string]*Room
	roomsMutex  sync.RWMutex
	httpServer  *http.Server
	connections map[string]*PlayerConnection
	connMutex   sync.RWMutex

	// 关闭信号
	shutdown  chan struct{}
	isRunning bool
}

// PlayerConnection 玩家连接
type PlayerConnection struct {
	ID       string
	PlayerID string
	Name     string
	Codec    protocol.Codec

	send   chan []byte
	mu     sync.Mutex
	room   *Room
	closed bool
}

// NewPlayerConnection 创建玩家连接
func NewPlayerConnection(id, playerID, name string, codec protocol.Codec) *PlayerConnection {
	return &PlayerConnection{
		ID:       id,
		PlayerID: playerID,
		Name:     name,
		Codec:    codec,
		send:     make(chan []byte, 256),
	}
}

// Send 编码并放入发送队列，队列已满时丢弃
func (c *PlayerConnection) Send(msgType string, payload any) bool {
	data, err := c.Codec.Encode(msgType, payload)
	if err != nil {
		log.Printf("序列化消息失败: %v", err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Outbox 待发送的消息
func (c *PlayerConnection) Outbox() <-chan []byte {
	return c.send
}

// Room 当前所在房间
func (c *PlayerConnection) Room() *Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *PlayerConnection) setRoom(room *Room) *Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.room
	c.room = room
	return prev
}

// leaveRoom 仅当当前房间是 room 时清空
func (c *PlayerConnection) leaveRoom(room *Room) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room == room {
		c.room = nil
	}
}

// close 关闭发送队列，只生效一次
func (c *PlayerConnection) close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.closed = true
	close(c.send)
	return true
}

// NewGameServer 创建新的游戏服务器
func NewGameServer(cfg *config.Config, tokens *auth.Manager) *GameServer {
	return &GameServer{
		config:      cfg,
		tokens:      tokens,
		rooms:       make(map[string]*Room),
		connections: make(map[string]*PlayerConnection),
		shutdown:    make(chan struct{}),
	}
}

// Start 启动游戏服务器
func (s *GameServer) Start() error {
	if s.isRunning {
		return fmt.Errorf("服务器已经在运行")
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.GamePort),
		Handler: s.Handler(),
	}

	go func() {
		log.Printf("游戏服务器启动，监听端口: %d", s.config.Server.GamePort)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP服务器错误: %v", err)
		}
	}()

	go s.roomManager()

	s.isRunning = true
	return nil
}

// Stop 停止游戏服务器
func (s *GameServer) Stop() error {
	if !s.isRunning {
		return nil
	}

	close(s.shutdown)

	s.roomsMutex.Lock()
	for _, room := range s.rooms {
		room.Stop()
	}
	s.roomsMutex.Unlock()

	s.connMutex.Lock()
	for _, conn := range s.connections {
		conn.close()
	}
	s.connMutex.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP服务器关闭错误: %w", err)
	}

	s.isRunning = false
	log.Println("游戏服务器已停止")
	return nil
}

// Handler 创建HTTP处理器
func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket 连接端点
	mux.HandleFunc("/ws", s.handleWSConnection)

	// 房间列表和创建
	mux.HandleFunc("/rooms", s.handleRooms)

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}

// roomManager 房间管理器
func (s *GameServer) roomManager() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupRooms()
		case <-s.shutdown:
			return
		}
	}
}

// cleanupRooms 清理空闲房间
func (s *GameServer) cleanupRooms() {
	s.roomsMutex.Lock()
	defer s.roomsMutex.Unlock()

	for id, room := range s.rooms {
		if room.ShouldCleanup(s.config.Game.MaxIdle) {
			log.Printf("清理空闲房间: %s", id)
			room.Stop()
			delete(s.rooms, id)
		}
	}
}

// defaultArena 配置中的竞技场尺寸
func (s *GameServer) defaultArena() Arena {
	return Arena{Width: s.config.Game.ArenaWidth, Height: s.config.Game.ArenaHeight}
}

// CreateRoom 创建并启动游戏房间，尺寸非法时使用默认值
func (s *GameServer) CreateRoom(name string, arena Arena) (*Room, error) {
	if arena.Width <= 0 || arena.Height <= 0 {
		arena = s.defaultArena()
	}

	s.roomsMutex.Lock()
	defer s.roomsMutex.Unlock()

	if limit := s.config.Server.MaxRoomCount; limit > 0 && len(s.rooms) >= limit {
		return nil, ErrTooManyRooms
	}

	cfg := RoomConfig{
		Name:         name,
		Arena:        arena,
		MaxPlayers:   1,
		TickInterval: s.config.Game.TickInterval,
	}
	if s.tokens != nil {
		cfg.Receipts = s.tokens
	}
	room := NewRoom(cfg)
	s.rooms[room.ID] = room

	if err := room.Start(); err != nil {
		delete(s.rooms, room.ID)
		return nil, fmt.Errorf("启动房间失败: %w", err)
	}

	log.Printf("创建房间: %s, 名称: %s, 尺寸: %.0fx%.0f", room.ID, name, arena.Width, arena.Height)
	return room, nil
}

// CreateSoloRoom 为大厅创建单人房间
func (s *GameServer) CreateSoloRoom(ctx context.Context, name string) (models.RoomInfo, error) {
	if err := ctx.Err(); err != nil {
		return models.RoomInfo{}, err
	}
	room, err := s.CreateRoom(name, Arena{})
	if err != nil {
		return models.RoomInfo{}, err
	}
	return room.Info(), nil
}

// GetRoom 获取房间
func (s *GameServer) GetRoom(roomID string) (*Room, bool) {
	s.roomsMutex.RLock()
	defer s.roomsMutex.RUnlock()

	room, exists := s.rooms[roomID]
	return room, exists
}

// ListRooms 列出所有房间
func (s *GameServer) ListRooms() []*Room {
	s.roomsMutex.RLock()
	defer s.roomsMutex.RUnlock()

	rooms := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}

	return rooms
}

// RoomInfos 所有房间的概要
func (s *GameServer) RoomInfos(ctx context.Context) ([]models.RoomInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rooms := s.ListRooms()
	infos := make([]models.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		infos = append(infos, room.Info())
	}
	return infos, nil
}

// RoomCount 房间数量
func (s *GameServer) RoomCount() int {
	s.roomsMutex.RLock()
	defer s.roomsMutex.RUnlock()
	return len(s.rooms)
}

// handleRooms GET 列出房间，POST 创建单人房间
func (s *GameServer) handleRooms(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		infos, err := s.RoomInfos(r.Context())
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, protocol.ErrorPayload{Code: "canceled", Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, infos)
	case http.MethodPost:
		var req protocol.CreateRoomPayload
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, protocol.ErrorPayload{Code: "bad_request", Message: "无效的请求数据"})
				return
			}
		}
		room, err := s.CreateRoom(req.Name, Arena{Width: req.Width, Height: req.Height})
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrTooManyRooms) {
				status = http.StatusServiceUnavailable
			}
			writeJSON(w, status, protocol.ErrorPayload{Code: "create_failed", Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusCreated, room.Info())
	default:
		http.Error(w, "不支持的方法", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("写入响应失败: %v", err)
	}
}
