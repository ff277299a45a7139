// websocket.go

package game

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jacl-coder/BaseDefender-Server/internal/protocol"
)

const (
	// 写入超时时间
	writeWait = 10 * time.Second

	// 读取超时时间
	pongWait = 60 * time.Second

	// 发送 ping 的间隔时间
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 允许所有跨域请求
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWSConnection 处理WebSocket连接
func (s *GameServer) handleWSConnection(w http.ResponseWriter, r *http.Request) {
	claims, err := s.tokens.ParseSession(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "未授权", http.StatusUnauthorized)
		return
	}

	codec, err := protocol.CodecByName(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket升级失败: %v", err)
		return
	}

	player := NewPlayerConnection(uuid.New().String(), claims.PlayerID, claims.Name, codec)

	s.connMutex.Lock()
	s.connections[player.ID] = player
	s.connMutex.Unlock()

	log.Printf("玩家 %s(%s) 已连接, 编码: %s", player.Name, player.PlayerID, codec.Name())

	go s.readPump(conn, player)
	go s.writePump(conn, player)
}

// readPump 从WebSocket读取数据
func (s *GameServer) readPump(conn *websocket.Conn, player *PlayerConnection) {
	defer func() {
		s.closeConnection(player)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket错误: %v", err)
			}
			break
		}

		s.handleMessage(player, message)
	}
}

// writePump 向WebSocket写入数据，每条消息一帧
func (s *GameServer) writePump(conn *websocket.Conn, player *PlayerConnection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	frameType := websocket.TextMessage
	if player.Codec.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case message, ok := <-player.Outbox():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(frameType, message); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection 关闭玩家连接
func (s *GameServer) closeConnection(player *PlayerConnection) {
	s.connMutex.Lock()
	defer s.connMutex.Unlock()

	if _, ok := s.connections[player.ID]; !ok {
		return
	}

	if room := player.setRoom(nil); room != nil {
		room.RemovePlayer(player.ID)
	}
	player.close()
	delete(s.connections, player.ID)

	log.Printf("玩家 %s 已断开连接", player.PlayerID)
}

// handleMessage 处理接收到的消息
func (s *GameServer) handleMessage(player *PlayerConnection, data []byte) {
	msg, err := player.Codec.Decode(data)
	if err != nil {
		log.Printf("解析消息失败: %v", err)
		s.sendError(player, "bad_message", "无法解析消息")
		return
	}

	switch msg.Type {
	case protocol.MsgCreateRoom:
		s.handleCreateRoom(player, msg.Payload)
	case protocol.MsgJoinRoom:
		s.handleJoinRoom(player, msg.Payload)
	case protocol.MsgLeaveRoom:
		s.handleLeaveRoom(player)
	case protocol.MsgStart:
		s.withRoom(player, (*Room).StartMatch)
	case protocol.MsgPause:
		s.withRoom(player, (*Room).Pause)
	case protocol.MsgResume:
		s.withRoom(player, (*Room).Resume)
	case protocol.MsgRestart:
		s.withRoom(player, (*Room).Restart)
	case protocol.MsgPlayerInput:
		var in protocol.PlayerInputPayload
		if !s.decodePayload(player, msg.Payload, &in) {
			return
		}
		s.withRoom(player, func(r *Room) { r.HandleInput(in) })
	case protocol.MsgResize:
		var size protocol.ResizePayload
		if !s.decodePayload(player, msg.Payload, &size) {
			return
		}
		s.withRoom(player, func(r *Room) { r.Resize(size.Width, size.Height) })
	default:
		log.Printf("未知消息类型: %s", msg.Type)
		s.sendError(player, "unknown_message", "未知消息类型: "+msg.Type)
	}
}

// handleCreateRoom 创建房间并加入
func (s *GameServer) handleCreateRoom(player *PlayerConnection, payload json.RawMessage) {
	var req protocol.CreateRoomPayload
	if len(payload) > 0 && !s.decodePayload(player, payload, &req) {
		return
	}
	if req.Name == "" {
		req.Name = player.Name
	}

	room, err := s.CreateRoom(req.Name, Arena{Width: req.Width, Height: req.Height})
	if err != nil {
		s.sendError(player, "create_failed", err.Error())
		return
	}
	s.joinRoom(player, room)
}

// handleJoinRoom 加入已有房间
func (s *GameServer) handleJoinRoom(player *PlayerConnection, payload json.RawMessage) {
	var req protocol.JoinRoomPayload
	if !s.decodePayload(player, payload, &req) {
		return
	}

	room, ok := s.GetRoom(req.RoomID)
	if !ok {
		s.sendError(player, "room_not_found", "房间不存在")
		return
	}
	s.joinRoom(player, room)
}

func (s *GameServer) joinRoom(player *PlayerConnection, room *Room) {
	if err := room.AddPlayer(player); err != nil {
		code := "join_failed"
		if errors.Is(err, ErrRoomFull) {
			code = "room_full"
		}
		s.sendError(player, code, err.Error())
		return
	}

	if prev := player.setRoom(room); prev != nil && prev != room {
		prev.RemovePlayer(player.ID)
	}

	arena := room.Arena()
	player.Send(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		Room:     room.Info(),
		PlayerID: player.PlayerID,
		Width:    arena.Width,
		Height:   arena.Height,
	})
}

// handleLeaveRoom 处理离开房间请求
func (s *GameServer) handleLeaveRoom(player *PlayerConnection) {
	if room := player.setRoom(nil); room != nil {
		room.RemovePlayer(player.ID)
		player.Send(protocol.MsgRoomLeft, nil)
	}
}

// withRoom 对玩家所在房间执行操作
func (s *GameServer) withRoom(player *PlayerConnection, fn func(*Room)) {
	room := player.Room()
	if room == nil {
		s.sendError(player, "not_in_room", "尚未加入房间")
		return
	}
	if room.IsClosed() {
		player.leaveRoom(room)
		s.sendError(player, "room_closed", ErrRoomClosed.Error())
		return
	}
	fn(room)
}

func (s *GameServer) decodePayload(player *PlayerConnection, payload json.RawMessage, v any) bool {
	if err := json.Unmarshal(payload, v); err != nil {
		s.sendError(player, "bad_payload", "无效的消息内容")
		return false
	}
	return true
}

func (s *GameServer) sendError(player *PlayerConnection, code, message string) {
	player.Send(protocol.MsgError, protocol.ErrorPayload{Code: code, Message: message})
}
