package protocol

import (
	"encoding/json"

	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

// 客户端 -> 服务器
const (
	MsgCreateRoom  = "create_room"
	MsgJoinRoom    = "join_room"
	MsgLeaveRoom   = "leave_room"
	MsgStart       = "start"
	MsgPlayerInput = "player_input"
	MsgPause       = "pause"
	MsgResume      = "resume"
	MsgRestart     = "restart"
	MsgResize      = "resize"
)

// 服务器 -> 客户端
const (
	MsgRoomJoined = "room_joined"
	MsgRoomLeft   = "room_left"
	MsgState      = "state"
	MsgEvent      = "event"
	MsgGameOver   = "game_over"
	MsgError      = "error"
)

// Message 解码后的消息，payload 统一保留为JSON
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Envelope 发送用的消息外壳
type Envelope struct {
	Type    string `json:"type" msgpack:"type"`
	Payload any    `json:"payload,omitempty" msgpack:"payload,omitempty"`
}

// CreateRoomPayload 创建房间
type CreateRoomPayload struct {
	Name   string  `json:"name" msgpack:"name"`
	Width  float64 `json:"width" msgpack:"width"`
	Height float64 `json:"height" msgpack:"height"`
}

// JoinRoomPayload 加入房间
type JoinRoomPayload struct {
	RoomID string `json:"room_id" msgpack:"room_id"`
}

// PlayerInputPayload 一帧内的玩家输入
type PlayerInputPayload struct {
	MoveX   float64 `json:"move_x" msgpack:"move_x"`
	MoveY   float64 `json:"move_y" msgpack:"move_y"`
	Attack  bool    `json:"attack" msgpack:"attack"`
	Shoot   bool    `json:"shoot" msgpack:"shoot"`
	TargetX float64 `json:"target_x" msgpack:"target_x"`
	TargetY float64 `json:"target_y" msgpack:"target_y"`
}

// ResizePayload 调整竞技场尺寸
type ResizePayload struct {
	Width  float64 `json:"width" msgpack:"width"`
	Height float64 `json:"height" msgpack:"height"`
}

// RoomJoinedPayload 加入房间成功
type RoomJoinedPayload struct {
	Room     models.RoomInfo `json:"room" msgpack:"room"`
	PlayerID string          `json:"player_id" msgpack:"player_id"`
	Width    float64         `json:"width" msgpack:"width"`
	Height   float64         `json:"height" msgpack:"height"`
}

// EventBatch 一帧内产生的事件
type EventBatch struct {
	FrameID int64              `json:"frame_id" msgpack:"frame_id"`
	Events  []models.GameEvent `json:"events" msgpack:"events"`
}

// GameOverPayload 结算信息，receipt 可用于提交排行榜
type GameOverPayload struct {
	Score   int    `json:"score" msgpack:"score"`
	Wave    int    `json:"wave" msgpack:"wave"`
	Cause   string `json:"cause" msgpack:"cause"`
	Receipt string `json:"receipt,omitempty" msgpack:"receipt,omitempty"`
}

// ErrorPayload 错误信息
type ErrorPayload struct {
	Code    string `json:"code" msgpack:"code"`
	Message string `json:"message" msgpack:"message"`
}
