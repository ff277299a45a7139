package models

import (
	"time"
)

// GameMode 游戏模式
type GameMode string

const (
	// BaseDefender 基地防守
	BaseDefender GameMode = "basedefender"
	// Snake 贪吃蛇，只在排行榜中出现
	Snake GameMode = "snake"
)

// Valid 是否为已知模式
func (m GameMode) Valid() bool {
	return m == BaseDefender || m == Snake
}

// RoomStatus 房间状态
type RoomStatus string

const (
	// RoomWaiting 等待中
	RoomWaiting RoomStatus = "waiting"
	// RoomPlaying 游戏中
	RoomPlaying RoomStatus = "playing"
	// RoomEnded 已结束
	RoomEnded RoomStatus = "ended"
)

// RoomInfo 房间概要，用于大厅和状态接口
type RoomInfo struct {
	ID          string     `json:"id" msgpack:"id"`
	Name        string     `json:"name" msgpack:"name"`
	Mode        GameMode   `json:"mode" msgpack:"mode"`
	Status      RoomStatus `json:"status" msgpack:"status"`
	PlayerCount int        `json:"player_count" msgpack:"player_count"`
	MaxPlayers  int        `json:"max_players" msgpack:"max_players"`
	CreatedAt   time.Time  `json:"created_at" msgpack:"created_at"`
	Wave        int        `json:"wave" msgpack:"wave"`
}
