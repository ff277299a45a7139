// stats.go

package models

import (
	"time"
)

// 排行榜限制
const (
	// MaxNameLength 名字最大长度(字符)
	MaxNameLength = 32
	// DefaultMaxEntries 每个游戏保留的条目数
	DefaultMaxEntries = 100
)

// ScoreEntry 排行榜条目
type ScoreEntry struct {
	Name     string    `json:"name" msgpack:"name"`
	Score    int       `json:"score" msgpack:"score"`
	Wave     int       `json:"wave" msgpack:"wave"`
	Game     GameMode  `json:"game" msgpack:"game"`
	Date     time.Time `json:"date" msgpack:"date"`
	Verified bool      `json:"verified,omitempty" msgpack:"verified,omitempty"`
}

// MatchResult 对局结算快照
type MatchResult struct {
	Score int    `json:"score" msgpack:"score"`
	Wave  int    `json:"wave" msgpack:"wave"`
	Cause string `json:"cause" msgpack:"cause"`
}
