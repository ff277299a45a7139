// Package scoreboard 保存 Base Defender 和 Snake 的成绩，支持文件、PostgreSQL、Redis 三种后端
package scoreboard

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

// ErrInvalidScore 提交的成绩不合法
var ErrInvalidScore = errors.New("无效的成绩数据")

// Store 成绩存储
type Store interface {
	// Add 保存一条成绩，每个游戏只保留前N名
	Add(ctx context.Context, entry models.ScoreEntry) error
	// List 按分数降序返回成绩，game 为空时返回所有游戏
	List(ctx context.Context, game models.GameMode, limit int) ([]models.ScoreEntry, error)
}

// Normalize 校验并规范化一条成绩：名字非空并截断到32个字符，游戏默认为 basedefender
func Normalize(entry models.ScoreEntry, now time.Time) (models.ScoreEntry, error) {
	name := strings.TrimSpace(entry.Name)
	if name == "" {
		return models.ScoreEntry{}, ErrInvalidScore
	}
	if r := []rune(name); len(r) > models.MaxNameLength {
		name = string(r[:models.MaxNameLength])
	}
	if entry.Score < 0 || entry.Wave < 0 {
		return models.ScoreEntry{}, ErrInvalidScore
	}

	if entry.Game == "" {
		entry.Game = models.BaseDefender
	}
	if !entry.Game.Valid() {
		return models.ScoreEntry{}, ErrInvalidScore
	}

	entry.Name = name
	entry.Date = now.UTC()
	return entry, nil
}

// Rank 按分数降序排序，同分时先提交的在前
func Rank(entries []models.ScoreEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Date.Before(entries[j].Date)
	})
}

// trimPerGame 已排序的列表中每个游戏只保留前 limit 条
func trimPerGame(entries []models.ScoreEntry, limit int) []models.ScoreEntry {
	counts := make(map[models.GameMode]int)
	kept := entries[:0]
	for _, e := range entries {
		if counts[e.Game] >= limit {
			continue
		}
		counts[e.Game]++
		kept = append(kept, e)
	}
	return kept
}

// filterGame 过滤游戏并截断数量
func filterGame(entries []models.ScoreEntry, game models.GameMode, limit int) []models.ScoreEntry {
	out := make([]models.ScoreEntry, 0, len(entries))
	for _, e := range entries {
		if game != "" && e.Game != game {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
