package scoreboard

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

const (
	// 排行榜Redis键名前缀，每个游戏一个有序集合
	scoreboardKeyPrefix = "scoreboard:"
	// 已使用的结算凭证
	receiptKeyPrefix = "scoreboard:receipt:"
)

// RedisStore 使用有序集合保存成绩
type RedisStore struct {
	client     *redis.Client
	maxEntries int
}

// NewRedisStore 创建Redis存储
func NewRedisStore(client *redis.Client, maxEntries int) *RedisStore {
	if maxEntries <= 0 {
		maxEntries = models.DefaultMaxEntries
	}
	return &RedisStore{client: client, maxEntries: maxEntries}
}

func scoreboardKey(game models.GameMode) string {
	return scoreboardKeyPrefix + string(game)
}

// encodeMember 成员 = 反转时间戳|条目JSON，同分时按成员倒序即先提交的在前
func encodeMember(entry models.ScoreEntry) (string, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%019d|%s", math.MaxInt64-entry.Date.UnixNano(), data), nil
}

func decodeMember(member string) (models.ScoreEntry, error) {
	var entry models.ScoreEntry
	_, data, ok := strings.Cut(member, "|")
	if !ok {
		return entry, fmt.Errorf("成员格式错误: %q", member)
	}
	err := json.Unmarshal([]byte(data), &entry)
	return entry, err
}

// Add 写入成绩并删除排名之外的成员
func (s *RedisStore) Add(ctx context.Context, entry models.ScoreEntry) error {
	member, err := encodeMember(entry)
	if err != nil {
		return fmt.Errorf("序列化成绩失败: %w", err)
	}

	key := scoreboardKey(entry.Game)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, &redis.Z{Score: float64(entry.Score), Member: member})
		pipe.ZRemRangeByRank(ctx, key, 0, int64(-s.maxEntries-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("保存成绩失败: %w", err)
	}
	return nil
}

// List 查询成绩，game 为空时合并所有游戏
func (s *RedisStore) List(ctx context.Context, game models.GameMode, limit int) ([]models.ScoreEntry, error) {
	if limit <= 0 {
		limit = s.maxEntries
	}

	games := []models.GameMode{game}
	if game == "" {
		games = []models.GameMode{models.BaseDefender, models.Snake}
	}

	var entries []models.ScoreEntry
	for _, g := range games {
		members, err := s.client.ZRevRange(ctx, scoreboardKey(g), 0, int64(limit-1)).Result()
		if err != nil {
			return nil, fmt.Errorf("查询排行榜失败: %w", err)
		}
		for _, m := range members {
			entry, err := decodeMember(m)
			if err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	if len(games) > 1 {
		Rank(entries)
	}
	return filterGame(entries, "", limit), nil
}
