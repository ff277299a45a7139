package scoreboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

// fileData Scoreboard.json 的内容
type fileData struct {
	Scores []models.ScoreEntry `json:"scores"`
}

// FileStore 把成绩保存在单个JSON文件中
type FileStore struct {
	path       string
	maxEntries int
	mu         sync.Mutex
}

// NewFileStore 创建文件存储
func NewFileStore(path string, maxEntries int) *FileStore {
	if maxEntries <= 0 {
		maxEntries = models.DefaultMaxEntries
	}
	return &FileStore{path: path, maxEntries: maxEntries}
}

// Add 保存成绩
func (s *FileStore) Add(ctx context.Context, entry models.ScoreEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}

	data.Scores = append(data.Scores, entry)
	Rank(data.Scores)
	data.Scores = trimPerGame(data.Scores, s.maxEntries)

	return s.save(data)
}

// List 读取成绩
func (s *FileStore) List(ctx context.Context, game models.GameMode, limit int) ([]models.ScoreEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	data, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	Rank(data.Scores)
	return filterGame(data.Scores, game, limit), nil
}

// load 读取文件，不存在时返回空列表
func (s *FileStore) load() (fileData, error) {
	var data fileData

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return data, fmt.Errorf("读取排行榜文件失败: %w", err)
	}
	if len(raw) == 0 {
		return data, nil
	}

	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("解析排行榜文件失败: %w", err)
	}

	// 旧文件中的条目没有游戏字段
	for i := range data.Scores {
		if data.Scores[i].Game == "" {
			data.Scores[i].Game = models.BaseDefender
		}
	}
	return data, nil
}

// save 写入临时文件后替换
func (s *FileStore) save(data fileData) error {
	if data.Scores == nil {
		data.Scores = []models.ScoreEntry{}
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化排行榜失败: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".scoreboard-*")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("写入排行榜文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("写入排行榜文件失败: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("替换排行榜文件失败: %w", err)
	}
	return nil
}
