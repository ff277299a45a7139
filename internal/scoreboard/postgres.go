package scoreboard

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

// PostgresStore 使用 scores 表保存成绩
type PostgresStore struct {
	db         *sql.DB
	maxEntries int
}

// NewPostgresStore 创建PostgreSQL存储，表结构见 db.CreateAllTablesSQL
func NewPostgresStore(db *sql.DB, maxEntries int) *PostgresStore {
	if maxEntries <= 0 {
		maxEntries = models.DefaultMaxEntries
	}
	return &PostgresStore{db: db, maxEntries: maxEntries}
}

// Add 插入成绩并删除排名之外的记录
func (s *PostgresStore) Add(ctx context.Context, entry models.ScoreEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scores (game, name, score, wave, verified, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(entry.Game), entry.Name, entry.Score, entry.Wave, entry.Verified, entry.Date,
	)
	if err != nil {
		return fmt.Errorf("保存成绩失败: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM scores
		WHERE game = $1 AND id NOT IN (
			SELECT id FROM scores WHERE game = $1
			ORDER BY score DESC, created_at ASC, id ASC
			LIMIT $2
		)`, string(entry.Game), s.maxEntries)
	if err != nil {
		return fmt.Errorf("清理排行榜失败: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// List 查询成绩
func (s *PostgresStore) List(ctx context.Context, game models.GameMode, limit int) ([]models.ScoreEntry, error) {
	if limit <= 0 {
		limit = s.maxEntries
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, score, wave, game, verified, created_at
		FROM scores
		WHERE ($1 = '' OR game = $1)
		ORDER BY score DESC, created_at ASC, id ASC
		LIMIT $2`, string(game), limit)
	if err != nil {
		return nil, fmt.Errorf("查询排行榜失败: %w", err)
	}
	defer rows.Close()

	entries := make([]models.ScoreEntry, 0, limit)
	for rows.Next() {
		var e models.ScoreEntry
		var g string
		if err := rows.Scan(&e.Name, &e.Score, &e.Wave, &g, &e.Verified, &e.Date); err != nil {
			return nil, fmt.Errorf("读取排行榜失败: %w", err)
		}
		e.Game = models.GameMode(g)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("读取排行榜失败: %w", err)
	}
	return entries, nil
}
