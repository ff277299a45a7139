// schema.go

package db

import "fmt"

// CreateAllTablesSQL 创建所有表的SQL语句
const CreateAllTablesSQL = `
-- 排行榜成绩表
CREATE TABLE IF NOT EXISTS scores (
    id SERIAL PRIMARY KEY,
    game VARCHAR(20) NOT NULL DEFAULT 'basedefender',
    name VARCHAR(32) NOT NULL,
    score INT NOT NULL,
    wave INT NOT NULL DEFAULT 0,
    verified BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);

-- 按游戏取前N名
CREATE INDEX IF NOT EXISTS idx_scores_game_score ON scores(game, score DESC, created_at);

-- 已使用的结算凭证
CREATE TABLE IF NOT EXISTS used_receipts (
    id VARCHAR(64) PRIMARY KEY,
    expires_at TIMESTAMP WITH TIME ZONE NOT NULL
);
`

// DropAllTablesSQL 删除所有表
const DropAllTablesSQL = `
DROP TABLE IF EXISTS used_receipts CASCADE;
DROP TABLE IF EXISTS scores CASCADE;
`

// InitAllTables 初始化所有数据库表
func InitAllTables() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}
	if _, err := DB.Exec(CreateAllTablesSQL); err != nil {
		return fmt.Errorf("创建表失败: %w", err)
	}
	return nil
}

// DropAllTables 删除所有数据库表
func DropAllTables() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}
	if _, err := DB.Exec(DropAllTablesSQL); err != nil {
		return fmt.Errorf("删除表失败: %w", err)
	}
	return nil
}
