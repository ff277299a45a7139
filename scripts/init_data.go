//go:build ignore

// init_data.go

package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/jacl-coder/BaseDefender-Server/config"
	"github.com/jacl-coder/BaseDefender-Server/internal/models"
	"github.com/jacl-coder/BaseDefender-Server/internal/scoreboard"
	"github.com/jacl-coder/BaseDefender-Server/pkg/db"
)

// 示例成绩
var sampleScores = []models.ScoreEntry{
	{Name: "Alice", Score: 42, Wave: 7, Game: models.BaseDefender},
	{Name: "Bob", Score: 35, Wave: 6, Game: models.BaseDefender},
	{Name: "Carol", Score: 18, Wave: 4, Game: models.BaseDefender},
	{Name: "Dave", Score: 9, Wave: 2, Game: models.BaseDefender},
	{Name: "Eve", Score: 120, Wave: 1, Game: models.Snake},
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	cfg := config.GlobalConfig

	var store scoreboard.Store
	switch cfg.Scoreboard.Backend {
	case config.BackendPostgres:
		if err := db.InitPostgres(); err != nil {
			log.Fatalf("初始化PostgreSQL失败: %v", err)
		}
		defer db.Close()
		if err := db.InitAllTables(); err != nil {
			log.Fatalf("初始化数据库表失败: %v", err)
		}
		store = scoreboard.NewPostgresStore(db.DB, cfg.Scoreboard.MaxEntries)
	case config.BackendRedis:
		if err := db.InitRedis(); err != nil {
			log.Fatalf("初始化Redis失败: %v", err)
		}
		defer db.CloseRedis()
		store = scoreboard.NewRedisStore(db.RedisClient, cfg.Scoreboard.MaxEntries)
	default:
		store = scoreboard.NewFileStore(cfg.Scoreboard.File, cfg.Scoreboard.MaxEntries)
	}

	ctx := context.Background()
	now := time.Now()
	for i, entry := range sampleScores {
		entry, err := scoreboard.Normalize(entry, now.Add(-time.Duration(len(sampleScores)-i)*time.Minute))
		if err != nil {
			log.Fatalf("示例成绩无效: %v", err)
		}
		if err := store.Add(ctx, entry); err != nil {
			log.Fatalf("写入示例成绩失败: %v", err)
		}
	}

	log.Printf("已写入 %d 条示例成绩 (%s)", len(sampleScores), cfg.Scoreboard.Backend)
}
