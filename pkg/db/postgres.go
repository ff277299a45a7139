package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/jacl-coder/BaseDefender-Server/config"
	_ "github.com/lib/pq"
)

var (
	// DB 全局数据库连接实例
	DB *sql.DB
)

// OpenPostgres 打开PostgreSQL连接池并检查连通性
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	conn, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 排行榜只有少量短事务
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("数据库Ping失败: %w", err)
	}

	return conn, nil
}

// InitPostgres 按全局配置初始化 DB
func InitPostgres() error {
	conn, err := OpenPostgres(context.Background(), config.GlobalConfig.Database)
	if err != nil {
		return err
	}
	DB = conn

	log.Printf("成功连接到PostgreSQL数据库: %s:%d/%s",
		config.GlobalConfig.Database.Host, config.GlobalConfig.Database.Port, config.GlobalConfig.Database.DBName)
	return nil
}

// Close 关闭数据库连接
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
		log.Println("数据库连接已关闭")
	}
}
