//go:build ignore

// db_manager.go

package main

import (
	"flag"
	"log"

	"github.com/jacl-coder/BaseDefender-Server/config"
	"github.com/jacl-coder/BaseDefender-Server/pkg/db"
)

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	action := flag.String("action", "help", "操作类型: reset, init, help")
	flag.Parse()

	if *action == "help" {
		showHelp()
		return
	}

	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	if err := db.InitPostgres(); err != nil {
		log.Fatalf("初始化PostgreSQL失败: %v", err)
	}
	defer db.Close()

	switch *action {
	case "reset":
		log.Println("正在删除排行榜表...")
		if err := db.DropAllTables(); err != nil {
			log.Fatalf("重置数据库失败: %v", err)
		}
		log.Println("数据库重置完成")
	case "init":
		if err := db.InitAllTables(); err != nil {
			log.Fatalf("初始化数据库表失败: %v", err)
		}
		log.Println("数据库初始化完成，已创建表: scores")
	default:
		log.Fatalf("未知操作: %s", *action)
	}
}

// showHelp 显示帮助信息
func showHelp() {
	log.Println("BaseDefender 数据库管理工具")
	log.Println("")
	log.Println("用法:")
	log.Println("  go run scripts/db_manager.go -action=<操作> [-config=<配置文件>]")
	log.Println("")
	log.Println("操作:")
	log.Println("  reset  - 删除排行榜表和数据")
	log.Println("  init   - 创建排行榜表")
	log.Println("  help   - 显示此帮助信息")
}
