// main.go

package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacl-coder/BaseDefender-Server/config"
	"github.com/jacl-coder/BaseDefender-Server/internal/game"
	"github.com/jacl-coder/BaseDefender-Server/internal/gateway"
	"github.com/jacl-coder/BaseDefender-Server/internal/match"
	"github.com/jacl-coder/BaseDefender-Server/internal/scoreboard"
	"github.com/jacl-coder/BaseDefender-Server/pkg/auth"
	"github.com/jacl-coder/BaseDefender-Server/pkg/db"
)

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	serviceType := flag.String("service", "all", "服务类型 (game, match, gateway, all)")
	flag.Parse()

	// 加载配置，文件不存在时使用默认值
	if err := config.LoadConfig(*configPath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Fatalf("加载配置失败: %v", err)
		}
		log.Printf("配置文件 %s 不存在，使用默认配置", *configPath)
		config.GlobalConfig = config.Default()
	}
	cfg := &config.GlobalConfig

	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	var stops []func()
	switch *serviceType {
	case "game":
		stops = append(stops, startGameServer(cfg, tokens))
	case "match":
		stops = append(stops, startMatchServer(cfg, match.NewRemoteRooms(fmt.Sprintf("http://localhost:%d", cfg.Server.GamePort))))
	case "gateway":
		stops = append(stops, startGatewayServer(cfg, tokens))
	case "all":
		stops = startAllServices(cfg, tokens)
	default:
		log.Fatalf("未知的服务类型: %s", *serviceType)
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("接收到关闭信号，正在关闭服务器...")
	for i := len(stops) - 1; i >= 0; i-- {
		stops[i]()
	}
	db.Close()
	db.CloseRedis()
	log.Println("服务器已安全关闭")
}

// openScoreboard 按配置选择排行榜存储
func openScoreboard(cfg *config.Config) scoreboard.Store {
	switch cfg.Scoreboard.Backend {
	case config.BackendPostgres:
		if err := db.InitPostgres(); err != nil {
			log.Fatalf("初始化PostgreSQL失败: %v", err)
		}
		if err := db.InitAllTables(); err != nil {
			log.Fatalf("初始化数据库表失败: %v", err)
		}
		return scoreboard.NewPostgresStore(db.DB, cfg.Scoreboard.MaxEntries)
	case config.BackendRedis:
		if err := db.InitRedis(); err != nil {
			log.Fatalf("初始化Redis失败: %v", err)
		}
		return scoreboard.NewRedisStore(db.RedisClient, cfg.Scoreboard.MaxEntries)
	default:
		log.Printf("排行榜使用文件存储: %s", cfg.Scoreboard.File)
		return scoreboard.NewFileStore(cfg.Scoreboard.File, cfg.Scoreboard.MaxEntries)
	}
}

// startGameServer 启动游戏服务器
func startGameServer(cfg *config.Config, tokens *auth.Manager) func() {
	server := game.NewGameServer(cfg, tokens)
	if err := server.Start(); err != nil {
		log.Fatalf("启动游戏服务器失败: %v", err)
	}
	return func() {
		if err := server.Stop(); err != nil {
			log.Printf("停止游戏服务器失败: %v", err)
		}
	}
}

// startMatchServer 启动大厅服务
func startMatchServer(cfg *config.Config, rooms match.RoomProvider) func() {
	matchService := match.NewMatchService(cfg, rooms)
	if err := matchService.Start(); err != nil {
		log.Fatalf("启动大厅服务失败: %v", err)
	}
	return matchService.Stop
}

// startGatewayServer 启动网关服务器
func startGatewayServer(cfg *config.Config, tokens *auth.Manager) func() {
	gatewayServer := gateway.NewGateway(cfg, openScoreboard(cfg), tokens)
	if err := gatewayServer.Start(); err != nil {
		log.Fatalf("启动网关服务失败: %v", err)
	}
	return func() {
		if err := gatewayServer.Stop(); err != nil {
			log.Printf("停止网关失败: %v", err)
		}
	}
}

// startAllServices 在同一进程启动所有服务，大厅直接使用本地游戏服务器
func startAllServices(cfg *config.Config, tokens *auth.Manager) []func() {
	gameServer := game.NewGameServer(cfg, tokens)
	if err := gameServer.Start(); err != nil {
		log.Fatalf("启动游戏服务器失败: %v", err)
	}
	stopGame := func() {
		if err := gameServer.Stop(); err != nil {
			log.Printf("停止游戏服务器失败: %v", err)
		}
	}

	stops := []func(){
		stopGame,
		startMatchServer(cfg, gameServer),
		startGatewayServer(cfg, tokens),
	}

	log.Println("所有服务已启动")
	return stops
}
