// service.go

package match

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jacl-coder/BaseDefender-Server/config"
	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

// ErrGameUnavailable 游戏服务不可用
var ErrGameUnavailable = errors.New("游戏服务不可用")

// RoomProvider 创建和列出游戏房间，可以是本进程的游戏服务器，也可以是远程游戏服务
type RoomProvider interface {
	CreateSoloRoom(ctx context.Context, name string) (models.RoomInfo, error)
	RoomInfos(ctx context.Context) ([]models.RoomInfo, error)
}

// MatchService 大厅服务，每个请求分配一个单人房间
type MatchService struct {
	rooms  RoomProvider
	config *config.Config

	// HTTP服务器
	httpServer *http.Server
	handler    *MatchHandler

	isRunning bool
}

// NewMatchService 创建大厅服务
func NewMatchService(cfg *config.Config, rooms RoomProvider) *MatchService {
	service := &MatchService{
		rooms:  rooms,
		config: cfg,
	}
	service.handler = NewMatchHandler(service)
	return service
}

// Handler 大厅的HTTP处理器
func (s *MatchService) Handler() http.Handler {
	mux := http.NewServeMux()
	s.handler.RegisterHandlers(mux)
	return mux
}

// Start 启动大厅服务
func (s *MatchService) Start() error {
	if s.isRunning {
		return fmt.Errorf("大厅服务已经在运行")
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.MatchPort),
		Handler: s.Handler(),
	}

	go func() {
		log.Printf("大厅服务启动，监听端口: %d", s.config.Server.MatchPort)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("大厅服务HTTP服务器错误: %v", err)
		}
	}()

	s.isRunning = true
	return nil
}

// Stop 停止大厅服务
func (s *MatchService) Stop() {
	if !s.isRunning {
		return
	}
	s.isRunning = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("大厅服务关闭错误: %v", err)
	}

	log.Println("大厅服务已停止")
}

// Join 为玩家创建单人房间
func (s *MatchService) Join(ctx context.Context, playerName string) (models.RoomInfo, error) {
	name := strings.TrimSpace(playerName)
	if name == "" {
		name = "solo"
	}

	info, err := s.rooms.CreateSoloRoom(ctx, name)
	if err != nil {
		return models.RoomInfo{}, fmt.Errorf("创建房间失败: %w", err)
	}

	log.Printf("玩家 %s 分配到房间 %s", name, info.ID)
	return info, nil
}

// Status 按房间状态统计
func (s *MatchService) Status(ctx context.Context) (map[models.RoomStatus]int, int, error) {
	infos, err := s.rooms.RoomInfos(ctx)
	if err != nil {
		return nil, 0, err
	}

	counts := make(map[models.RoomStatus]int)
	for _, info := range infos {
		counts[info.Status]++
	}
	return counts, len(infos), nil
}

// RemoteRooms 通过HTTP调用独立部署的游戏服务
type RemoteRooms struct {
	baseURL string
	client  *http.Client
}

// NewRemoteRooms 创建远程房间客户端
func NewRemoteRooms(baseURL string) *RemoteRooms {
	return &RemoteRooms{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// CreateSoloRoom POST /rooms
func (c *RemoteRooms) CreateSoloRoom(ctx context.Context, name string) (models.RoomInfo, error) {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return models.RoomInfo{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rooms", bytes.NewReader(body))
	if err != nil {
		return models.RoomInfo{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var info models.RoomInfo
	if err := c.do(req, http.StatusCreated, &info); err != nil {
		return models.RoomInfo{}, err
	}
	return info, nil
}

// RoomInfos GET /rooms
func (c *RemoteRooms) RoomInfos(ctx context.Context) ([]models.RoomInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rooms", nil)
	if err != nil {
		return nil, err
	}

	var infos []models.RoomInfo
	if err := c.do(req, http.StatusOK, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

func (c *RemoteRooms) do(req *http.Request, want int, v any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGameUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return fmt.Errorf("%w: 状态码 %d", ErrGameUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("解析游戏服务响应失败: %w", err)
	}
	return nil
}
