package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jacl-coder/BaseDefender-Server/config"
	"github.com/jacl-coder/BaseDefender-Server/internal/scoreboard"
	"github.com/jacl-coder/BaseDefender-Server/pkg/auth"
)

// ServiceType 服务类型
type ServiceType string

const (
	// ServiceGame 游戏服务
	ServiceGame ServiceType = "game"
	// ServiceMatch 大厅服务
	ServiceMatch ServiceType = "match"
)

// ServiceInstance 服务实例
type ServiceInstance struct {
	ID        string      `json:"id"`
	Type      ServiceType `json:"type"`
	URL       *url.URL    `json:"-"`
	Health    bool        `json:"health"`
	LastCheck time.Time   `json:"last_check"`
}

// APIResponse 通用响应
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Gateway API网关，负责认证、排行榜和转发到游戏/大厅服务
type Gateway struct {
	config     *config.Config
	tokens     *auth.Manager
	store      scoreboard.Store
	services   map[ServiceType][]*ServiceInstance
	mutex      sync.RWMutex
	httpServer *http.Server
	isRunning  bool
	shutdown   chan struct{}

	rateLimiter *RateLimiter
	cache       *CacheMiddleware
	handler     http.Handler
}

// NewGateway 创建新的网关
func NewGateway(cfg *config.Config, store scoreboard.Store, tokens *auth.Manager) *Gateway {
	g := &Gateway{
		config:      cfg,
		tokens:      tokens,
		store:       store,
		services:    make(map[ServiceType][]*ServiceInstance),
		shutdown:    make(chan struct{}),
		rateLimiter: NewRateLimiter(120, 20),
		cache:       NewCacheMiddleware(),
	}
	g.handler = g.createHandler()
	return g
}

// Handler 网关的HTTP处理器
func (g *Gateway) Handler() http.Handler {
	return g.handler
}

// Start 启动网关
func (g *Gateway) Start() error {
	if g.isRunning {
		return fmt.Errorf("网关已经在运行")
	}

	g.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", g.config.Server.GatewayPort),
		Handler: g.handler,
	}

	// 注册内部服务
	g.registerInternalServices()

	// 启动健康检查
	go g.healthCheck()

	go func() {
		log.Printf("API网关启动，监听端口: %d", g.config.Server.GatewayPort)
		if err := g.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP服务器错误: %v", err)
		}
	}()

	g.isRunning = true
	return nil
}

// Stop 停止网关
func (g *Gateway) Stop() error {
	g.rateLimiter.Stop()
	g.cache.Stop()

	if !g.isRunning {
		return nil
	}

	close(g.shutdown)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP服务器关闭错误: %w", err)
	}

	g.isRunning = false
	log.Println("API网关已停止")
	return nil
}

// RegisterService 注册服务
func (g *Gateway) RegisterService(serviceType ServiceType, serviceURL string) error {
	parsedURL, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("无效的服务URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("无效的服务URL: %s", serviceURL)
	}

	instance := &ServiceInstance{
		ID:        fmt.Sprintf("%s-%d", serviceType, time.Now().UnixNano()),
		Type:      serviceType,
		URL:       parsedURL,
		Health:    true,
		LastCheck: time.Now(),
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.services[serviceType] = append(g.services[serviceType], instance)
	log.Printf("注册服务: %s, URL: %s", serviceType, serviceURL)

	return nil
}

// UnregisterService 注销服务
func (g *Gateway) UnregisterService(serviceType ServiceType, serviceID string) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	instances := g.services[serviceType]
	for i, instance := range instances {
		if instance.ID == serviceID {
			g.services[serviceType] = append(instances[:i], instances[i+1:]...)
			log.Printf("注销服务: %s, ID: %s", serviceType, serviceID)
			return true
		}
	}

	return false
}

// createHandler 创建HTTP处理器
func (g *Gateway) createHandler() http.Handler {
	mux := http.NewServeMux()

	// 访客认证
	NewAuthHandler(g.tokens).RegisterHandlers(mux)

	// 排行榜，提交成功后清理缓存
	if g.store != nil {
		var receipts scoreboard.ReceiptVerifier
		if g.tokens != nil {
			receipts = g.tokens
		}
		scores := scoreboard.NewHandler(g.store, receipts, g.config.Scoreboard.MaxEntries)
		scores.OnSubmit = func() { g.cache.Invalidate("/scores") }
		scores.RegisterHandlers(mux)
	}

	// 转发到游戏服务和大厅服务
	mux.HandleFunc("/game/", g.handleGameRequest)
	mux.HandleFunc("/match/", g.handleMatchRequest)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// 服务发现端点
	mux.HandleFunc("/services", g.handleServiceDiscovery)

	return g.applyMiddleware(mux)
}

// applyMiddleware 应用中间件（从外到内）
func (g *Gateway) applyMiddleware(handler http.Handler) http.Handler {
	handler = g.cache.Middleware(handler)
	handler = g.rateLimiter.Middleware(handler)
	handler = NewCORSMiddleware().Middleware(handler)
	handler = NewSecurityMiddleware().Middleware(handler)
	handler = NewLoggingMiddleware().Middleware(handler)
	return handler
}

// handleGameRequest 处理游戏服务请求
func (g *Gateway) handleGameRequest(w http.ResponseWriter, r *http.Request) {
	g.forwardRequest(w, r, ServiceGame)
}

// handleMatchRequest 处理大厅服务请求
func (g *Gateway) handleMatchRequest(w http.ResponseWriter, r *http.Request) {
	g.forwardRequest(w, r, ServiceMatch)
}

// forwardRequest 转发请求到指定服务，/game/ws 转发为 /ws
func (g *Gateway) forwardRequest(w http.ResponseWriter, r *http.Request, serviceType ServiceType) {
	if !g.validateAuth(r) {
		g.sendError(w, http.StatusUnauthorized, "未授权", "UNAUTHORIZED")
		return
	}

	instance := g.getServiceInstance(serviceType)
	if instance == nil {
		g.sendError(w, http.StatusServiceUnavailable, "服务不可用", "SERVICE_UNAVAILABLE")
		return
	}

	prefix := "/" + string(serviceType)
	target := instance.URL
	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.URL.Path = singleJoin(target.Path, strings.TrimPrefix(pr.In.URL.Path, prefix))
			pr.Out.URL.RawPath = ""
			pr.SetXForwarded()
			pr.Out.Header.Set("X-Origin-Host", target.Host)
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Printf("转发请求失败: %s %s: %v", serviceType, r.URL.Path, err)
			g.sendError(w, http.StatusBadGateway, "服务请求失败", "BAD_GATEWAY")
		},
	}

	proxy.ServeHTTP(w, r)
}

func singleJoin(base, path string) string {
	if path == "" {
		path = "/"
	}
	return strings.TrimSuffix(base, "/") + path
}

// handleServiceDiscovery 列出已注册的服务实例
func (g *Gateway) handleServiceDiscovery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	type instanceView struct {
		ServiceInstance
		URL string `json:"url"`
	}

	g.mutex.RLock()
	result := make(map[ServiceType][]instanceView, len(g.services))
	for serviceType, instances := range g.services {
		views := make([]instanceView, 0, len(instances))
		for _, instance := range instances {
			views = append(views, instanceView{ServiceInstance: *instance, URL: instance.URL.String()})
		}
		result[serviceType] = views
	}
	g.mutex.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// validateAuth 验证会话令牌
func (g *Gateway) validateAuth(r *http.Request) bool {
	token := requestToken(r)
	if token == "" || g.tokens == nil {
		return false
	}
	_, err := g.tokens.ParseSession(token)
	return err == nil
}

// getServiceInstance 在健康实例中轮询选择
func (g *Gateway) getServiceInstance(serviceType ServiceType) *ServiceInstance {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var healthyInstances []*ServiceInstance
	for _, instance := range g.services[serviceType] {
		if instance.Health {
			healthyInstances = append(healthyInstances, instance)
		}
	}

	if len(healthyInstances) == 0 {
		return nil
	}

	index := time.Now().UnixNano() % int64(len(healthyInstances))
	return healthyInstances[index]
}

// registerInternalServices 注册本机的游戏和大厅服务
func (g *Gateway) registerInternalServices() {
	gameURL := fmt.Sprintf("http://localhost:%d", g.config.Server.GamePort)
	if err := g.RegisterService(ServiceGame, gameURL); err != nil {
		log.Printf("注册服务失败: %v", err)
	}

	matchURL := fmt.Sprintf("http://localhost:%d", g.config.Server.MatchPort)
	if err := g.RegisterService(ServiceMatch, matchURL); err != nil {
		log.Printf("注册服务失败: %v", err)
	}
}

// healthCheck 健康检查
func (g *Gateway) healthCheck() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.checkServicesHealth()
		case <-g.shutdown:
			return
		}
	}
}

// checkServicesHealth 检查服务健康状态，请求期间不持有锁
func (g *Gateway) checkServicesHealth() {
	g.mutex.RLock()
	var instances []*ServiceInstance
	for _, list := range g.services {
		instances = append(instances, list...)
	}
	g.mutex.RUnlock()

	client := http.Client{Timeout: 2 * time.Second}

	for _, instance := range instances {
		healthURL := *instance.URL
		healthURL.Path = "/health"

		healthy := false
		resp, err := client.Get(healthURL.String())
		if err == nil {
			healthy = resp.StatusCode == http.StatusOK
			resp.Body.Close()
		}

		g.mutex.Lock()
		instance.LastCheck = time.Now()
		if instance.Health != healthy {
			if healthy {
				log.Printf("服务恢复健康: %s, ID: %s", instance.Type, instance.ID)
			} else {
				log.Printf("服务不健康: %s, ID: %s", instance.Type, instance.ID)
			}
			instance.Health = healthy
		}
		g.mutex.Unlock()
	}
}

func (g *Gateway) sendError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{Success: false, Message: message, Code: code})
}
