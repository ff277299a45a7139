package gateway

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter 请求频率限制器
type RateLimiter struct {
	clients map[string]*ClientInfo
	mutex   sync.Mutex

	// 配置
	RequestsPerMinute int
	// BurstSize 一秒内允许的最大请求数
	BurstSize       int
	CleanupInterval time.Duration

	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

// ClientInfo 客户端信息
type ClientInfo struct {
	Requests []time.Time
	LastSeen time.Time
}

// NewRateLimiter 创建新的频率限制器
func NewRateLimiter(requestsPerMinute, burstSize int) *RateLimiter {
	rl := &RateLimiter{
		clients:           make(map[string]*ClientInfo),
		RequestsPerMinute: requestsPerMinute,
		BurstSize:         burstSize,
		CleanupInterval:   5 * time.Minute,
		now:               time.Now,
		stop:              make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Stop 停止清理协程
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Middleware 频率限制中间件
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allowRequest(clientIP(r)) {
			rl.sendRateLimitError(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allowRequest 检查是否允许请求：一分钟窗口和一秒突发窗口都不能超限
func (rl *RateLimiter) allowRequest(ip string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()

	client, exists := rl.clients[ip]
	if !exists {
		client = &ClientInfo{}
		rl.clients[ip] = client
	}
	client.LastSeen = now

	// 清理过期的请求记录
	cutoff := now.Add(-time.Minute)
	valid := client.Requests[:0]
	for _, t := range client.Requests {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	client.Requests = valid

	if len(client.Requests) >= rl.RequestsPerMinute {
		return false
	}

	if rl.BurstSize > 0 {
		burstCutoff := now.Add(-time.Second)
		recent := 0
		for _, t := range client.Requests {
			if t.After(burstCutoff) {
				recent++
			}
		}
		if recent >= rl.BurstSize {
			return false
		}
	}

	client.Requests = append(client.Requests, now)
	return true
}

// clientIP 获取客户端IP，X-Forwarded-For 取第一个地址
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// sendRateLimitError 发送频率限制错误响应
func (rl *RateLimiter) sendRateLimitError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusTooManyRequests)

	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Message: fmt.Sprintf("请求过于频繁，每分钟最多允许 %d 次请求", rl.RequestsPerMinute),
		Code:    "RATE_LIMIT_EXCEEDED",
	})
}

// cleanup 清理过期的客户端信息
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mutex.Lock()
			cutoff := rl.now().Add(-10 * time.Minute)
			for ip, client := range rl.clients {
				if client.LastSeen.Before(cutoff) {
					delete(rl.clients, ip)
				}
			}
			rl.mutex.Unlock()
		case <-rl.stop:
			return
		}
	}
}

// SecurityMiddleware 安全头中间件
type SecurityMiddleware struct{}

// NewSecurityMiddleware 创建安全中间件
func NewSecurityMiddleware() *SecurityMiddleware {
	return &SecurityMiddleware{}
}

// Middleware 安全头中间件
func (sm *SecurityMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Server", "BaseDefender")

		next.ServeHTTP(w, r)
	})
}

// CORSMiddleware CORS中间件，浏览器游戏页面可能来自任意来源
type CORSMiddleware struct {
	AllowedOrigin  string
	AllowedMethods string
	AllowedHeaders string
}

// NewCORSMiddleware 创建CORS中间件
func NewCORSMiddleware() *CORSMiddleware {
	return &CORSMiddleware{
		AllowedOrigin:  "*",
		AllowedMethods: "GET, POST, OPTIONS",
		AllowedHeaders: "Content-Type, Authorization, X-Requested-With",
	}
}

// Middleware CORS中间件
func (cm *CORSMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", cm.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", cm.AllowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", cm.AllowedHeaders)
		w.Header().Set("Access-Control-Max-Age", "86400")

		// 处理预检请求
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware 访问日志中间件
type LoggingMiddleware struct{}

// NewLoggingMiddleware 创建日志中间件
func NewLoggingMiddleware() *LoggingMiddleware {
	return &LoggingMiddleware{}
}

// Middleware 日志中间件
func (lm *LoggingMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(recorder, r)

		log.Printf("%s %s %d %v", r.Method, r.URL.Path, recorder.statusCode, time.Since(start))
	})
}

// responseRecorder 响应记录器
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader 记录状态码
func (rr *responseRecorder) WriteHeader(code int) {
	rr.statusCode = code
	rr.ResponseWriter.WriteHeader(code)
}

// Unwrap 供 http.ResponseController 取得底层连接(websocket 代理需要)
func (rr *responseRecorder) Unwrap() http.ResponseWriter {
	return rr.ResponseWriter
}
