package gateway

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// CacheEntry 缓存条目
type CacheEntry struct {
	Data      []byte
	Headers   map[string]string
	ExpiresAt time.Time
	ETag      string
}

// MemoryCache 内存缓存
type MemoryCache struct {
	entries map[string]*CacheEntry
	mutex   sync.RWMutex

	// 配置
	DefaultTTL      time.Duration
	MaxEntries      int
	CleanupInterval time.Duration

	stop chan struct{}
	once sync.Once
}

// NewMemoryCache 创建内存缓存
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{
		entries:         make(map[string]*CacheEntry),
		DefaultTTL:      30 * time.Second,
		MaxEntries:      1000,
		CleanupInterval: 1 * time.Minute,
		stop:            make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// Stop 停止清理协程
func (mc *MemoryCache) Stop() {
	mc.once.Do(func() { close(mc.stop) })
}

// CacheMiddleware 缓存中间件
type CacheMiddleware struct {
	cache *MemoryCache

	// 可缓存的路径前缀
	CacheablePaths []string
	// 缓存时间配置
	CacheTTL map[string]time.Duration
}

// NewCacheMiddleware 创建缓存中间件，只缓存排行榜查询
func NewCacheMiddleware() *CacheMiddleware {
	return &CacheMiddleware{
		cache:          NewMemoryCache(),
		CacheablePaths: []string{"/scores"},
		CacheTTL: map[string]time.Duration{
			"/scores": 30 * time.Second,
		},
	}
}

// Invalidate 删除指定路径前缀下的缓存，成绩提交后调用
func (cm *CacheMiddleware) Invalidate(prefix string) {
	cm.cache.DeletePrefix(prefix)
}

// Stop 停止缓存清理
func (cm *CacheMiddleware) Stop() {
	cm.cache.Stop()
}

// Middleware 缓存中间件
func (cm *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 只缓存GET请求
		if r.Method != http.MethodGet || !cm.shouldCache(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		cacheKey := cm.generateCacheKey(r)

		if entry := cm.cache.Get(cacheKey); entry != nil {
			if r.Header.Get("If-None-Match") == entry.ETag {
				w.Header().Set("ETag", entry.ETag)
				w.WriteHeader(http.StatusNotModified)
				return
			}
			cm.writeCachedResponse(w, entry, "HIT")
			return
		}

		// 先完整记录响应，再决定是否缓存
		recorder := &cacheResponseRecorder{
			header:     make(http.Header),
			statusCode: http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode != http.StatusOK || recorder.body.Len() == 0 {
			recorder.flushTo(w)
			return
		}

		ttl := cm.getTTL(r.URL.Path)
		entry := &CacheEntry{
			Data:      recorder.body.Bytes(),
			Headers:   map[string]string{"Content-Type": recorder.header.Get("Content-Type")},
			ExpiresAt: time.Now().Add(ttl),
			ETag:      cm.generateETag(recorder.body.Bytes()),
		}
		cm.cache.Set(cacheKey, entry)

		for key, values := range recorder.header {
			w.Header()[key] = values
		}
		w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(ttl.Seconds())))
		cm.writeCachedResponse(w, entry, "MISS")
	})
}

// shouldCache 检查是否应该缓存
func (cm *CacheMiddleware) shouldCache(path string) bool {
	for _, pattern := range cm.CacheablePaths {
		if strings.HasPrefix(path, pattern) {
			return true
		}
	}
	return false
}

// generateCacheKey 生成缓存键
func (cm *CacheMiddleware) generateCacheKey(r *http.Request) string {
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}
	return key
}

// getTTL 获取缓存时间
func (cm *CacheMiddleware) getTTL(path string) time.Duration {
	for pattern, ttl := range cm.CacheTTL {
		if strings.HasPrefix(path, pattern) {
			return ttl
		}
	}
	return cm.cache.DefaultTTL
}

// generateETag 生成ETag
func (cm *CacheMiddleware) generateETag(data []byte) string {
	hash := md5.Sum(data)
	return fmt.Sprintf(`"%x"`, hash)
}

// writeCachedResponse 写入缓存的响应
func (cm *CacheMiddleware) writeCachedResponse(w http.ResponseWriter, entry *CacheEntry, status string) {
	for key, value := range entry.Headers {
		if value != "" {
			w.Header().Set(key, value)
		}
	}
	w.Header().Set("ETag", entry.ETag)
	w.Header().Set("X-Cache", status)

	w.WriteHeader(http.StatusOK)
	w.Write(entry.Data)
}

// Get 获取缓存条目，过期返回nil
func (mc *MemoryCache) Get(key string) *CacheEntry {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()

	entry, exists := mc.entries[key]
	if !exists || time.Now().After(entry.ExpiresAt) {
		return nil
	}
	return entry
}

// Set 设置缓存条目
func (mc *MemoryCache) Set(key string, entry *CacheEntry) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if len(mc.entries) >= mc.MaxEntries {
		mc.evictExpired()
		if len(mc.entries) >= mc.MaxEntries {
			mc.evictOldest()
		}
	}

	mc.entries[key] = entry
}

// DeletePrefix 删除键以 prefix 开头的条目
func (mc *MemoryCache) DeletePrefix(prefix string) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	for key := range mc.entries {
		if strings.HasPrefix(key, prefix) {
			delete(mc.entries, key)
		}
	}
}

// Len 条目数量
func (mc *MemoryCache) Len() int {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()
	return len(mc.entries)
}

// evictExpired 删除过期条目
func (mc *MemoryCache) evictExpired() {
	now := time.Now()
	for key, entry := range mc.entries {
		if now.After(entry.ExpiresAt) {
			delete(mc.entries, key)
		}
	}
}

// evictOldest 删除最早过期的条目
func (mc *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range mc.entries {
		if oldestKey == "" || entry.ExpiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.ExpiresAt
		}
	}

	if oldestKey != "" {
		delete(mc.entries, oldestKey)
	}
}

// cleanup 清理过期条目
func (mc *MemoryCache) cleanup() {
	ticker := time.NewTicker(mc.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mutex.Lock()
			mc.evictExpired()
			mc.mutex.Unlock()
		case <-mc.stop:
			return
		}
	}
}

// cacheResponseRecorder 缓冲下游响应
type cacheResponseRecorder struct {
	header     http.Header
	statusCode int
	body       bytes.Buffer
}

// Header 获取头部
func (crr *cacheResponseRecorder) Header() http.Header {
	return crr.header
}

// WriteHeader 记录状态码
func (crr *cacheResponseRecorder) WriteHeader(code int) {
	crr.statusCode = code
}

// Write 记录响应体
func (crr *cacheResponseRecorder) Write(data []byte) (int, error) {
	return crr.body.Write(data)
}

// flushTo 原样写出不缓存的响应
func (crr *cacheResponseRecorder) flushTo(w http.ResponseWriter) {
	for key, values := range crr.header {
		w.Header()[key] = values
	}
	w.WriteHeader(crr.statusCode)
	w.Write(crr.body.Bytes())
}
