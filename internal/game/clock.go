package game

import (
	"sync"
	"time"
)

// Clock 墙钟时间来源，冷却判断只依赖它
type Clock interface {
	Now() time.Time
}

// SystemClock 使用系统时间
type SystemClock struct{}

// Now 当前时间
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock 手动推进的时钟
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock 创建手动时钟
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now 当前时间
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance 推进时间
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// cooldown 基于时间戳的冷却门
type cooldown struct {
	interval time.Duration
	readyAt  time.Time
}

// try 冷却结束则激活并返回true，否则丢弃本次输入
func (c *cooldown) try(now time.Time) bool {
	if now.Before(c.readyAt) {
		return false
	}
	c.readyAt = now.Add(c.interval)
	return true
}

func (c *cooldown) reset() {
	c.readyAt = time.Time{}
}
