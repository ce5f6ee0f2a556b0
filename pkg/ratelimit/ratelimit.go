package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket 令牌桶速率限制器
type TokenBucket struct {
	capacity   int // 桶容量
	tokens     int // 当前令牌数
	refillRate int // 每秒补充的令牌数
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket 创建令牌桶
func NewTokenBucket(capacity, refillRate int) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)
	tokensToAdd := int(elapsed.Seconds()) * tb.refillRate
	if tokensToAdd > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+tokensToAdd)
		tb.lastRefill = now
	}
}

// Allow 检查是否允许请求
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Remaining 剩余令牌数
func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	return tb.tokens
}

// SlidingWindow 滑动窗口速率限制器
type SlidingWindow struct {
	limit      int
	windowSize time.Duration
	requests   []time.Time
	mu         sync.Mutex
}

// NewSlidingWindow 创建滑动窗口限制器
func NewSlidingWindow(limit int, windowSize time.Duration) *SlidingWindow {
	return &SlidingWindow{
		limit:      limit,
		windowSize: windowSize,
	}
}

// Allow 检查是否允许请求
func (sw *SlidingWindow) Allow() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-sw.windowSize)

	valid := sw.requests[:0]
	for _, req := range sw.requests {
		if req.After(cutoff) {
			valid = append(valid, req)
		}
	}
	sw.requests = valid

	if len(sw.requests) >= sw.limit {
		return false
	}
	sw.requests = append(sw.requests, now)
	return true
}

// Remaining 窗口内剩余请求数
func (sw *SlidingWindow) Remaining() int {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	cutoff := time.Now().Add(-sw.windowSize)
	valid := 0
	for _, req := range sw.requests {
		if req.After(cutoff) {
			valid++
		}
	}
	return max(0, sw.limit-valid)
}

// PerClient 按调用方（通常是客户端 IP）分桶的滑动窗口限制器
type PerClient struct {
	limit      int
	windowSize time.Duration

	mu       sync.Mutex
	limiters map[string]*SlidingWindow
	lastSeen map[string]time.Time
}

// NewPerClient 创建按调用方分桶的限制器
func NewPerClient(limit int, windowSize time.Duration) *PerClient {
	return &PerClient{
		limit:      limit,
		windowSize: windowSize,
		limiters:   make(map[string]*SlidingWindow),
		lastSeen:   make(map[string]time.Time),
	}
}

// Allow 检查 key 对应的调用方是否允许请求
func (p *PerClient) Allow(key string) bool {
	p.mu.Lock()
	lim, ok := p.limiters[key]
	if !ok {
		lim = NewSlidingWindow(p.limit, p.windowSize)
		p.limiters[key] = lim
		// 顺手清理长期没有动静的桶
		if len(p.limiters) > 10000 {
			p.evict()
		}
	}
	p.lastSeen[key] = time.Now()
	p.mu.Unlock()
	return lim.Allow()
}

// evict 调用方持锁
func (p *PerClient) evict() {
	cutoff := time.Now().Add(-10 * p.windowSize)
	for key, seen := range p.lastSeen {
		if seen.Before(cutoff) {
			delete(p.limiters, key)
			delete(p.lastSeen, key)
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
