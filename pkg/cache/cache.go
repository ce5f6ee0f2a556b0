package cache

import (
	"sync"
	"time"
)

// TTLCache 带过期时间的内存缓存
type TTLCache[K comparable, V any] struct {
	mu         sync.RWMutex
	items      map[K]entry[V]
	defaultTTL time.Duration
	stop       chan struct{}
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// New 创建缓存并启动后台清理
func New[K comparable, V any](defaultTTL time.Duration) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		items:      make(map[K]entry[V]),
		defaultTTL: defaultTTL,
		stop:       make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get 获取缓存值，过期视为不存在
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[key]
	if !ok || time.Now().After(it.expiresAt) {
		var zero V
		return zero, false
	}
	return it.value, true
}

// Set 写入缓存值，ttl 为 0 时使用默认 TTL
func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Delete 删除缓存项
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Size 当前缓存项数量（含未清理的过期项）
func (c *TTLCache[K, V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close 停止后台清理
func (c *TTLCache[K, V]) Close() {
	close(c.stop)
}

func (c *TTLCache[K, V]) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, it := range c.items {
				if now.After(it.expiresAt) {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		}
	}
}
