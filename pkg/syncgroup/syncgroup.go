package syncgroup

import "sync"

// SyncGroup sync.WaitGroup 的包装：先登记 goroutine 函数，
// Run 统一启动，Add/Done 自动配对，避免遗漏 Done。
type SyncGroup struct {
	wg sync.WaitGroup

	mu  sync.Mutex
	fns []func()
}

// NewSyncGroup 创建 SyncGroup
func NewSyncGroup() *SyncGroup {
	return &SyncGroup{}
}

// Add 登记一个 goroutine 函数，应在 Run 之前调用
func (g *SyncGroup) Add(fn func()) {
	if fn == nil {
		return
	}
	g.mu.Lock()
	g.fns = append(g.fns, fn)
	g.mu.Unlock()
}

// Run 启动所有已登记的 goroutine 并清空登记列表
func (g *SyncGroup) Run() {
	g.mu.Lock()
	fns := g.fns
	g.fns = nil
	g.mu.Unlock()

	for _, fn := range fns {
		g.wg.Add(1)
		go func(do func()) {
			defer g.wg.Done()
			do()
		}(fn)
	}
}

// Wait 等待所有 goroutine 退出
func (g *SyncGroup) Wait() {
	g.wg.Wait()
}
