package market

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/immutable-ratings/goratings/internal/protocol"
)

// marketCodeHash 市场账户的初始化代码哈希。所有市场账户共享同一份
// 最小账户代码，因此地址只由 registry 身份和 URL 决定。
var marketCodeHash = crypto.Keccak256([]byte("immutable-ratings/market-account/v1"))

// Registry URL → 市场账户注册表。
// 地址推导是纯函数（CREATE2 方式），市场创建一次后永不重建。
type Registry struct {
	addr common.Address

	mu      sync.RWMutex
	markets map[string]common.Address
}

// NewRegistry 创建注册表，addr 为注册表自身的链上身份
func NewRegistry(addr common.Address) (*Registry, error) {
	if addr == (common.Address{}) {
		return nil, protocol.ErrZeroAddress
	}
	return &Registry{
		addr:    addr,
		markets: make(map[string]common.Address),
	}, nil
}

// Address 注册表身份
func (r *Registry) Address() common.Address { return r.addr }

// DeriveAddress 推导 URL 对应的市场账户地址。
// 纯函数：市场创建前即可查询，创建后地址不变。
func (r *Registry) DeriveAddress(url string) common.Address {
	salt := crypto.Keccak256Hash([]byte(url))
	return crypto.CreateAddress2(r.addr, salt, marketCodeHash)
}

// Exists 查询 URL 是否已有市场
func (r *Registry) Exists(url string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.markets[url]
	return ok
}

// Create 显式创建市场。URL 为空返回 ErrEmptyURL，
// 已存在返回 ErrMarketAlreadyExists。
func (r *Registry) Create(url string) (common.Address, error) {
	if url == "" {
		return common.Address{}, protocol.ErrEmptyURL
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.markets[url]; ok {
		return common.Address{}, protocol.ErrMarketAlreadyExists
	}
	addr := r.DeriveAddress(url)
	r.markets[url] = addr
	return addr, nil
}

// Ensure 隐式创建路径：已存在则直接返回现有账户，否则创建。
// created 表示本次调用是否真正创建了市场。
func (r *Registry) Ensure(url string) (addr common.Address, created bool, err error) {
	if url == "" {
		return common.Address{}, false, protocol.ErrEmptyURL
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.markets[url]; ok {
		return existing, false, nil
	}
	addr = r.DeriveAddress(url)
	r.markets[url] = addr
	return addr, true, nil
}

// Count 已创建的市场数量
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.markets)
}

// Snapshot 导出 URL → 市场账户映射的副本
func (r *Registry) Snapshot() map[string]common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]common.Address, len(r.markets))
	for url, addr := range r.markets {
		out[url] = addr
	}
	return out
}

// Restore 从快照恢复映射，仅在启动时调用
func (r *Registry) Restore(markets map[string]common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for url, addr := range markets {
		r.markets[url] = addr
	}
}
