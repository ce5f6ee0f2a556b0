package bank

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/immutable-ratings/goratings/internal/protocol"
)

// Bank 原生支付账本。模拟执行环境的价值转移，让
// 付款转发 / 多付退款在进程内可观察、可断言。
type Bank struct {
	mu       sync.RWMutex
	balances map[common.Address]*big.Int
}

// New 创建空账本
func New() *Bank {
	return &Bank{balances: make(map[common.Address]*big.Int)}
}

// Deposit 给账户充值（测试与部署引导用）
func (b *Bank) Deposit(account common.Address, amount *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credit(account, amount)
}

// BalanceOf 查询余额
func (b *Bank) BalanceOf(account common.Address) *big.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if bal, ok := b.balances[account]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// Transfer 转账，余额不足返回 ErrInsufficientBalance
func (b *Bank) Transfer(from, to common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	bal, ok := b.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return protocol.ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	b.credit(to, amount)
	return nil
}

func (b *Bank) credit(account common.Address, amount *big.Int) {
	if bal, ok := b.balances[account]; ok {
		bal.Add(bal, amount)
	} else {
		b.balances[account] = new(big.Int).Set(amount)
	}
}
