package bank

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Snapshot 导出账本余额快照
func (b *Bank) Snapshot() map[common.Address]*big.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[common.Address]*big.Int, len(b.balances))
	for a, bal := range b.balances {
		out[a] = new(big.Int).Set(bal)
	}
	return out
}

// Restore 从快照恢复余额，仅在启动时调用
func (b *Bank) Restore(balances map[common.Address]*big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for a, bal := range balances {
		b.balances[a] = new(big.Int).Set(bal)
	}
}
