package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Snapshot 代币账本快照，用于持久化
type Snapshot struct {
	Address     common.Address                   `json:"address"`
	Name        string                           `json:"name"`
	Symbol      string                           `json:"symbol"`
	TotalSupply *big.Int                         `json:"totalSupply"`
	Balances    map[common.Address]*big.Int      `json:"balances"`
	Votes       map[common.Address]*big.Int      `json:"votes"`
	Roles       map[common.Hash][]common.Address `json:"roles"`
}

// Snapshot 导出账本快照
func (t *Token) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := Snapshot{
		Address:     t.addr,
		Name:        t.name,
		Symbol:      t.symbol,
		TotalSupply: new(big.Int).Set(t.totalSupply),
		Balances:    make(map[common.Address]*big.Int, len(t.balances)),
		Votes:       make(map[common.Address]*big.Int, len(t.votes)),
		Roles:       make(map[common.Hash][]common.Address, len(t.roles)),
	}
	for a, b := range t.balances {
		s.Balances[a] = new(big.Int).Set(b)
	}
	for a, v := range t.votes {
		s.Votes[a] = new(big.Int).Set(v)
	}
	for role, members := range t.roles {
		for a := range members {
			s.Roles[role] = append(s.Roles[role], a)
		}
	}
	return s
}

// Restore 从快照恢复账本，仅在启动时调用
func (t *Token) Restore(s Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s.TotalSupply != nil {
		t.totalSupply.Set(s.TotalSupply)
	}
	for a, b := range s.Balances {
		t.balances[a] = new(big.Int).Set(b)
	}
	for a, v := range s.Votes {
		t.votes[a] = new(big.Int).Set(v)
	}
	for role, members := range s.Roles {
		for _, a := range members {
			t.grant(role, a)
		}
	}
}
