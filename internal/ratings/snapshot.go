package ratings

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// State 引擎状态快照：管理状态、市场映射与用户累计评分量
type State struct {
	Owner        common.Address              `json:"owner"`
	PendingOwner common.Address              `json:"pendingOwner"`
	Receiver     common.Address              `json:"receiver"`
	Paused       bool                        `json:"paused"`
	Markets      map[string]common.Address   `json:"markets"`
	UserRatings  map[common.Address]*big.Int `json:"userRatings"`
}

// Snapshot 导出引擎状态快照
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := State{
		Owner:        e.owner,
		PendingOwner: e.pendingOwner,
		Receiver:     e.receiver,
		Paused:       e.paused,
		Markets:      e.registry.Snapshot(),
		UserRatings:  make(map[common.Address]*big.Int, len(e.userRatings)),
	}
	for a, v := range e.userRatings {
		s.UserRatings[a] = new(big.Int).Set(v)
	}
	return s
}

// Restore 从快照恢复引擎状态，仅在启动时调用
func (e *Engine) Restore(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s.Owner != (common.Address{}) {
		e.owner = s.Owner
	}
	e.pendingOwner = s.PendingOwner
	if s.Receiver != (common.Address{}) {
		e.receiver = s.Receiver
	}
	e.paused = s.Paused
	e.registry.Restore(s.Markets)
	for a, v := range s.UserRatings {
		e.userRatings[a] = new(big.Int).Set(v)
	}
}
