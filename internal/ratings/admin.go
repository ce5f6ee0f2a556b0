package ratings

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/immutable-ratings/goratings/internal/protocol"
	"github.com/immutable-ratings/goratings/internal/token"
	"github.com/immutable-ratings/goratings/pkg/logger"
)

// SetReceiver 更新协议收款地址，仅所有者可调用。
// 拒绝零地址：构造期已保证收款地址非零，不允许 setter 破坏该不变量。
func (e *Engine) SetReceiver(caller, newReceiver common.Address) error {
	if newReceiver == (common.Address{}) {
		return protocol.ErrZeroAddress
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller != e.owner {
		return protocol.ErrUnauthorizedOwner
	}
	e.receiver = newReceiver
	logger.Infof("[ratings] receiver updated: %s", newReceiver.Hex())
	e.sink.Publish(protocol.ReceiverUpdated{Receiver: newReceiver})
	return nil
}

// SetIsPaused 切换暂停状态，仅所有者可调用。
// 暂停只拦截变更操作，纯读不受影响。
func (e *Engine) SetIsPaused(caller common.Address, paused bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller != e.owner {
		return protocol.ErrUnauthorizedOwner
	}
	e.paused = paused
	logger.Infof("[ratings] paused=%v", paused)
	e.sink.Publish(protocol.PausedSet{Paused: paused})
	return nil
}

// TransferOwnership 两步转移所有权的第一步：登记候选所有者。
// Owner 在候选人 AcceptOwnership 之前保持不变。
func (e *Engine) TransferOwnership(caller, candidate common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller != e.owner {
		return protocol.ErrUnauthorizedOwner
	}
	e.pendingOwner = candidate
	return nil
}

// AcceptOwnership 两步转移所有权的第二步，仅候选所有者可调用
func (e *Engine) AcceptOwnership(caller common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller == (common.Address{}) || caller != e.pendingOwner {
		return protocol.ErrUnauthorizedPendingOwner
	}
	e.owner = caller
	e.pendingOwner = common.Address{}
	logger.Infof("[ratings] ownership transferred: %s", caller.Hex())
	return nil
}

// RecoverERC20 找回误转入引擎地址的外部代币，全部余额转给 recipient。
// 仅所有者可调用。
func (e *Engine) RecoverERC20(caller common.Address, foreign *token.Token, recipient common.Address) error {
	if foreign == nil || foreign.Address() == (common.Address{}) || recipient == (common.Address{}) {
		return protocol.ErrZeroAddress
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller != e.owner {
		return protocol.ErrUnauthorizedOwner
	}
	amount := foreign.BalanceOf(e.addr)
	return foreign.Transfer(e.addr, recipient, amount)
}
