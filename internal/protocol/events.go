package protocol

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Event 协议事件
type Event interface {
	Name() string
}

// RatingUpCreated 好评已创建
type RatingUpCreated struct {
	Rater  common.Address
	Market common.Address
	Amount *big.Int
}

func (RatingUpCreated) Name() string { return "RatingUpCreated" }

// RatingDownCreated 差评已创建
type RatingDownCreated struct {
	Rater  common.Address
	Market common.Address
	Amount *big.Int
}

func (RatingDownCreated) Name() string { return "RatingDownCreated" }

// MarketCreated 市场已创建
type MarketCreated struct {
	URL    string
	Market common.Address
}

func (MarketCreated) Name() string { return "MarketCreated" }

// ReceiverUpdated 收款地址已更新
type ReceiverUpdated struct {
	Receiver common.Address
}

func (ReceiverUpdated) Name() string { return "ReceiverUpdated" }

// PausedSet 暂停状态已切换
type PausedSet struct {
	Paused bool
}

func (PausedSet) Name() string { return "Paused" }

// Sink 事件接收器。Publish 在状态变更提交后同步调用，
// 实现方不应阻塞。
type Sink interface {
	Publish(ev Event)
}

// NopSink 丢弃所有事件
type NopSink struct{}

// Publish 实现 Sink
func (NopSink) Publish(Event) {}

// SinkFunc 函数式 Sink 适配器
type SinkFunc func(ev Event)

// Publish 实现 Sink
func (f SinkFunc) Publish(ev Event) { f(ev) }

// RelaySink 可后接目标的转发器。引擎构造时 Sink 就要确定，
// 而订阅方（HTTP 服务）往往在引擎之后创建，中间用它桥接。
type RelaySink struct {
	mu     sync.RWMutex
	target Sink
}

// NewRelay 创建未接目标的转发器
func NewRelay() *RelaySink { return &RelaySink{} }

// SetTarget 设置转发目标
func (r *RelaySink) SetTarget(target Sink) {
	r.mu.Lock()
	r.target = target
	r.mu.Unlock()
}

// Publish 实现 Sink，未接目标时事件被丢弃
func (r *RelaySink) Publish(ev Event) {
	r.mu.RLock()
	target := r.target
	r.mu.RUnlock()
	if target != nil {
		target.Publish(ev)
	}
}
