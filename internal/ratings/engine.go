package ratings

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/immutable-ratings/goratings/internal/bank"
	"github.com/immutable-ratings/goratings/internal/market"
	"github.com/immutable-ratings/goratings/internal/pricing"
	"github.com/immutable-ratings/goratings/internal/protocol"
	"github.com/immutable-ratings/goratings/internal/token"
	"github.com/immutable-ratings/goratings/pkg/logger"
)

// DefaultMaxRatings 单批评分条目数上限
const DefaultMaxRatings = 100

// Config 引擎构造参数
type Config struct {
	// Address 引擎自身的链上身份，托管支付并持有铸币角色
	Address common.Address
	// Owner 初始所有者
	Owner common.Address
	// TokenUp / TokenDown 两个记账代币
	TokenUp   *token.Token
	TokenDown *token.Token
	// Receiver 协议收款地址
	Receiver common.Address
	// Bank 原生支付账本
	Bank *bank.Bank
	// Sink 事件接收器，nil 时丢弃事件
	Sink protocol.Sink
	// MaxRatings 批量条目数上限，0 取 DefaultMaxRatings
	MaxRatings int
}

// Engine 评分市场核心。对 URL 的每条评分按固定费率收费，
// 向该 URL 的市场账户铸造 TUP 或 TDN。
//
// 所有变更操作持同一把锁串行执行，且先完成全部校验再落任何
// 状态，因此单个操作要么完整生效要么毫无痕迹。
type Engine struct {
	addr      common.Address
	tokenUp   *token.Token
	tokenDown *token.Token
	registry  *market.Registry
	bank      *bank.Bank
	sink      protocol.Sink

	mu           sync.Mutex
	owner        common.Address
	pendingOwner common.Address
	receiver     common.Address
	paused       bool
	userRatings  map[common.Address]*big.Int
	maxRatings   int
}

// New 创建引擎。任一身份为零地址时返回 ErrZeroAddress。
func New(cfg Config) (*Engine, error) {
	if cfg.Address == (common.Address{}) || cfg.Owner == (common.Address{}) ||
		cfg.Receiver == (common.Address{}) {
		return nil, protocol.ErrZeroAddress
	}
	if cfg.TokenUp == nil || cfg.TokenDown == nil ||
		cfg.TokenUp.Address() == (common.Address{}) || cfg.TokenDown.Address() == (common.Address{}) {
		return nil, protocol.ErrZeroAddress
	}
	if cfg.Bank == nil {
		cfg.Bank = bank.New()
	}
	if cfg.Sink == nil {
		cfg.Sink = protocol.NopSink{}
	}
	if cfg.MaxRatings <= 0 {
		cfg.MaxRatings = DefaultMaxRatings
	}
	registry, err := market.NewRegistry(cfg.Address)
	if err != nil {
		return nil, err
	}
	return &Engine{
		addr:        cfg.Address,
		tokenUp:     cfg.TokenUp,
		tokenDown:   cfg.TokenDown,
		registry:    registry,
		bank:        cfg.Bank,
		sink:        cfg.Sink,
		owner:       cfg.Owner,
		receiver:    cfg.Receiver,
		userRatings: make(map[common.Address]*big.Int),
		maxRatings:  cfg.MaxRatings,
	}, nil
}

// Address 引擎身份
func (e *Engine) Address() common.Address { return e.addr }

// TokenUp TUP 代币地址
func (e *Engine) TokenUp() common.Address { return e.tokenUp.Address() }

// TokenDown TDN 代币地址
func (e *Engine) TokenDown() common.Address { return e.tokenDown.Address() }

// Up TUP 代币实例
func (e *Engine) Up() *token.Token { return e.tokenUp }

// Down TDN 代币实例
func (e *Engine) Down() *token.Token { return e.tokenDown }

// Registry 市场注册表
func (e *Engine) Registry() *market.Registry { return e.registry }

// Bank 支付账本
func (e *Engine) Bank() *bank.Bank { return e.bank }

// GetMarketAddress 查询 URL 对应的市场账户地址。
// 纯读，市场未创建时同样可用且与创建后一致。
func (e *Engine) GetMarketAddress(url string) common.Address {
	return e.registry.DeriveAddress(url)
}

// MarketExists 查询 URL 是否已有市场
func (e *Engine) MarketExists(url string) bool {
	return e.registry.Exists(url)
}

// PreviewPayment 计算数量对应的支付金额，纯读，不受暂停影响
func (e *Engine) PreviewPayment(amount *big.Int) *big.Int {
	return pricing.Payment(amount)
}

// GetUserRatings 查询用户两个方向累计的评分总量
func (e *Engine) GetUserRatings(user common.Address) *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.userRatings[user]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// Owner 当前所有者
func (e *Engine) Owner() common.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.owner
}

// PendingOwner 候选所有者，无则为零地址
func (e *Engine) PendingOwner() common.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pendingOwner
}

// Receiver 协议收款地址
func (e *Engine) Receiver() common.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.receiver
}

// IsPaused 暂停状态
func (e *Engine) IsPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// CreateMarket 显式创建市场。已存在时报 ErrMarketAlreadyExists，
// 暂停时报 ErrContractPaused。
func (e *Engine) CreateMarket(url string) (common.Address, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return common.Address{}, protocol.ErrContractPaused
	}
	addr, err := e.registry.Create(url)
	if err != nil {
		return common.Address{}, err
	}
	logger.Infof("[ratings] market created: url=%s market=%s", url, addr.Hex())
	e.sink.Publish(protocol.MarketCreated{URL: url, Market: addr})
	return addr, nil
}

// CreateUpRating 创建一条好评
func (e *Engine) CreateUpRating(caller common.Address, req protocol.RatingRequest, payment *big.Int) error {
	return e.createRating(caller, req, payment, protocol.SideUp)
}

// CreateDownRating 创建一条差评
func (e *Engine) CreateDownRating(caller common.Address, req protocol.RatingRequest, payment *big.Int) error {
	return e.createRating(caller, req, payment, protocol.SideDown)
}

func (e *Engine) createRating(caller common.Address, req protocol.RatingRequest, payment *big.Int, side protocol.Side) error {
	if payment == nil {
		payment = new(big.Int)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	// 全部前置校验，任何一条不过都不落状态
	if e.paused {
		return protocol.ErrContractPaused
	}
	if req.URL == "" {
		return protocol.ErrEmptyURL
	}
	if err := pricing.Validate(req.Amount); err != nil {
		return err
	}
	cost := pricing.Payment(req.Amount)
	if payment.Cmp(cost) < 0 {
		return protocol.ErrInsufficientPayment
	}
	tok := e.tokenFor(side)
	if !tok.HasRole(token.MinterRole, e.addr) {
		return protocol.ErrUnauthorizedRole
	}
	if e.bank.BalanceOf(caller).Cmp(payment) < 0 {
		return protocol.ErrInsufficientBalance
	}

	// 提交：市场惰性创建 → 铸币 → 记账 → 转付 → 退款
	marketAddr, created, err := e.registry.Ensure(req.URL)
	if err != nil {
		return err
	}
	if err := e.settle(caller, tok, marketAddr, req.Amount, payment, cost); err != nil {
		return err
	}
	if created {
		e.sink.Publish(protocol.MarketCreated{URL: req.URL, Market: marketAddr})
	}
	e.publishRating(caller, marketAddr, req.Amount, side)
	logger.Debugf("[ratings] %s rating: rater=%s market=%s amount=%s cost=%s",
		side, caller.Hex(), marketAddr.Hex(), req.Amount.String(), cost.String())
	return nil
}

// CreateRatings 批量创建评分。所有条目共享一笔支付，整批要么
// 全部生效要么全部拒绝。条目里重复的 URL 共享一次惰性创建。
func (e *Engine) CreateRatings(caller common.Address, up, down []protocol.RatingRequest, payment *big.Int) error {
	if payment == nil {
		payment = new(big.Int)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return protocol.ErrContractPaused
	}
	if len(up)+len(down) > e.maxRatings {
		return protocol.ErrMaxRatingsExceeded
	}

	// 先逐条校验并累计总价
	total := new(big.Int)
	for _, req := range append(append([]protocol.RatingRequest{}, up...), down...) {
		if req.URL == "" {
			return protocol.ErrEmptyURL
		}
		if err := pricing.Validate(req.Amount); err != nil {
			return err
		}
		total.Add(total, pricing.Payment(req.Amount))
	}
	if payment.Cmp(total) < 0 {
		return protocol.ErrInsufficientPayment
	}
	if len(up) > 0 && !e.tokenUp.HasRole(token.MinterRole, e.addr) {
		return protocol.ErrUnauthorizedRole
	}
	if len(down) > 0 && !e.tokenDown.HasRole(token.MinterRole, e.addr) {
		return protocol.ErrUnauthorizedRole
	}
	if e.bank.BalanceOf(caller).Cmp(payment) < 0 {
		return protocol.ErrInsufficientBalance
	}

	// 托管整笔支付
	if err := e.bank.Transfer(caller, e.addr, payment); err != nil {
		return err
	}
	for _, req := range up {
		e.applyRating(caller, req, protocol.SideUp)
	}
	for _, req := range down {
		e.applyRating(caller, req, protocol.SideDown)
	}
	// 转付总价，剩余退回
	if err := e.bank.Transfer(e.addr, e.receiver, total); err != nil {
		return err
	}
	excess := new(big.Int).Sub(payment, total)
	if excess.Sign() > 0 {
		if err := e.bank.Transfer(e.addr, caller, excess); err != nil {
			return err
		}
	}
	logger.Infof("[ratings] batch: rater=%s up=%d down=%d total=%s", caller.Hex(), len(up), len(down), total.String())
	return nil
}

// applyRating 批量路径的单条落账，调用前所有校验已完成
func (e *Engine) applyRating(caller common.Address, req protocol.RatingRequest, side protocol.Side) {
	marketAddr, created, _ := e.registry.Ensure(req.URL)
	tok := e.tokenFor(side)
	_ = tok.Mint(e.addr, caller, marketAddr, req.Amount)
	e.addUserRatings(caller, req.Amount)
	if created {
		e.sink.Publish(protocol.MarketCreated{URL: req.URL, Market: marketAddr})
	}
	e.publishRating(caller, marketAddr, req.Amount, side)
}

// settle 单条评分的资金与代币落账，调用前所有校验已完成
func (e *Engine) settle(caller common.Address, tok *token.Token, marketAddr common.Address, amount, payment, cost *big.Int) error {
	if err := e.bank.Transfer(caller, e.addr, payment); err != nil {
		return err
	}
	if err := tok.Mint(e.addr, caller, marketAddr, amount); err != nil {
		return err
	}
	e.addUserRatings(caller, amount)
	if err := e.bank.Transfer(e.addr, e.receiver, cost); err != nil {
		return err
	}
	excess := new(big.Int).Sub(payment, cost)
	if excess.Sign() > 0 {
		if err := e.bank.Transfer(e.addr, caller, excess); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) addUserRatings(user common.Address, amount *big.Int) {
	if v, ok := e.userRatings[user]; ok {
		v.Add(v, amount)
	} else {
		e.userRatings[user] = new(big.Int).Set(amount)
	}
}

func (e *Engine) tokenFor(side protocol.Side) *token.Token {
	if side == protocol.SideUp {
		return e.tokenUp
	}
	return e.tokenDown
}

func (e *Engine) publishRating(caller, marketAddr common.Address, amount *big.Int, side protocol.Side) {
	a := new(big.Int).Set(amount)
	if side == protocol.SideUp {
		e.sink.Publish(protocol.RatingUpCreated{Rater: caller, Market: marketAddr, Amount: a})
	} else {
		e.sink.Publish(protocol.RatingDownCreated{Rater: caller, Market: marketAddr, Amount: a})
	}
}
