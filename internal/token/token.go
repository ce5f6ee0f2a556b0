package token

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/immutable-ratings/goratings/internal/protocol"
)

// 角色常量，和链上 AccessControl 的角色 id 保持同一推导方式
var (
	// MinterRole 铸币角色 keccak256("MINTER_ROLE")
	MinterRole = crypto.Keccak256Hash([]byte("MINTER_ROLE"))
	// DefaultAdminRole 默认管理员角色（零哈希）
	DefaultAdminRole = common.Hash{}
)

// Token 带角色门控的可铸造记账代币（TUP / TDN）。
// 除余额外还为每个操作者维护累计铸造计数（upvotes / downvotes）。
type Token struct {
	addr     common.Address
	name     string
	symbol   string
	decimals uint8

	mu          sync.RWMutex
	totalSupply *big.Int
	balances    map[common.Address]*big.Int
	votes       map[common.Address]*big.Int
	roles       map[common.Hash]map[common.Address]struct{}
}

// New 创建代币实例。admin 获得 DEFAULT_ADMIN_ROLE，可以再授予 MINTER_ROLE。
func New(addr, admin common.Address, name, symbol string) (*Token, error) {
	if addr == (common.Address{}) || admin == (common.Address{}) {
		return nil, protocol.ErrZeroAddress
	}
	t := &Token{
		addr:        addr,
		name:        name,
		symbol:      symbol,
		decimals:    18,
		totalSupply: new(big.Int),
		balances:    make(map[common.Address]*big.Int),
		votes:       make(map[common.Address]*big.Int),
		roles:       make(map[common.Hash]map[common.Address]struct{}),
	}
	t.grant(DefaultAdminRole, admin)
	return t, nil
}

// Address 代币合约地址
func (t *Token) Address() common.Address { return t.addr }

// Name 代币名称
func (t *Token) Name() string { return t.name }

// Symbol 代币符号
func (t *Token) Symbol() string { return t.symbol }

// Decimals 小数位数
func (t *Token) Decimals() uint8 { return t.decimals }

// TotalSupply 总供应量
func (t *Token) TotalSupply() *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.totalSupply)
}

// BalanceOf 查询余额
func (t *Token) BalanceOf(account common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if b, ok := t.balances[account]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Votes 查询操作者的累计铸造计数（TUP 为 upvotes，TDN 为 downvotes）
func (t *Token) Votes(operator common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if v, ok := t.votes[operator]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// HasRole 查询账户是否具备角色
func (t *Token) HasRole(role common.Hash, account common.Address) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.roles[role][account]
	return ok
}

// GrantRole 授予角色，调用方必须具备 DEFAULT_ADMIN_ROLE
func (t *Token) GrantRole(caller common.Address, role common.Hash, account common.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.roles[DefaultAdminRole][caller]; !ok {
		return protocol.ErrUnauthorizedRole
	}
	t.grant(role, account)
	return nil
}

// RevokeRole 撤销角色，调用方必须具备 DEFAULT_ADMIN_ROLE
func (t *Token) RevokeRole(caller common.Address, role common.Hash, account common.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.roles[DefaultAdminRole][caller]; !ok {
		return protocol.ErrUnauthorizedRole
	}
	if members, ok := t.roles[role]; ok {
		delete(members, account)
	}
	return nil
}

// Mint 向 recipient 铸造 amount，并把 operator 的累计计数加上 amount。
// 调用方必须具备 MINTER_ROLE。
func (t *Token) Mint(caller, operator, recipient common.Address, amount *big.Int) error {
	if recipient == (common.Address{}) {
		return protocol.ErrZeroAddress
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.roles[MinterRole][caller]; !ok {
		return protocol.ErrUnauthorizedRole
	}
	t.credit(recipient, amount)
	t.totalSupply.Add(t.totalSupply, amount)
	if v, ok := t.votes[operator]; ok {
		v.Add(v, amount)
	} else {
		t.votes[operator] = new(big.Int).Set(amount)
	}
	return nil
}

// RecoverERC20 把本合约持有的 foreign 代币全部余额转给 recipient。
// 调用方必须具备 DEFAULT_ADMIN_ROLE。
func (t *Token) RecoverERC20(caller common.Address, foreign *Token, recipient common.Address) error {
	if foreign == nil || foreign.addr == (common.Address{}) || recipient == (common.Address{}) {
		return protocol.ErrZeroAddress
	}
	t.mu.RLock()
	_, authorized := t.roles[DefaultAdminRole][caller]
	t.mu.RUnlock()
	if !authorized {
		return protocol.ErrUnauthorizedRole
	}
	amount := foreign.BalanceOf(t.addr)
	return foreign.Transfer(t.addr, recipient, amount)
}

// Transfer 账本内转账
func (t *Token) Transfer(from, to common.Address, amount *big.Int) error {
	if to == (common.Address{}) {
		return protocol.ErrZeroAddress
	}
	if amount.Sign() == 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.balances[from]
	if !ok || b.Cmp(amount) < 0 {
		return protocol.ErrInsufficientBalance
	}
	b.Sub(b, amount)
	t.credit(to, amount)
	return nil
}

func (t *Token) grant(role common.Hash, account common.Address) {
	members, ok := t.roles[role]
	if !ok {
		members = make(map[common.Address]struct{})
		t.roles[role] = members
	}
	members[account] = struct{}{}
}

func (t *Token) credit(account common.Address, amount *big.Int) {
	if b, ok := t.balances[account]; ok {
		b.Add(b, amount)
	} else {
		t.balances[account] = new(big.Int).Set(amount)
	}
}
