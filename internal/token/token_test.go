package token

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/immutable-ratings/goratings/internal/protocol"
)

var (
	tokenAddr = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	admin     = common.HexToAddress("0x0000000000000000000000000000000000000001")
	minter    = common.HexToAddress("0x0000000000000000000000000000000000000002")
	alice     = common.HexToAddress("0x0000000000000000000000000000000000000003")
	bob       = common.HexToAddress("0x0000000000000000000000000000000000000004")
)

func newTestToken(t *testing.T) *Token {
	t.Helper()
	tok, err := New(tokenAddr, admin, "Thumbs Up", "TUP")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return tok
}

func TestNew_ZeroAddress(t *testing.T) {
	if _, err := New(common.Address{}, admin, "x", "X"); !errors.Is(err, protocol.ErrZeroAddress) {
		t.Fatalf("零代币地址 got=%v", err)
	}
	if _, err := New(tokenAddr, common.Address{}, "x", "X"); !errors.Is(err, protocol.ErrZeroAddress) {
		t.Fatalf("零管理员地址 got=%v", err)
	}
}

func TestMetadata(t *testing.T) {
	tok := newTestToken(t)
	if tok.Name() != "Thumbs Up" || tok.Symbol() != "TUP" || tok.Decimals() != 18 {
		t.Fatalf("metadata 不符: %s %s %d", tok.Name(), tok.Symbol(), tok.Decimals())
	}
	if !tok.HasRole(DefaultAdminRole, admin) {
		t.Fatal("admin 应持有 DEFAULT_ADMIN_ROLE")
	}
}

func TestMint_RequiresRole(t *testing.T) {
	tok := newTestToken(t)
	amount := big.NewInt(1000)

	if err := tok.Mint(minter, alice, bob, amount); !errors.Is(err, protocol.ErrUnauthorizedRole) {
		t.Fatalf("未授权铸币 got=%v", err)
	}
	if tok.TotalSupply().Sign() != 0 {
		t.Fatal("失败的铸币不应改变总供应量")
	}

	if err := tok.GrantRole(admin, MinterRole, minter); err != nil {
		t.Fatal(err)
	}
	if err := tok.Mint(minter, alice, bob, amount); err != nil {
		t.Fatalf("授权后铸币失败: %v", err)
	}
	if tok.BalanceOf(bob).Cmp(amount) != 0 {
		t.Fatalf("余额不符: %s", tok.BalanceOf(bob))
	}
	if tok.TotalSupply().Cmp(amount) != 0 {
		t.Fatalf("总供应量不符: %s", tok.TotalSupply())
	}
}

func TestMint_VotesTracksOperator(t *testing.T) {
	tok := newTestToken(t)
	if err := tok.GrantRole(admin, MinterRole, minter); err != nil {
		t.Fatal(err)
	}

	// operator 与 recipient 分离：票数记在 operator 名下
	if err := tok.Mint(minter, alice, bob, big.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	if err := tok.Mint(minter, alice, bob, big.NewInt(50)); err != nil {
		t.Fatal(err)
	}
	if tok.Votes(alice).Cmp(big.NewInt(150)) != 0 {
		t.Fatalf("operator 票数 got=%s want=150", tok.Votes(alice))
	}
	if tok.Votes(bob).Sign() != 0 {
		t.Fatal("recipient 不应累计票数")
	}
}

func TestMint_ZeroRecipient(t *testing.T) {
	tok := newTestToken(t)
	_ = tok.GrantRole(admin, MinterRole, minter)
	if err := tok.Mint(minter, alice, common.Address{}, big.NewInt(1)); !errors.Is(err, protocol.ErrZeroAddress) {
		t.Fatalf("零地址接收方 got=%v", err)
	}
}

func TestGrantRevokeRole(t *testing.T) {
	tok := newTestToken(t)

	if err := tok.GrantRole(alice, MinterRole, minter); !errors.Is(err, protocol.ErrUnauthorizedRole) {
		t.Fatalf("非管理员授权 got=%v", err)
	}
	if err := tok.GrantRole(admin, MinterRole, minter); err != nil {
		t.Fatal(err)
	}
	if !tok.HasRole(MinterRole, minter) {
		t.Fatal("授权后应持有角色")
	}
	if err := tok.RevokeRole(alice, MinterRole, minter); !errors.Is(err, protocol.ErrUnauthorizedRole) {
		t.Fatalf("非管理员撤销 got=%v", err)
	}
	if err := tok.RevokeRole(admin, MinterRole, minter); err != nil {
		t.Fatal(err)
	}
	if tok.HasRole(MinterRole, minter) {
		t.Fatal("撤销后不应再持有角色")
	}
}

func TestTransfer(t *testing.T) {
	tok := newTestToken(t)
	_ = tok.GrantRole(admin, MinterRole, minter)
	_ = tok.Mint(minter, alice, alice, big.NewInt(100))

	if err := tok.Transfer(alice, bob, big.NewInt(40)); err != nil {
		t.Fatal(err)
	}
	if tok.BalanceOf(alice).Cmp(big.NewInt(60)) != 0 || tok.BalanceOf(bob).Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("转账后余额不符: alice=%s bob=%s", tok.BalanceOf(alice), tok.BalanceOf(bob))
	}
	if err := tok.Transfer(alice, bob, big.NewInt(61)); !errors.Is(err, protocol.ErrInsufficientBalance) {
		t.Fatalf("超额转账 got=%v", err)
	}
	if err := tok.Transfer(alice, common.Address{}, big.NewInt(1)); !errors.Is(err, protocol.ErrZeroAddress) {
		t.Fatalf("零地址转账 got=%v", err)
	}
	// 零金额视为 no-op
	if err := tok.Transfer(bob, alice, new(big.Int)); err != nil {
		t.Fatalf("零金额转账应为 no-op: %v", err)
	}
}

func TestRecoverERC20(t *testing.T) {
	tup := newTestToken(t)
	tdn, err := New(common.HexToAddress("0x00000000000000000000000000000000000000b2"), admin, "Thumbs Down", "TDN")
	if err != nil {
		t.Fatal(err)
	}
	_ = tdn.GrantRole(admin, MinterRole, minter)

	// 误转进 tup 合约地址的 TDN 可由管理员取回
	if err := tdn.Mint(minter, alice, tup.Address(), big.NewInt(500)); err != nil {
		t.Fatal(err)
	}
	if err := tup.RecoverERC20(alice, tdn, bob); !errors.Is(err, protocol.ErrUnauthorizedRole) {
		t.Fatalf("非管理员取回 got=%v", err)
	}
	if err := tup.RecoverERC20(admin, tdn, bob); err != nil {
		t.Fatal(err)
	}
	if tdn.BalanceOf(bob).Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("取回后余额不符: %s", tdn.BalanceOf(bob))
	}
	if tdn.BalanceOf(tup.Address()).Sign() != 0 {
		t.Fatal("合约地址上不应有剩余")
	}

	// 没有余额时取回同样成功（零金额 no-op）
	if err := tup.RecoverERC20(admin, tdn, bob); err != nil {
		t.Fatalf("空余额取回应成功: %v", err)
	}
	if err := tup.RecoverERC20(admin, nil, bob); !errors.Is(err, protocol.ErrZeroAddress) {
		t.Fatalf("nil 代币 got=%v", err)
	}
	if err := tup.RecoverERC20(admin, tdn, common.Address{}); !errors.Is(err, protocol.ErrZeroAddress) {
		t.Fatalf("零地址接收方 got=%v", err)
	}
}

func TestSnapshotRestore(t *testing.T) {
	tok := newTestToken(t)
	_ = tok.GrantRole(admin, MinterRole, minter)
	_ = tok.Mint(minter, alice, bob, big.NewInt(777))

	snap := tok.Snapshot()
	restored, err := New(tokenAddr, admin, "Thumbs Up", "TUP")
	if err != nil {
		t.Fatal(err)
	}
	restored.Restore(snap)

	if restored.BalanceOf(bob).Cmp(big.NewInt(777)) != 0 {
		t.Fatalf("恢复后余额不符: %s", restored.BalanceOf(bob))
	}
	if restored.Votes(alice).Cmp(big.NewInt(777)) != 0 {
		t.Fatalf("恢复后票数不符: %s", restored.Votes(alice))
	}
	if restored.TotalSupply().Cmp(big.NewInt(777)) != 0 {
		t.Fatalf("恢复后总供应量不符: %s", restored.TotalSupply())
	}
	if !restored.HasRole(MinterRole, minter) {
		t.Fatal("恢复后铸币角色丢失")
	}
}
