package pricing

import (
	"errors"
	"math/big"
	"testing"

	"github.com/immutable-ratings/goratings/internal/protocol"
)

func ether(s string) *big.Int {
	// 以 wei 计的期望值直接写常量，避免测试里重复实现定价
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad ether literal: " + s)
	}
	return v
}

func TestPayment_LinearRate(t *testing.T) {
	cases := []struct {
		tokens int64
		wei    string // 期望支付（wei）
	}{
		{1_000, "70000000000000"},          // 0.00007 ETH
		{100_000, "7000000000000000"},      // 0.007 ETH
		{1_000_000, "70000000000000000"},   // 0.07 ETH
		{10_000_000, "700000000000000000"}, // 0.7 ETH
	}
	for _, c := range cases {
		got := Payment(WholeTokens(c.tokens))
		if got.Cmp(ether(c.wei)) != 0 {
			t.Fatalf("Payment(%d tokens) got=%s want=%s", c.tokens, got, c.wei)
		}
	}
}

func TestPayment_ExactAcrossRange(t *testing.T) {
	// 全程整数运算：1000 的整数倍在 1e3..1e7 范围内不应有舍入
	for tokens := int64(1000); tokens <= 10_000_000; tokens *= 10 {
		amount := WholeTokens(tokens)
		p := Payment(amount)
		// p * 1e8 == amount * 7 说明除法无损
		lhs := new(big.Int).Mul(p, big.NewInt(100_000_000))
		rhs := new(big.Int).Mul(amount, big.NewInt(7))
		if lhs.Cmp(rhs) != 0 {
			t.Fatalf("rounding drift at %d tokens: %s", tokens, p)
		}
	}
}

func TestPaymentEther(t *testing.T) {
	if got := PaymentEther(WholeTokens(1000)).String(); got != "0.00007" {
		t.Fatalf("PaymentEther got=%s want=0.00007", got)
	}
	if got := PaymentEther(WholeTokens(10_000_000)).String(); got != "0.7" {
		t.Fatalf("PaymentEther got=%s want=0.7", got)
	}
}

func TestValidate(t *testing.T) {
	valid := []*big.Int{
		WholeTokens(1000),
		WholeTokens(2000),
		WholeTokens(10_000_000),
	}
	for _, a := range valid {
		if err := Validate(a); err != nil {
			t.Fatalf("Validate(%s) unexpected err: %v", a, err)
		}
	}

	invalid := []*big.Int{
		nil,
		new(big.Int),     // 零
		big.NewInt(-1),   // 负数
		WholeTokens(999), // 低于最小值
		big.NewInt(1000), // 不足一个整代币
		new(big.Int).Add(WholeTokens(1000), big.NewInt(1)), // 非整代币倍数
	}
	for _, a := range invalid {
		if err := Validate(a); !errors.Is(err, protocol.ErrInvalidRatingAmount) {
			t.Fatalf("Validate(%v) got=%v want=ErrInvalidRatingAmount", a, err)
		}
	}
}

func TestPayment_ZeroAndNil(t *testing.T) {
	if Payment(nil).Sign() != 0 {
		t.Fatal("Payment(nil) 应为 0")
	}
	if Payment(new(big.Int)).Sign() != 0 {
		t.Fatal("Payment(0) 应为 0")
	}
}
