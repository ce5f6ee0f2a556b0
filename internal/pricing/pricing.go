package pricing

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/immutable-ratings/goratings/internal/protocol"
)

// 定价为固定线性费率：每 1000 个整代币收 0.00007 ETH，
// 即每个最小单位收 7/1e8 wei，全程整数运算无舍入累积。
var (
	// WholeToken 一个整代币（18 位小数）
	WholeToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	// MinAmount 单条评分的最小数量：1000 个整代币
	MinAmount = new(big.Int).Mul(big.NewInt(1000), WholeToken)

	rateNum = big.NewInt(7)
	rateDen = big.NewInt(100_000_000)
)

// WholeTokens 把整代币个数换算成最小单位数量
func WholeTokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), WholeToken)
}

// Validate 校验评分数量：必须为正、是整代币的倍数、且不低于最小值
func Validate(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return protocol.ErrInvalidRatingAmount
	}
	if new(big.Int).Mod(amount, WholeToken).Sign() != 0 {
		return protocol.ErrInvalidRatingAmount
	}
	if amount.Cmp(MinAmount) < 0 {
		return protocol.ErrInvalidRatingAmount
	}
	return nil
}

// Payment 计算数量对应的支付金额（wei）。
// 对校验通过的数量结果是精确的：amount 是 1e18 的倍数，
// 乘 7 后必被 1e8 整除。
func Payment(amount *big.Int) *big.Int {
	if amount == nil || amount.Sign() <= 0 {
		return new(big.Int)
	}
	p := new(big.Int).Mul(amount, rateNum)
	return p.Div(p, rateDen)
}

// PaymentEther 以 ETH 为单位返回支付金额，用于展示和 API 响应
func PaymentEther(amount *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(Payment(amount), -18)
}
