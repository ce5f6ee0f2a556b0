package protocol

import "errors"

// 协议错误。与链上自定义错误一一对应，全部为可比较的哨兵值，
// 调用方用 errors.Is 判定。
var (
	// ErrEmptyURL URL 为空
	ErrEmptyURL = errors.New("empty url")
	// ErrMarketAlreadyExists 市场已存在（显式创建路径）
	ErrMarketAlreadyExists = errors.New("market already exists")
	// ErrInvalidRatingAmount 数量为零、低于最小值或不是整代币的倍数
	ErrInvalidRatingAmount = errors.New("invalid rating amount")
	// ErrInsufficientPayment 附带的支付低于所需金额
	ErrInsufficientPayment = errors.New("insufficient payment")
	// ErrContractPaused 合约已暂停，拒绝所有变更操作
	ErrContractPaused = errors.New("contract paused")
	// ErrMaxRatingsExceeded 批量条目数超过上限
	ErrMaxRatingsExceeded = errors.New("max ratings exceeded")
	// ErrZeroAddress 需要地址的参数传入了零地址
	ErrZeroAddress = errors.New("zero address")
	// ErrUnauthorizedOwner 非所有者调用 owner-only 操作
	ErrUnauthorizedOwner = errors.New("caller is not the owner")
	// ErrUnauthorizedPendingOwner 非候选所有者调用 AcceptOwnership
	ErrUnauthorizedPendingOwner = errors.New("caller is not the pending owner")
	// ErrUnauthorizedRole 调用方不具备所需角色（如 MINTER_ROLE）
	ErrUnauthorizedRole = errors.New("account is missing role")
	// ErrInsufficientBalance 余额不足以完成转账
	ErrInsufficientBalance = errors.New("insufficient balance")
)
