package protocol

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Side 评分方向
type Side int

const (
	// SideUp 好评（铸造 TUP）
	SideUp Side = iota
	// SideDown 差评（铸造 TDN）
	SideDown
)

// String 返回方向的可读名称
func (s Side) String() string {
	switch s {
	case SideUp:
		return "up"
	case SideDown:
		return "down"
	}
	return "unknown"
}

// RatingRequest 单条评分请求
// Amount 以代币最小单位计（18 位小数）
type RatingRequest struct {
	URL    string   `json:"url"`
	Amount *big.Int `json:"amount"`
}

// Deployment 一次协议部署的产物记录
type Deployment struct {
	ChainID   uint64         `json:"chainId"`
	TokenUp   common.Address `json:"tokenUp"`
	TokenDown common.Address `json:"tokenDown"`
	Ratings   common.Address `json:"ratings"`
	Receiver  common.Address `json:"receiver"`
	Owner     common.Address `json:"owner"`
}
