package deploy

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/immutable-ratings/goratings/internal/bank"
	"github.com/immutable-ratings/goratings/internal/protocol"
	"github.com/immutable-ratings/goratings/internal/ratings"
	"github.com/immutable-ratings/goratings/internal/token"
	"github.com/immutable-ratings/goratings/pkg/logger"
)

// Params 部署参数
type Params struct {
	ChainID  uint64
	Deployer common.Address
	Receiver common.Address
	// Sink 事件接收器（可选）
	Sink protocol.Sink
	// Bank 支付账本（可选，缺省新建）
	Bank *bank.Bank
	// MaxRatings 批量上限（可选）
	MaxRatings int
}

// Protocol 一次部署得到的完整协议实例
type Protocol struct {
	Deployment protocol.Deployment
	TokenUp    *token.Token
	TokenDown  *token.Token
	Engine     *ratings.Engine
	Bank       *bank.Bank
}

// Run 按部署脚本的顺序引导协议：
// 先部署 TUP、TDN，再部署评分引擎，最后给引擎授予两个代币的
// MINTER_ROLE。地址按部署者 nonce 顺序推导，可重放。
func Run(p Params) (*Protocol, error) {
	if p.Deployer == (common.Address{}) || p.Receiver == (common.Address{}) {
		return nil, protocol.ErrZeroAddress
	}
	if p.Bank == nil {
		p.Bank = bank.New()
	}

	tupAddr := crypto.CreateAddress(p.Deployer, 0)
	tdnAddr := crypto.CreateAddress(p.Deployer, 1)
	engineAddr := crypto.CreateAddress(p.Deployer, 2)

	tup, err := token.New(tupAddr, p.Deployer, "Thumbs Up", "TUP")
	if err != nil {
		return nil, err
	}
	tdn, err := token.New(tdnAddr, p.Deployer, "Thumbs Down", "TDN")
	if err != nil {
		return nil, err
	}

	engine, err := ratings.New(ratings.Config{
		Address:    engineAddr,
		Owner:      p.Deployer,
		TokenUp:    tup,
		TokenDown:  tdn,
		Receiver:   p.Receiver,
		Bank:       p.Bank,
		Sink:       p.Sink,
		MaxRatings: p.MaxRatings,
	})
	if err != nil {
		return nil, err
	}

	// 配置步骤：引擎需要两个代币的铸币角色
	if err := tup.GrantRole(p.Deployer, token.MinterRole, engineAddr); err != nil {
		return nil, err
	}
	if err := tdn.GrantRole(p.Deployer, token.MinterRole, engineAddr); err != nil {
		return nil, err
	}

	logger.Infof("[deploy] chain=%d tup=%s tdn=%s ratings=%s receiver=%s",
		p.ChainID, tupAddr.Hex(), tdnAddr.Hex(), engineAddr.Hex(), p.Receiver.Hex())

	return &Protocol{
		Deployment: protocol.Deployment{
			ChainID:   p.ChainID,
			TokenUp:   tupAddr,
			TokenDown: tdnAddr,
			Ratings:   engineAddr,
			Receiver:  p.Receiver,
			Owner:     p.Deployer,
		},
		TokenUp:   tup,
		TokenDown: tdn,
		Engine:    engine,
		Bank:      p.Bank,
	}, nil
}
