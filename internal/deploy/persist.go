package deploy

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/immutable-ratings/goratings/internal/bank"
	"github.com/immutable-ratings/goratings/internal/protocol"
	"github.com/immutable-ratings/goratings/internal/ratings"
	"github.com/immutable-ratings/goratings/internal/store"
	"github.com/immutable-ratings/goratings/internal/token"
)

// persistedState 落盘的协议全量状态
type persistedState struct {
	Deployment protocol.Deployment         `json:"deployment"`
	Engine     ratings.State               `json:"engine"`
	TokenUp    token.Snapshot              `json:"tokenUp"`
	TokenDown  token.Snapshot              `json:"tokenDown"`
	Bank       map[common.Address]*big.Int `json:"bank"`
}

// Save 把协议全量状态写入存储
func (p *Protocol) Save(svc store.Service) error {
	st := persistedState{
		Deployment: p.Deployment,
		Engine:     p.Engine.Snapshot(),
		TokenUp:    p.TokenUp.Snapshot(),
		TokenDown:  p.TokenDown.Snapshot(),
		Bank:       p.Bank.Snapshot(),
	}
	return svc.NewStore("state", "protocol", "all").Save(st)
}

// Load 从存储恢复协议。存储为空时返回 store.ErrNotExists，
// 调用方据此决定是否执行全新部署。
func Load(svc store.Service, sink protocol.Sink, maxRatings int) (*Protocol, error) {
	var st persistedState
	if err := svc.NewStore("state", "protocol", "all").Load(&st); err != nil {
		return nil, err
	}
	if st.Deployment.Ratings == (common.Address{}) {
		return nil, fmt.Errorf("load protocol: %w", errors.New("corrupt deployment record"))
	}

	tup, err := token.New(st.Deployment.TokenUp, st.Deployment.Owner, st.TokenUp.Name, st.TokenUp.Symbol)
	if err != nil {
		return nil, err
	}
	tup.Restore(st.TokenUp)
	tdn, err := token.New(st.Deployment.TokenDown, st.Deployment.Owner, st.TokenDown.Name, st.TokenDown.Symbol)
	if err != nil {
		return nil, err
	}
	tdn.Restore(st.TokenDown)

	p := &Protocol{Deployment: st.Deployment}
	p.Bank = bankFromSnapshot(st.Bank)

	engine, err := ratings.New(ratings.Config{
		Address:    st.Deployment.Ratings,
		Owner:      st.Engine.Owner,
		TokenUp:    tup,
		TokenDown:  tdn,
		Receiver:   st.Engine.Receiver,
		Bank:       p.Bank,
		Sink:       sink,
		MaxRatings: maxRatings,
	})
	if err != nil {
		return nil, err
	}
	engine.Restore(st.Engine)

	p.TokenUp = tup
	p.TokenDown = tdn
	p.Engine = engine
	return p, nil
}

func bankFromSnapshot(balances map[common.Address]*big.Int) *bank.Bank {
	b := bank.New()
	b.Restore(balances)
	return b
}
