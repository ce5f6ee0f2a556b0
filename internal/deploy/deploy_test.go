package deploy

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/immutable-ratings/goratings/internal/pricing"
	"github.com/immutable-ratings/goratings/internal/protocol"
	"github.com/immutable-ratings/goratings/internal/store"
	"github.com/immutable-ratings/goratings/internal/token"
)

var (
	deployer = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	receiver = common.HexToAddress("0x0000000000000000000000000000000000000a02")
	rater    = common.HexToAddress("0x0000000000000000000000000000000000000a03")
)

func TestRun(t *testing.T) {
	p, err := Run(Params{ChainID: 84532, Deployer: deployer, Receiver: receiver})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// 地址按部署者 nonce 顺序推导
	if p.Deployment.TokenUp != crypto.CreateAddress(deployer, 0) {
		t.Fatalf("TUP 地址不符: %s", p.Deployment.TokenUp.Hex())
	}
	if p.Deployment.TokenDown != crypto.CreateAddress(deployer, 1) {
		t.Fatalf("TDN 地址不符: %s", p.Deployment.TokenDown.Hex())
	}
	if p.Deployment.Ratings != crypto.CreateAddress(deployer, 2) {
		t.Fatalf("引擎地址不符: %s", p.Deployment.Ratings.Hex())
	}
	if p.Deployment.Owner != deployer || p.Deployment.Receiver != receiver {
		t.Fatal("owner / receiver 不符")
	}
	if p.TokenUp.Symbol() != "TUP" || p.TokenDown.Symbol() != "TDN" {
		t.Fatalf("代币符号不符: %s %s", p.TokenUp.Symbol(), p.TokenDown.Symbol())
	}

	// 配置步骤完成后引擎持有两个代币的铸币角色
	if !p.TokenUp.HasRole(token.MinterRole, p.Deployment.Ratings) {
		t.Fatal("引擎缺少 TUP 铸币角色")
	}
	if !p.TokenDown.HasRole(token.MinterRole, p.Deployment.Ratings) {
		t.Fatal("引擎缺少 TDN 铸币角色")
	}

	// 部署完即可评分
	p.Bank.Deposit(rater, big.NewInt(1e18))
	amount := pricing.WholeTokens(1000)
	if err := p.Engine.CreateUpRating(rater, protocol.RatingRequest{URL: "https://example.com", Amount: amount}, pricing.Payment(amount)); err != nil {
		t.Fatalf("部署后评分失败: %v", err)
	}
}

func TestRun_ZeroAddress(t *testing.T) {
	if _, err := Run(Params{Deployer: common.Address{}, Receiver: receiver}); !errors.Is(err, protocol.ErrZeroAddress) {
		t.Fatalf("零部署者 got=%v", err)
	}
	if _, err := Run(Params{Deployer: deployer, Receiver: common.Address{}}); !errors.Is(err, protocol.ErrZeroAddress) {
		t.Fatalf("零收款地址 got=%v", err)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	svc, err := store.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	p, err := Run(Params{ChainID: 84532, Deployer: deployer, Receiver: receiver})
	if err != nil {
		t.Fatal(err)
	}
	p.Bank.Deposit(rater, big.NewInt(1e18))
	amount := pricing.WholeTokens(1000)
	if err := p.Engine.CreateUpRating(rater, protocol.RatingRequest{URL: "https://example.com", Amount: amount}, pricing.Payment(amount)); err != nil {
		t.Fatal(err)
	}
	if err := p.Save(svc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	restored, err := Load(svc, nil, 0)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if restored.Deployment != p.Deployment {
		t.Fatalf("部署记录不符: %+v", restored.Deployment)
	}
	market := restored.Engine.GetMarketAddress("https://example.com")
	if restored.TokenUp.BalanceOf(market).Cmp(amount) != 0 {
		t.Fatalf("恢复后市场余额不符: %s", restored.TokenUp.BalanceOf(market))
	}
	if !restored.Engine.MarketExists("https://example.com") {
		t.Fatal("恢复后市场丢失")
	}
	if restored.Engine.GetUserRatings(rater).Cmp(amount) != 0 {
		t.Fatalf("恢复后用户评分量不符: %s", restored.Engine.GetUserRatings(rater))
	}
	cost := pricing.Payment(amount)
	if restored.Bank.BalanceOf(receiver).Cmp(cost) != 0 {
		t.Fatalf("恢复后收款余额不符: %s", restored.Bank.BalanceOf(receiver))
	}
	// 恢复的引擎立即可用
	if err := restored.Engine.CreateDownRating(rater, protocol.RatingRequest{URL: "https://example.com", Amount: amount}, cost); err != nil {
		t.Fatalf("恢复后评分失败: %v", err)
	}
}

func TestLoad_EmptyStore(t *testing.T) {
	svc, err := store.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	if _, err := Load(svc, nil, 0); !errors.Is(err, store.ErrNotExists) {
		t.Fatalf("空存储 got=%v want=ErrNotExists", err)
	}
}
