package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/immutable-ratings/goratings/internal/chainreg"
	"github.com/immutable-ratings/goratings/internal/deploy"
	"github.com/immutable-ratings/goratings/internal/store"
	"github.com/immutable-ratings/goratings/pkg/logger"
)

// 初始化一套全新的协议状态并落盘：部署 TUP、TDN、评分引擎，
// 给引擎授予铸币角色，写入部署记录。对应链上部署脚本的职责。
func main() {
	_ = godotenv.Load()

	getenv := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}

	var (
		chainID   = flag.Uint64("chain", 84532, "chain id (8453 base, 84532 base-sepolia)")
		deployer  = flag.String("deployer", getenv("GORATINGS_DEPLOYER", ""), "deployer address")
		receiver  = flag.String("receiver", getenv("GORATINGS_RECEIVER", ""), "payment receiver address")
		storePath = flag.String("store", getenv("GORATINGS_STORE", "data/state"), "badger state directory")
	)
	flag.Parse()

	if err := logger.Init(logger.Config{Level: "info"}); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}

	// 收款地址缺省取链上注册表里的已知配置
	if *receiver == "" {
		if cfg, err := chainreg.GetContractConfig(chainreg.Chain(*chainID)); err == nil {
			*receiver = cfg.Receiver
		}
	}
	if !common.IsHexAddress(*deployer) {
		log.Fatal("deployer address is required")
	}
	if !common.IsHexAddress(*receiver) {
		log.Fatal("receiver address is required")
	}

	svc, err := store.Open(*storePath)
	if err != nil {
		log.Fatalf("open store failed: %v", err)
	}
	defer svc.Close()

	if _, err := deploy.Load(svc, nil, 0); err == nil {
		log.Fatal("store already holds a deployment; refusing to overwrite")
	}

	proto, err := deploy.Run(deploy.Params{
		ChainID:  *chainID,
		Deployer: common.HexToAddress(*deployer),
		Receiver: common.HexToAddress(*receiver),
	})
	if err != nil {
		log.Fatalf("deploy failed: %v", err)
	}
	if err := proto.Save(svc); err != nil {
		log.Fatalf("persist deployment failed: %v", err)
	}

	d := proto.Deployment
	fmt.Printf("chain:     %d\n", d.ChainID)
	fmt.Printf("TUP:       %s\n", d.TokenUp.Hex())
	fmt.Printf("TDN:       %s\n", d.TokenDown.Hex())
	fmt.Printf("ratings:   %s\n", d.Ratings.Hex())
	fmt.Printf("receiver:  %s\n", d.Receiver.Hex())
	fmt.Printf("owner:     %s\n", d.Owner.Hex())
}
