package chainreg

import "testing"

func TestGetContractConfig(t *testing.T) {
	cfg, err := GetContractConfig(ChainBaseSepolia)
	if err != nil {
		t.Fatalf("GetContractConfig failed: %v", err)
	}
	if cfg.Ratings == "" || cfg.Receiver == "" {
		t.Fatal("测试网配置不应为空")
	}
	if cfg.RPCURL != "https://sepolia.base.org" {
		t.Fatalf("RPC 地址不符: %s", cfg.RPCURL)
	}

	if _, err := GetContractConfig(Chain(1)); err == nil {
		t.Fatal("未知链 ID 应报错")
	}
}
