package chainreg

import "fmt"

// Chain 区块链网络
type Chain int

const (
	// ChainBase Base 主网
	ChainBase Chain = 8453
	// ChainBaseSepolia Base Sepolia 测试网
	ChainBaseSepolia Chain = 84532
)

// ContractConfig 一条链上的协议合约配置
type ContractConfig struct {
	TokenUp   string // TUP 代币地址
	TokenDown string // TDN 代币地址
	Ratings   string // ImmutableRatings 合约地址
	Receiver  string // 协议收款地址
	RPCURL    string // 节点 RPC 地址
}

// BaseMainnetContracts Base 主网合约地址（尚未部署）
var BaseMainnetContracts = ContractConfig{
	TokenUp:   "",
	TokenDown: "",
	Ratings:   "",
	Receiver:  "",
	RPCURL:    "https://mainnet.base.org",
}

// BaseSepoliaContracts Base Sepolia 测试网合约地址
var BaseSepoliaContracts = ContractConfig{
	TokenUp:   "0x9E8765f0958F7FafD5c15F4F24E7e0a9c03f61e1",
	TokenDown: "0x14932F95a27364e9d27E899EBA1f6F54C11429b4",
	Ratings:   "0xa7F2e133604A663395d7E4f008faCB94c097DcB3",
	Receiver:  "0x30e7120ce8c0ABA197f1C4EccF2F4E1e1C75ab1d",
	RPCURL:    "https://sepolia.base.org",
}

// GetContractConfig 根据链 ID 获取合约配置
func GetContractConfig(chainID Chain) (*ContractConfig, error) {
	switch chainID {
	case ChainBase:
		return &BaseMainnetContracts, nil
	case ChainBaseSepolia:
		return &BaseSepoliaContracts, nil
	default:
		return nil, fmt.Errorf("不支持的链 ID: %d", chainID)
	}
}
