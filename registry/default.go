package registry

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/FreePay/3cities-sub001/types"
)

// Supported mainnet chain ids.
const (
	ChainEthereum uint64 = 1
	ChainOptimism uint64 = 10
	ChainPolygon  uint64 = 137
	ChainBase     uint64 = 8453
	ChainArbitrum uint64 = 42161
)

func addr(hex string) *common.Address {
	a := common.HexToAddress(hex)
	return &a
}

// Default returns the production registry: stablecoins and ether across
// the supported mainnet chains, plus the native currency of each.
func Default() *Registry {
	return New(Config{
		Tokens: []types.Token{
			// Ethereum
			{Name: "Ether", Ticker: "ETH", ChainID: ChainEthereum, Decimals: 18},
			{Name: "Wrapped Ether", Ticker: "WETH", ChainID: ChainEthereum, Decimals: 18, ContractAddress: addr("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")},
			{Name: "USD Coin", Ticker: "USDC", ChainID: ChainEthereum, Decimals: 6, ContractAddress: addr("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")},
			{Name: "Tether USD", Ticker: "USDT", ChainID: ChainEthereum, Decimals: 6, ContractAddress: addr("0xdAC17F958D2ee523a2206206994597C13D831ec7")},
			{Name: "Dai", Ticker: "DAI", ChainID: ChainEthereum, Decimals: 18, ContractAddress: addr("0x6B175474E89094C44Da98b954EedeAC495271d0F")},

			// OP Mainnet
			{Name: "Ether", Ticker: "ETH", ChainID: ChainOptimism, Decimals: 18},
			{Name: "Wrapped Ether", Ticker: "WETH", ChainID: ChainOptimism, Decimals: 18, ContractAddress: addr("0x4200000000000000000000000000000000000006")},
			{Name: "USD Coin", Ticker: "USDC", ChainID: ChainOptimism, Decimals: 6, ContractAddress: addr("0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85")},
			{Name: "Tether USD", Ticker: "USDT", ChainID: ChainOptimism, Decimals: 6, ContractAddress: addr("0x94b008aA00579c1307B0EF2c499aD98a8ce58e58")},
			{Name: "Dai", Ticker: "DAI", ChainID: ChainOptimism, Decimals: 18, ContractAddress: addr("0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1")},

			// Base
			{Name: "Ether", Ticker: "ETH", ChainID: ChainBase, Decimals: 18},
			{Name: "Wrapped Ether", Ticker: "WETH", ChainID: ChainBase, Decimals: 18, ContractAddress: addr("0x4200000000000000000000000000000000000006")},
			{Name: "USD Coin", Ticker: "USDC", ChainID: ChainBase, Decimals: 6, ContractAddress: addr("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")},
			{Name: "Dai", Ticker: "DAI", ChainID: ChainBase, Decimals: 18, ContractAddress: addr("0x50c5725949A6F0c72E6C4a641F24049A917DB0Cb")},

			// Arbitrum One
			{Name: "Ether", Ticker: "ETH", ChainID: ChainArbitrum, Decimals: 18},
			{Name: "Wrapped Ether", Ticker: "WETH", ChainID: ChainArbitrum, Decimals: 18, ContractAddress: addr("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1")},
			{Name: "USD Coin", Ticker: "USDC", ChainID: ChainArbitrum, Decimals: 6, ContractAddress: addr("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")},
			{Name: "Tether USD", Ticker: "USDT", ChainID: ChainArbitrum, Decimals: 6, ContractAddress: addr("0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9")},
			{Name: "Dai", Ticker: "DAI", ChainID: ChainArbitrum, Decimals: 18, ContractAddress: addr("0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1")},

			// Polygon PoS
			{Name: "Polygon", Ticker: "MATIC", ChainID: ChainPolygon, Decimals: 18},
			{Name: "Wrapped Ether", Ticker: "WETH", ChainID: ChainPolygon, Decimals: 18, ContractAddress: addr("0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619")},
			{Name: "USD Coin", Ticker: "USDC", ChainID: ChainPolygon, Decimals: 6, ContractAddress: addr("0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359")},
			{Name: "Tether USD", Ticker: "USDT", ChainID: ChainPolygon, Decimals: 6, ContractAddress: addr("0xc2132D05D31c914a87C6611C10748AEb04B58e8F")},
			{Name: "Dai", Ticker: "DAI", ChainID: ChainPolygon, Decimals: 18, ContractAddress: addr("0x8f3Cf7ad23Cd3CaDbD9735AFf958023239c6A063")},
		},
		LogicalTickerByTokenTicker: map[types.Ticker]types.Ticker{
			"ETH":   "ETH",
			"WETH":  "ETH",
			"USDC":  "USD",
			"USDT":  "USD",
			"DAI":   "USD",
			"MATIC": "MATIC",
		},
		LogicalAssets: []LogicalAsset{
			{Ticker: "USD", Name: "US Dollar", DisplayDecimals: 2},
			{Ticker: "ETH", Name: "Ether", DisplayDecimals: 4},
			{Ticker: "MATIC", Name: "Polygon", DisplayDecimals: 2},
		},
		Routers: map[uint64]common.Address{
			// Native transfers on L2s route through the canonical
			// transfer router; Ethereum L1 and Polygon have no deployment.
			ChainOptimism: common.HexToAddress("0x630A6C8f9bAdcf4bE3dD85c17343054fE52aE2aE"),
			ChainBase:     common.HexToAddress("0x630A6C8f9bAdcf4bE3dD85c17343054fE52aE2aE"),
			ChainArbitrum: common.HexToAddress("0x630A6C8f9bAdcf4bE3dD85c17343054fE52aE2aE"),
		},
		ChainFeeRank: map[uint64]int{
			ChainOptimism: 1,
			ChainBase:     1,
			ChainArbitrum: 1,
			ChainPolygon:  2,
			ChainEthereum: 3,
		},
	})
}
