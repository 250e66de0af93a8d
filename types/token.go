package types

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Token identifies a specific on-chain asset: an ERC-20 contract or, when
// ContractAddress is nil, the chain's native currency.
type Token struct {
	Name            string          `json:"name"`
	Ticker          Ticker          `json:"ticker"`
	ChainID         uint64          `json:"chainId"`
	ContractAddress *common.Address `json:"contractAddress,omitempty"` // nil for native currency
	Decimals        int             `json:"decimals"`
	Testnet         bool            `json:"testnet,omitempty"`
}

// IsNative reports whether the token is a chain's native currency.
func (t Token) IsNative() bool {
	return t.ContractAddress == nil
}

// TokenKey is a stable unique key for one Token or native currency,
// derived from (chain id, contract address or native marker). It is the
// map key for balances and the identity under which strategies are
// tracked across regeneration.
type TokenKey string

// Key derives the token's TokenKey.
func (t Token) Key() TokenKey {
	if t.ContractAddress == nil {
		return TokenKey(fmt.Sprintf("%d-native", t.ChainID))
	}
	return TokenKey(fmt.Sprintf("%d-%s", t.ChainID, strings.ToLower(t.ContractAddress.Hex())))
}

// TokenBalance is one wallet's balance of one token, always a
// full-precision integer in the token's native decimals.
type TokenBalance struct {
	Address  common.Address `json:"address"`
	TokenKey TokenKey       `json:"tokenKey"`
	Balance  *big.Int       `json:"balance"`
	AsOf     time.Time      `json:"asOf"`
}

// AddressContext aggregates the tracked balances of one connected address.
// It is rebuilt incrementally as balances stream in and reset to empty when
// the connected address changes; a TokenKey with no entry means a zero (or
// dust) balance, never "unknown".
type AddressContext struct {
	Address       common.Address            `json:"address"`
	TokenBalances map[TokenKey]TokenBalance `json:"tokenBalances"`
}

// Balance returns the tracked balance for key, or zero if absent.
func (ac AddressContext) Balance(key TokenKey) *big.Int {
	if tb, ok := ac.TokenBalances[key]; ok && tb.Balance != nil {
		return tb.Balance
	}
	return new(big.Int)
}
