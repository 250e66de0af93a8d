// Package registry is the static lookup for supported tokens and native
// currencies: their chains, decimals, logical-asset mapping, dust
// thresholds, transfer-router deployments, and relative chain fee ranks.
// It is consumed read-only by the strategy generator and balance tracker.
package registry

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/FreePay/3cities-sub001/types"
)

// LogicalAsset describes one currency unit abstracted from any specific
// on-chain token.
type LogicalAsset struct {
	Ticker          types.Ticker
	Name            string
	DisplayDecimals int32 // digits shown to users; also the dust cutoff
}

// Registry is an immutable token/asset catalogue.
type Registry struct {
	tokens        []types.Token
	logicalByTick map[types.Ticker]types.Ticker
	logicalAssets map[types.Ticker]LogicalAsset
	routers       map[uint64]common.Address
	chainFeeRank  map[uint64]int
}

// Config assembles a registry from static data.
type Config struct {
	Tokens []types.Token

	// LogicalTickerByTokenTicker maps a token ticker (e.g. USDC) to the
	// logical asset it settles (e.g. USD).
	LogicalTickerByTokenTicker map[types.Ticker]types.Ticker

	LogicalAssets []LogicalAsset

	// Routers holds the canonical transfer-router deployment per chain.
	// Chains absent here have no canonical router.
	Routers map[uint64]common.Address

	// ChainFeeRank orders chains by typical transaction fee, lower being
	// cheaper. Unlisted chains rank after listed ones.
	ChainFeeRank map[uint64]int
}

// New builds a registry from cfg. The input maps and slices are copied.
func New(cfg Config) *Registry {
	r := &Registry{
		tokens:        append([]types.Token(nil), cfg.Tokens...),
		logicalByTick: make(map[types.Ticker]types.Ticker, len(cfg.LogicalTickerByTokenTicker)),
		logicalAssets: make(map[types.Ticker]LogicalAsset, len(cfg.LogicalAssets)),
		routers:       make(map[uint64]common.Address, len(cfg.Routers)),
		chainFeeRank:  make(map[uint64]int, len(cfg.ChainFeeRank)),
	}
	for tok, logical := range cfg.LogicalTickerByTokenTicker {
		r.logicalByTick[tok] = logical
	}
	for _, la := range cfg.LogicalAssets {
		r.logicalAssets[la.Ticker] = la
	}
	for id, addr := range cfg.Routers {
		r.routers[id] = addr
	}
	for id, rank := range cfg.ChainFeeRank {
		r.chainFeeRank[id] = rank
	}
	return r
}

// Tokens returns every registered token. Callers must not modify the
// returned slice's elements.
func (r *Registry) Tokens() []types.Token {
	return append([]types.Token(nil), r.tokens...)
}

// TokenByKey looks up a token by its key.
func (r *Registry) TokenByKey(key types.TokenKey) (types.Token, bool) {
	for _, t := range r.tokens {
		if t.Key() == key {
			return t, true
		}
	}
	return types.Token{}, false
}

// LogicalTicker maps a token ticker to its logical asset ticker.
func (r *Registry) LogicalTicker(tokenTicker types.Ticker) (types.Ticker, bool) {
	logical, ok := r.logicalByTick[tokenTicker]
	return logical, ok
}

// LogicalAsset returns the logical asset registered under ticker.
func (r *Registry) LogicalAsset(ticker types.Ticker) (LogicalAsset, bool) {
	la, ok := r.logicalAssets[ticker]
	return la, ok
}

// RouterAddress returns the canonical transfer-router deployment on the
// given chain, if one exists.
func (r *Registry) RouterAddress(chainID uint64) (common.Address, bool) {
	addr, ok := r.routers[chainID]
	return addr, ok
}

// ChainFeeRank returns the chain's fee rank, lower meaning cheaper.
// Unknown chains rank after every known chain.
func (r *Registry) ChainFeeRank(chainID uint64) int {
	if rank, ok := r.chainFeeRank[chainID]; ok {
		return rank
	}
	return len(r.chainFeeRank) + 1
}

// IsDust reports whether a raw integer balance of token rounds to zero at
// the display precision of its logical asset. Dust balances are treated as
// absent, not as present-but-zero.
func (r *Registry) IsDust(token types.Token, balance *big.Int) bool {
	if balance == nil || balance.Sign() == 0 {
		return true
	}
	disp := int32(2)
	if logical, ok := r.logicalByTick[token.Ticker]; ok {
		if la, ok := r.logicalAssets[logical]; ok {
			disp = la.DisplayDecimals
		}
	}
	d := decimal.NewFromBigInt(balance, -int32(token.Decimals))
	return d.Round(disp).IsZero()
}
