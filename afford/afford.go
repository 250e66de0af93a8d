// Package afford evaluates whether a wallet can afford candidate
// settlements and ranks candidates by distance to affordability in a
// common denomination. All comparisons operate on full-precision integers
// within a single token's decimals; cross-token comparison happens only
// after both sides are converted into a common logical asset.
package afford

import (
	"math/big"
	"sort"

	"github.com/FreePay/3cities-sub001/conversion"
	"github.com/FreePay/3cities-sub001/registry"
	"github.com/FreePay/3cities-sub001/types"
)

// USD is the common denomination used when ranking shortfalls across
// tokens.
const USD = types.Ticker("USD")

// CanAfford reports whether the tracked balance for key covers amount.
// An absent balance entry means zero, not unknown.
func CanAfford(ac types.AddressContext, key types.TokenKey, amount *big.Int) bool {
	return ac.Balance(key).Cmp(amount) >= 0
}

// AmountNeededToAfford returns amount - balance for key: positive means
// short by that much, zero or negative means affordable with that much
// headroom. The result is in the token's own decimals.
func AmountNeededToAfford(ac types.AddressContext, key types.TokenKey, amount *big.Int) *big.Int {
	return new(big.Int).Sub(amount, ac.Balance(key))
}

// PartitionStrategiesByAffordability splits strategies into affordable
// and unaffordable, preserving relative order within each partition.
func PartitionStrategiesByAffordability(ac types.AddressContext, strategies []types.Strategy) (affordable, unaffordable []types.Strategy) {
	for _, s := range strategies {
		if CanAfford(ac, s.Key(), s.TokenTransfer.Amount) {
			affordable = append(affordable, s)
		} else {
			unaffordable = append(unaffordable, s)
		}
	}
	return affordable, unaffordable
}

// SortStrategiesByLogicalAmountNeededToAfford sorts strategies in place,
// ascending by shortfall converted to USD via the two-step conversion:
// token native decimals -> logical-asset decimals -> USD. A strategy
// whose logical asset cannot be resolved, or whose shortfall has no USD
// rate, sorts after any strategy with a known value; two unknowns keep
// their relative order.
func SortStrategiesByLogicalAmountNeededToAfford(reg *registry.Registry, rates types.ExchangeRates, ac types.AddressContext, strategies []types.Strategy) {
	cache := make(map[types.TokenKey]*big.Int, len(strategies))
	usdShortfall := func(s types.Strategy) *big.Int {
		key := s.Key()
		if v, ok := cache[key]; ok {
			return v
		}
		v := shortfallInUSD(reg, rates, ac, s)
		cache[key] = v
		return v
	}

	sort.SliceStable(strategies, func(i, j int) bool {
		a, b := usdShortfall(strategies[i]), usdShortfall(strategies[j])
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Cmp(b) < 0
		}
	})
}

// shortfallInUSD returns the strategy's shortfall in USD at
// LogicalAssetDecimals, or nil when it cannot be valued.
func shortfallInUSD(reg *registry.Registry, rates types.ExchangeRates, ac types.AddressContext, s types.Strategy) *big.Int {
	token := s.TokenTransfer.Token
	logical, ok := reg.LogicalTicker(token.Ticker)
	if !ok {
		return nil
	}
	needed := AmountNeededToAfford(ac, s.Key(), s.TokenTransfer.Amount)
	asLogical := conversion.Rescale(needed, token.Decimals, types.LogicalAssetDecimals)
	usd, ok := conversion.Convert(rates, logical, USD, asLogical)
	if !ok {
		return nil
	}
	return usd
}
