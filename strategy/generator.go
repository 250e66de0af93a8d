// Package strategy implements the central decision algorithm: converting
// a payment request into a ranked list of settleable (token, chain,
// amount) options. Generation is a pure function of its inputs; identical
// inputs always yield an identical ordered list, and no caching happens
// here.
package strategy

import (
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/FreePay/3cities-sub001/afford"
	"github.com/FreePay/3cities-sub001/conversion"
	"github.com/FreePay/3cities-sub001/registry"
	"github.com/FreePay/3cities-sub001/types"
)

// candidate pairs a token with the amount owed in its native decimals.
type candidate struct {
	token  types.Token
	amount *big.Int
}

// GenerateStrategies produces the ranked real strategies for a resolved
// payment and a connected sender wallet: affordable strategies first,
// each group internally ordered by receiver chain preference, chain fee
// rank, and accepted-ticker order, with unaffordable strategies further
// ranked by USD shortfall. The head of the returned list is the best
// strategy.
func GenerateStrategies(
	reg *registry.Registry,
	rates types.ExchangeRates,
	prefs types.ReceiverStrategyPreferences,
	p types.Payment,
	sender common.Address,
	ac types.AddressContext,
) []types.Strategy {
	cands := enumerate(reg, rates, prefs, p.AcceptedTickers(), p.AnyAsset, p.NativeRouter, p.Amount)

	strategies := make([]types.Strategy, 0, len(cands))
	for _, c := range cands {
		strategies = append(strategies, types.Strategy{TokenTransfer: types.TokenTransfer{
			Receiver: p.ReceiverAddress,
			Sender:   sender,
			Token:    c.token,
			Amount:   c.amount,
		}})
	}

	rankStrategies(reg, prefs, p.AcceptedTickers(), strategies)
	affordable, unaffordable := afford.PartitionStrategiesByAffordability(ac, strategies)
	afford.SortStrategiesByLogicalAmountNeededToAfford(reg, rates, ac, unaffordable)
	return append(affordable, unaffordable...)
}

// GenerateProposedStrategies produces the illustrative strategy list for
// a payment that may lack a resolved receiver, a chosen amount, or any
// wallet. Ranking uses preference weighting alone since affordability is
// unknown. For pay-what-you-want with no amount chosen, a synthetic
// amount is substituted: the first suggested amount, else one whole unit
// of the primary ticker.
func GenerateProposedStrategies(
	reg *registry.Registry,
	rates types.ExchangeRates,
	prefs types.ReceiverStrategyPreferences,
	pp types.ProposedPayment,
) []types.ProposedStrategy {
	amount := proposedAmount(pp)
	if amount == nil {
		return nil
	}
	cands := enumerate(reg, rates, prefs, pp.AcceptedTickers(), pp.AnyAsset(), pp.NativeRouter, amount)

	strategies := make([]types.ProposedStrategy, 0, len(cands))
	for _, c := range cands {
		strategies = append(strategies, types.ProposedStrategy{ProposedTokenTransfer: types.ProposedTokenTransfer{
			Receiver: pp.Receiver,
			Token:    c.token,
			Amount:   c.amount,
		}})
	}

	accepted := pp.AcceptedTickers()
	sort.SliceStable(strategies, func(i, j int) bool {
		return staticRankLess(reg, prefs, accepted,
			strategies[i].ProposedTokenTransfer.Token,
			strategies[j].ProposedTokenTransfer.Token)
	})
	return strategies
}

// proposedAmount resolves the logical-asset amount used for illustrative
// strategies.
func proposedAmount(pp types.ProposedPayment) *big.Int {
	switch pp.Mode.Kind {
	case types.PaymentModeFixed:
		return pp.Mode.Amount
	case types.PaymentModePayWhatYouWant:
		if suggested := pp.Mode.PayWhatYouWant.SuggestedAmounts; len(suggested) > 0 {
			return suggested[0]
		}
		return new(big.Int).Exp(big.NewInt(10), big.NewInt(types.LogicalAssetDecimals), nil)
	default:
		panic("strategy: payment mode constructed without a tag")
	}
}

// enumerate walks every registered token, keeps those settling an
// acceptable logical asset, converts the payment amount into the token's
// native decimals, and applies receiver exclusions and the native-router
// eligibility filter. Candidates whose amount cannot be converted
// (missing rate) are dropped, never defaulted to zero.
func enumerate(
	reg *registry.Registry,
	rates types.ExchangeRates,
	prefs types.ReceiverStrategyPreferences,
	accepted []types.Ticker,
	anyAsset bool,
	router types.RouterPolicy,
	logicalAmount *big.Int,
) []candidate {
	payTicker := accepted[0]
	acceptable := make(map[types.Ticker]bool, len(accepted))
	for _, t := range accepted {
		acceptable[t] = true
	}

	var out []candidate
	for _, token := range reg.Tokens() {
		logical, ok := reg.LogicalTicker(token.Ticker)
		if !ok {
			continue
		}
		if !anyAsset && !acceptable[logical] {
			continue
		}
		if prefs.ExcludesToken(token.Key()) || prefs.ExcludesChain(token.ChainID) {
			continue
		}
		if token.IsNative() && router == types.RouterRequire {
			if _, ok := reg.RouterAddress(token.ChainID); !ok {
				continue
			}
		}
		converted, ok := conversion.Convert(rates, payTicker, logical, logicalAmount)
		if !ok {
			continue
		}
		amount := conversion.Rescale(converted, types.LogicalAssetDecimals, token.Decimals)
		if amount.Sign() <= 0 {
			continue
		}
		out = append(out, candidate{token: token, amount: amount})
	}
	return out
}

// rankStrategies orders strategies by static preference: receiver chain
// preference first, then chain fee rank, then accepted-ticker order. The
// sort is stable so registry order breaks remaining ties
// deterministically.
func rankStrategies(reg *registry.Registry, prefs types.ReceiverStrategyPreferences, accepted []types.Ticker, strategies []types.Strategy) {
	sort.SliceStable(strategies, func(i, j int) bool {
		return staticRankLess(reg, prefs, accepted, strategies[i].TokenTransfer.Token, strategies[j].TokenTransfer.Token)
	})
}

func staticRankLess(reg *registry.Registry, prefs types.ReceiverStrategyPreferences, accepted []types.Ticker, a, b types.Token) bool {
	pa, pb := prefs.ChainPreferenceIndex(a.ChainID), prefs.ChainPreferenceIndex(b.ChainID)
	if pa != pb {
		return pa < pb
	}
	fa, fb := reg.ChainFeeRank(a.ChainID), reg.ChainFeeRank(b.ChainID)
	if fa != fb {
		return fa < fb
	}
	return tickerIndex(reg, accepted, a) < tickerIndex(reg, accepted, b)
}

// tickerIndex returns the position of the token's logical asset in the
// accepted ordering; tokens outside it (any-asset mode) rank last.
func tickerIndex(reg *registry.Registry, accepted []types.Ticker, token types.Token) int {
	logical, ok := reg.LogicalTicker(token.Ticker)
	if !ok {
		return len(accepted)
	}
	for i, t := range accepted {
		if t == logical {
			return i
		}
	}
	return len(accepted)
}
