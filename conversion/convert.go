// Package conversion implements exact currency conversion over integer
// amounts. Floating-point exchange rates are decomposed into an integer
// coefficient and a decimal scale before any arithmetic touches an amount,
// so no float error ever propagates into a monetary value.
package conversion

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/FreePay/3cities-sub001/types"
)

var big10 = big.NewInt(10)

// Convert converts amount from one ticker to another using the given rate
// table. The amount and result share the same fixed-point basis; only the
// unit of account changes.
//
// Lookup is direct (rates[from][to]) or, failing that, reciprocal
// (1 / rates[to][from]). No multi-hop routing through intermediate pairs is
// attempted. When neither pair exists, ok is false and callers must treat
// the result as "no conversion possible", never as zero.
//
// Rounding on the final truncating division is half-up (half away from
// zero for negative amounts), never round-to-even.
func Convert(rates types.ExchangeRates, from, to types.Ticker, amount *big.Int) (*big.Int, bool) {
	if amount == nil {
		return nil, false
	}
	if from == to {
		return new(big.Int).Set(amount), true
	}
	rate, ok := rates.Rate(from, to)
	if !ok {
		inverse, invOK := rates.Rate(to, from)
		if !invOK || inverse == 0 {
			return nil, false
		}
		rate = 1 / inverse
	}
	return applyRate(amount, rate)
}

// UnitRate returns how much of numerator one whole unit of denominator is
// worth, in types.LogicalAssetDecimals, for display-friendly single-rate
// uses. ok is false when no direct or reciprocal rate exists.
func UnitRate(rates types.ExchangeRates, numerator, denominator types.Ticker) (*big.Int, bool) {
	one := new(big.Int).Exp(big10, big.NewInt(types.LogicalAssetDecimals), nil)
	return Convert(rates, denominator, numerator, one)
}

// Rescale converts an integer amount between fixed-point bases, e.g. from
// a token's native decimals to LogicalAssetDecimals. Downscaling rounds
// half away from zero.
func Rescale(amount *big.Int, fromDecimals, toDecimals int) *big.Int {
	if amount == nil {
		return nil
	}
	switch {
	case fromDecimals == toDecimals:
		return new(big.Int).Set(amount)
	case toDecimals > fromDecimals:
		pow := new(big.Int).Exp(big10, big.NewInt(int64(toDecimals-fromDecimals)), nil)
		return new(big.Int).Mul(amount, pow)
	default:
		pow := new(big.Int).Exp(big10, big.NewInt(int64(fromDecimals-toDecimals)), nil)
		return divRoundHalfUp(amount, pow)
	}
}

// applyRate multiplies amount by a positive float rate using integer
// arithmetic. The rate's shortest decimal representation yields an exact
// coefficient and scale: rate == coefficient * 10^exponent.
func applyRate(amount *big.Int, rate float64) (*big.Int, bool) {
	if rate <= 0 || math.IsInf(rate, 0) || math.IsNaN(rate) {
		return nil, false
	}
	d := decimal.NewFromFloat(rate)
	coeff := d.Coefficient()
	exp := int64(d.Exponent())

	product := new(big.Int).Mul(amount, coeff)
	if exp >= 0 {
		pow := new(big.Int).Exp(big10, big.NewInt(exp), nil)
		return product.Mul(product, pow), true
	}
	pow := new(big.Int).Exp(big10, big.NewInt(-exp), nil)
	return divRoundHalfUp(product, pow), true
}

// divRoundHalfUp divides num by a positive den, rounding half away from
// zero.
func divRoundHalfUp(num, den *big.Int) *big.Int {
	half := new(big.Int).Rsh(den, 1) // den is a power of ten, so den/2 is exact for den > 1
	adjusted := new(big.Int)
	if num.Sign() < 0 {
		adjusted.Sub(num, half)
	} else {
		adjusted.Add(num, half)
	}
	return adjusted.Quo(adjusted, den)
}
