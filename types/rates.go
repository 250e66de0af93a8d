package types

import "time"

// ExchangeRates is a two-level mapping denominator -> numerator -> rate,
// where rate satisfies: 1 denominator == rate numerator.
//
// Tables are treated as immutable once built. Updates are expressed by
// constructing a new table (see MergeExchangeRates), never by mutating an
// existing one in place, so a table handed to a subscriber stays valid
// forever.
type ExchangeRates map[Ticker]map[Ticker]float64

// Rate returns the direct rate for 1 denominator == rate numerator.
// It performs no reciprocal or multi-hop derivation; that is the
// conversion package's job.
func (r ExchangeRates) Rate(denominator, numerator Ticker) (float64, bool) {
	inner, ok := r[denominator]
	if !ok {
		return 0, false
	}
	rate, ok := inner[numerator]
	return rate, ok
}

// MergeExchangeRates builds a new table containing every pair from both
// inputs. On collision the right-hand table's rate wins. Neither input is
// modified.
func MergeExchangeRates(left, right ExchangeRates) ExchangeRates {
	merged := make(ExchangeRates, len(left)+len(right))
	for den, inner := range left {
		dst := make(map[Ticker]float64, len(inner))
		for num, rate := range inner {
			dst[num] = rate
		}
		merged[den] = dst
	}
	for den, inner := range right {
		dst, ok := merged[den]
		if !ok {
			dst = make(map[Ticker]float64, len(inner))
			merged[den] = dst
		}
		for num, rate := range inner {
			dst[num] = rate
		}
	}
	return merged
}

// ExchangeRatesEqual reports deep structural equality of two tables.
func ExchangeRatesEqual(a, b ExchangeRates) bool {
	if len(a) != len(b) {
		return false
	}
	for den, innerA := range a {
		innerB, ok := b[den]
		if !ok || len(innerA) != len(innerB) {
			return false
		}
		for num, rateA := range innerA {
			rateB, ok := innerB[num]
			if !ok || rateA != rateB {
				return false
			}
		}
	}
	return true
}

// RateObservation is one rate snapshot from one named source. Observations
// are ephemeral: a newer observation from the same source supersedes the
// previous one, and observations past the aggregator's max age are dropped.
type RateObservation struct {
	DenominatorTicker Ticker    `json:"denominatorTicker"`
	NumeratorTicker   Ticker    `json:"numeratorTicker"`
	Rate              float64   `json:"rate"`
	Source            string    `json:"source"`
	Timestamp         time.Time `json:"timestamp"`
}
