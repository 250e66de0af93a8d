package types

import "strings"

// Ticker identifies a currency unit independent of any specific on-chain
// token, e.g. "USD" or "ETH". Tickers are uppercase internally; use
// NormalizeTicker at every boundary that accepts user or API input.
type Ticker string

// LogicalAssetDecimals is the fixed-point precision used for all
// logical-asset amounts. A payment of 1 USD is represented as 10^18.
const LogicalAssetDecimals = 18

// NormalizeTicker trims and uppercases a raw ticker string.
func NormalizeTicker(s string) Ticker {
	return Ticker(strings.ToUpper(strings.TrimSpace(s)))
}

func (t Ticker) String() string {
	return string(t)
}
