package types

import "testing"

func TestMergeExchangeRates(t *testing.T) {
	left := ExchangeRates{
		"ETH": {"USD": 3000, "EUR": 2800},
		"BTC": {"USD": 60000},
	}
	right := ExchangeRates{
		"ETH": {"USD": 3100},
		"SOL": {"USD": 150},
	}

	merged := MergeExchangeRates(left, right)

	if got := merged["ETH"]["USD"]; got != 3100 {
		t.Fatalf("right-hand value must win on collision: got %v", got)
	}
	if got := merged["ETH"]["EUR"]; got != 2800 {
		t.Fatalf("left-only pair lost: got %v", got)
	}
	if got := merged["BTC"]["USD"]; got != 60000 {
		t.Fatalf("left-only denominator lost: got %v", got)
	}
	if got := merged["SOL"]["USD"]; got != 150 {
		t.Fatalf("right-only denominator lost: got %v", got)
	}

	// Inputs must be untouched.
	if left["ETH"]["USD"] != 3000 || right["ETH"]["USD"] != 3100 {
		t.Fatalf("merge mutated an input table")
	}
}

func TestExchangeRatesEqual(t *testing.T) {
	build := func() ExchangeRates {
		return ExchangeRates{"ETH": {"USD": 3000}, "BTC": {"USD": 60000}}
	}

	if !ExchangeRatesEqual(build(), build()) {
		t.Fatalf("structurally identical tables built independently must compare equal")
	}

	changed := build()
	changed["ETH"]["USD"] = 3000.0001
	if ExchangeRatesEqual(build(), changed) {
		t.Fatalf("tables differing in one leaf value must compare unequal")
	}

	missing := build()
	delete(missing["ETH"], "USD")
	if ExchangeRatesEqual(build(), missing) {
		t.Fatalf("tables differing in shape must compare unequal")
	}
}

func TestRateLookupIsDirectOnly(t *testing.T) {
	rates := ExchangeRates{"ETH": {"USD": 3000}}
	if _, ok := rates.Rate("USD", "ETH"); ok {
		t.Fatalf("Rate must not derive reciprocals")
	}
	if rate, ok := rates.Rate("ETH", "USD"); !ok || rate != 3000 {
		t.Fatalf("direct lookup failed: %v %v", rate, ok)
	}
}

func TestNormalizeTicker(t *testing.T) {
	if got := NormalizeTicker("  usdC "); got != "USDC" {
		t.Fatalf("got %q", got)
	}
}
