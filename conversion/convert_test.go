package conversion

import (
	"math/big"
	"testing"

	"github.com/FreePay/3cities-sub001/types"
)

func TestConvertIdentity(t *testing.T) {
	amount := big.NewInt(123456789)
	got, ok := Convert(types.ExchangeRates{}, "USD", "USD", amount)
	if !ok {
		t.Fatalf("identity conversion must always succeed")
	}
	if got.Cmp(amount) != 0 {
		t.Fatalf("identity conversion changed amount: got %s, want %s", got, amount)
	}
	if got == amount {
		t.Fatalf("identity conversion must return a copy, not the input")
	}
}

func TestConvertDirect(t *testing.T) {
	rates := types.ExchangeRates{"ETH": {"USD": 3000}}
	one := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	got, ok := Convert(rates, "ETH", "USD", one)
	if !ok {
		t.Fatalf("expected direct conversion to succeed")
	}
	want := new(big.Int).Mul(one, big.NewInt(3000))
	if got.Cmp(want) != 0 {
		t.Fatalf("1 ETH at 3000: got %s, want %s", got, want)
	}
}

func TestConvertReciprocal(t *testing.T) {
	rates := types.ExchangeRates{"ETH": {"USD": 3000}}
	got, ok := Convert(rates, "USD", "ETH", big.NewInt(3_000_000))
	if !ok {
		t.Fatalf("expected reciprocal conversion to succeed")
	}
	if got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("3000000 USD-units at 1/3000: got %s, want 1000", got)
	}
}

func TestConvertReciprocalRoundTrip(t *testing.T) {
	// One hop of half-up rounding may drift the round trip by at most
	// one unit.
	rates := types.ExchangeRates{"A": {"B": 3}}
	for _, x := range []int64{1, 9, 12345, 999_999_999} {
		fwd, ok := Convert(rates, "A", "B", big.NewInt(x))
		if !ok {
			t.Fatalf("forward conversion failed for %d", x)
		}
		back, ok := Convert(rates, "B", "A", fwd)
		if !ok {
			t.Fatalf("reverse conversion failed for %d", x)
		}
		drift := new(big.Int).Sub(back, big.NewInt(x))
		if drift.CmpAbs(big.NewInt(1)) > 0 {
			t.Fatalf("round trip of %d drifted by %s", x, drift)
		}
	}
}

func TestConvertRoundsHalfUp(t *testing.T) {
	rates := types.ExchangeRates{"A": {"B": 0.125}}

	// 4 * 0.125 == 0.5 exactly: half rounds up, never to even.
	got, ok := Convert(rates, "A", "B", big.NewInt(4))
	if !ok || got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("4 * 0.125: got %s (ok=%v), want 1", got, ok)
	}

	// 3 * 0.125 == 0.375: below half rounds down.
	got, ok = Convert(rates, "A", "B", big.NewInt(3))
	if !ok || got.Sign() != 0 {
		t.Fatalf("3 * 0.125: got %s (ok=%v), want 0", got, ok)
	}
}

func TestConvertMissingRate(t *testing.T) {
	rates := types.ExchangeRates{"ETH": {"USD": 3000}}
	if _, ok := Convert(rates, "EUR", "ETH", big.NewInt(100)); ok {
		t.Fatalf("conversion with no direct or reciprocal rate must fail")
	}
	if _, ok := UnitRate(rates, "EUR", "ETH"); ok {
		t.Fatalf("unit rate with no direct or reciprocal rate must fail")
	}
}

func TestConvertRejectsBadRates(t *testing.T) {
	for name, rate := range map[string]float64{
		"zero":     0,
		"negative": -2,
	} {
		t.Run(name, func(t *testing.T) {
			rates := types.ExchangeRates{"A": {"B": rate}}
			if _, ok := Convert(rates, "A", "B", big.NewInt(1)); ok {
				t.Fatalf("conversion with rate %v must fail", rate)
			}
		})
	}
}

func TestUnitRate(t *testing.T) {
	rates := types.ExchangeRates{"ETH": {"USD": 3000}}
	got, ok := UnitRate(rates, "USD", "ETH")
	if !ok {
		t.Fatalf("expected unit rate to resolve")
	}
	want, _ := new(big.Int).SetString("3000000000000000000000", 10) // 3000 at 18 decimals
	if got.Cmp(want) != 0 {
		t.Fatalf("unit rate USD per ETH: got %s, want %s", got, want)
	}
}

func TestRescale(t *testing.T) {
	t.Run("upscale", func(t *testing.T) {
		got := Rescale(big.NewInt(5), 6, 18)
		want, _ := new(big.Int).SetString("5000000000000", 10)
		if got.Cmp(want) != 0 {
			t.Fatalf("got %s, want %s", got, want)
		}
	})

	t.Run("downscale rounds half up", func(t *testing.T) {
		if got := Rescale(big.NewInt(15), 1, 0); got.Cmp(big.NewInt(2)) != 0 {
			t.Fatalf("1.5 rounded to %s, want 2", got)
		}
		if got := Rescale(big.NewInt(14), 1, 0); got.Cmp(big.NewInt(1)) != 0 {
			t.Fatalf("1.4 rounded to %s, want 1", got)
		}
	})

	t.Run("same scale", func(t *testing.T) {
		if got := Rescale(big.NewInt(7), 6, 6); got.Cmp(big.NewInt(7)) != 0 {
			t.Fatalf("got %s, want 7", got)
		}
	})
}
