package selection

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/FreePay/3cities-sub001/types"
)

// strat builds a minimal strategy on the given chain. The contract
// address is derived from the ticker so every (ticker, chain) pair has a
// distinct key.
func strat(ticker types.Ticker, chainID uint64) types.Strategy {
	addr := common.BytesToAddress([]byte(ticker))
	return types.Strategy{TokenTransfer: types.TokenTransfer{
		Token:  types.Token{Name: string(ticker), Ticker: ticker, ChainID: chainID, ContractAddress: &addr, Decimals: 18},
		Amount: big.NewInt(1),
	}}
}

func mustCurrent(t *testing.T, s *Selector) types.Strategy {
	t.Helper()
	cur, ok := s.Current()
	if !ok {
		t.Fatalf("expected a current selection")
	}
	return cur
}

func TestDefaultSelectionIsBestRanked(t *testing.T) {
	s := NewSelector()
	if _, ok := s.Current(); ok {
		t.Fatalf("empty selector must have no selection")
	}

	a, b := strat("AAA", 1), strat("BBB", 10)
	s.Update([]types.Strategy{a, b})
	if got := mustCurrent(t, s); got.Key() != a.Key() {
		t.Fatalf("default selection must be the first entry, got %s", got.Key())
	}
}

func TestSelectionContinuity(t *testing.T) {
	a, b, c, d := strat("AAA", 1), strat("BBB", 10), strat("CCC", 137), strat("DDD", 8453)

	t.Run("manual selection preserved while present", func(t *testing.T) {
		s := NewSelector()
		s.Update([]types.Strategy{a, b, c})
		if err := s.Select(b.Key()); err != nil {
			t.Fatalf("select: %v", err)
		}

		s.Update([]types.Strategy{a, b, d})
		if got := mustCurrent(t, s); got.Key() != b.Key() {
			t.Fatalf("manual selection must survive regeneration, got %s", got.Key())
		}
	})

	t.Run("selection resets to best when absent", func(t *testing.T) {
		s := NewSelector()
		s.Update([]types.Strategy{a, b, c})
		if err := s.Select(b.Key()); err != nil {
			t.Fatalf("select: %v", err)
		}

		s.Update([]types.Strategy{a, d})
		if got := mustCurrent(t, s); got.Key() != a.Key() {
			t.Fatalf("vanished selection must reset to new best, got %s", got.Key())
		}
	})

	t.Run("default selection follows the new best", func(t *testing.T) {
		s := NewSelector()
		s.Update([]types.Strategy{a, b})
		s.Update([]types.Strategy{b, a})
		if got := mustCurrent(t, s); got.Key() != b.Key() {
			t.Fatalf("non-manual selection must track the best entry, got %s", got.Key())
		}
	})
}

func TestSelectUnknownStrategy(t *testing.T) {
	s := NewSelector()
	s.Update([]types.Strategy{strat("AAA", 1)})
	err := s.Select(types.TokenKey("10-native"))
	cerr, ok := err.(*types.CheckoutError)
	if !ok || cerr.Code != types.ErrUnknownStrategy {
		t.Fatalf("expected UNKNOWN_STRATEGY error, got %v", err)
	}
}

func TestChainBlacklist(t *testing.T) {
	// Two candidates on chain 10, one on chain 137: a fee failure on
	// one chain-10 candidate removes both, permanently.
	s := NewSelector()
	opUSDC, opDAI, polyUSDC := strat("USDC", 10), strat("DAI", 10), strat("PUSDC", 137)
	s.Update([]types.Strategy{opUSDC, opDAI, polyUSDC})

	s.DisableAllStrategiesOriginatingFromChainID(10)

	left := s.Strategies()
	if len(left) != 1 || left[0].Key() != polyUSDC.Key() {
		t.Fatalf("expected only the chain-137 candidate to remain, got %v", left)
	}
	if got := mustCurrent(t, s); got.Key() != polyUSDC.Key() {
		t.Fatalf("selection must move off the disabled chain")
	}

	// The blacklist holds across regeneration: chain-10 strategies in a
	// fresh list are filtered out on entry.
	s.Update([]types.Strategy{opUSDC, opDAI, polyUSDC})
	for _, st := range s.Strategies() {
		if st.ChainID() == 10 {
			t.Fatalf("disabled chain reappeared after regeneration")
		}
	}
}

func TestSigningLock(t *testing.T) {
	s := NewSelector()
	a, b := strat("AAA", 1), strat("BBB", 10)
	s.Update([]types.Strategy{a, b})

	s.LockSelection()

	err := s.Select(b.Key())
	cerr, ok := err.(*types.CheckoutError)
	if !ok || cerr.Code != types.ErrSelectionLocked {
		t.Fatalf("expected SELECTION_LOCKED error, got %v", err)
	}

	// Regeneration while locked must not move the selection either.
	s.Update([]types.Strategy{b, a})
	if got := mustCurrent(t, s); got.Key() != a.Key() {
		t.Fatalf("locked selection moved to %s", got.Key())
	}
}

func TestOthersExcludesCurrent(t *testing.T) {
	s := NewSelector()
	a, b, c := strat("AAA", 1), strat("BBB", 10), strat("CCC", 137)
	s.Update([]types.Strategy{a, b, c})

	others := s.Others()
	if len(others) != 2 {
		t.Fatalf("expected 2 others, got %d", len(others))
	}
	for _, st := range others {
		if st.Key() == a.Key() {
			t.Fatalf("current selection leaked into others")
		}
	}
}
