// Package selection maintains the "currently selected strategy" across
// strategy-list regeneration: default best-ranked selection, manual user
// override with continuity, a signing lock that freezes selection to
// prevent double-spend races, and a session-long per-chain blacklist for
// fee-unaffordable chains.
package selection

import (
	"sync"

	"github.com/FreePay/3cities-sub001/types"
)

// Selector is the best-strategy selection state machine. It has two
// states: no strategies, and a current best plus the remaining others.
type Selector struct {
	mu             sync.Mutex
	strategies     []types.Strategy
	selectedKey    types.TokenKey
	hasSelection   bool
	userSelected   bool
	locked         bool
	disabledChains map[uint64]bool
}

// NewSelector creates an empty selector.
func NewSelector() *Selector {
	return &Selector{disabledChains: make(map[uint64]bool)}
}

// Update replaces the strategy list with a freshly generated one.
// Strategies on disabled chains are removed. Selection defaults to the
// first (best-ranked) entry, except that a manual user selection still
// present in the new list is preserved so regeneration never surprises
// the user mid-flow. While the signing lock is held, a vanished selection
// is not replaced; the lock guarantees at most one strategy is ever
// signed for a payment.
func (s *Selector) Update(strategies []types.Strategy) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]types.Strategy, 0, len(strategies))
	for _, st := range strategies {
		if s.disabledChains[st.ChainID()] {
			continue
		}
		filtered = append(filtered, st)
	}
	s.strategies = filtered

	if s.locked {
		return
	}
	if s.userSelected && s.hasSelection {
		for _, st := range filtered {
			if st.Key() == s.selectedKey {
				return // preserved across regeneration
			}
		}
	}
	s.resetToBestLocked()
}

func (s *Selector) resetToBestLocked() {
	s.userSelected = false
	if len(s.strategies) == 0 {
		s.hasSelection = false
		s.selectedKey = ""
		return
	}
	s.hasSelection = true
	s.selectedKey = s.strategies[0].Key()
}

// Current returns the currently selected strategy, if any.
func (s *Selector) Current() (types.Strategy, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Selector) currentLocked() (types.Strategy, bool) {
	if !s.hasSelection {
		return types.Strategy{}, false
	}
	for _, st := range s.strategies {
		if st.Key() == s.selectedKey {
			return st, true
		}
	}
	return types.Strategy{}, false
}

// Others returns every strategy except the current selection, in rank
// order.
func (s *Selector) Others() []types.Strategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Strategy, 0, len(s.strategies))
	for _, st := range s.strategies {
		if s.hasSelection && st.Key() == s.selectedKey {
			continue
		}
		out = append(out, st)
	}
	return out
}

// Strategies returns the full current list in rank order.
func (s *Selector) Strategies() []types.Strategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Strategy(nil), s.strategies...)
}

// Select is the user-driven manual override. It fails once the signing
// lock is held, and for keys not present in the current list.
func (s *Selector) Select(key types.TokenKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return &types.CheckoutError{
			Code:    types.ErrSelectionLocked,
			Message: "selection cannot change after signing has begun",
		}
	}
	for _, st := range s.strategies {
		if st.Key() == key {
			s.selectedKey = key
			s.hasSelection = true
			s.userSelected = true
			return nil
		}
	}
	return &types.CheckoutError{
		Code:    types.ErrUnknownStrategy,
		Message: "strategy is not in the current list",
		Data:    key,
	}
}

// DisableAllStrategiesOriginatingFromChainID permanently removes every
// strategy on chainID from current and future lists for this session.
// It is invoked when a transaction-fee affordability failure is detected
// for one strategy on the chain, under the heuristic that the fee is then
// unaffordable for every strategy on that chain. The blacklist is one-way
// and never expires within a session; clearing it requires a fresh
// selector. That is an accepted product trade-off, not a bug.
func (s *Selector) DisableAllStrategiesOriginatingFromChainID(chainID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabledChains[chainID] = true

	filtered := s.strategies[:0]
	for _, st := range s.strategies {
		if st.ChainID() != chainID {
			filtered = append(filtered, st)
		}
	}
	s.strategies = filtered

	if s.locked {
		return
	}
	if cur, ok := s.currentLocked(); !ok || cur.ChainID() == chainID {
		s.resetToBestLocked()
	}
}

// LockSelection freezes the current selection. It is called when the user
// begins signing a transaction for the current strategy, structurally
// preventing a late strategy swap from producing two signed transfers for
// one logical payment. There is no unlock.
func (s *Selector) LockSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = true
}

// Locked reports whether the signing lock is held.
func (s *Selector) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}
