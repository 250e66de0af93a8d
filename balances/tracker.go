// Package balances maintains the connected wallet's AddressContext as
// individual token balances stream in. The tracker is the single writer;
// consumers subscribe to the published context and never mutate it.
package balances

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/FreePay/3cities-sub001/logger"
	"github.com/FreePay/3cities-sub001/metrics"
	"github.com/FreePay/3cities-sub001/observable"
	"github.com/FreePay/3cities-sub001/registry"
	"github.com/FreePay/3cities-sub001/types"
	"github.com/FreePay/3cities-sub001/visibility"
)

// Source is one live-reloading balance feed for a single tracked token.
type Source interface {
	// Token is the tracked token or native currency.
	Token() types.Token

	// RefetchInterval is the nominal delay between fetch attempts.
	RefetchInterval() time.Duration

	// FetchBalance returns the address's full-precision integer balance
	// in the token's native decimals. Errors mean "unavailable this
	// cycle".
	FetchBalance(ctx context.Context, address common.Address) (*big.Int, error)
}

// Tracker owns the AddressContext for the currently connected address.
// Balance updates are last-write-wins per token key. Switching addresses
// resets the context to empty and bumps a generation counter; any update
// that was in flight when the switch happened carries the old generation
// and is discarded, so a stale balance from a just-disconnected address
// can never leak into the new address's context.
type Tracker struct {
	reg *registry.Registry
	log logger.Logger
	rec metrics.Recorder
	now func() time.Time

	mu         sync.Mutex
	generation uint64
	connected  bool
	ctx        types.AddressContext

	// pubMu serializes snapshot-then-publish so concurrent writers
	// cannot publish snapshots in inverted order.
	pubMu sync.Mutex

	out *observable.Value[types.AddressContext]
}

// NewTracker creates a tracker with no connected address. Nil dependencies
// fall back to noop implementations.
func NewTracker(reg *registry.Registry, log logger.Logger, rec metrics.Recorder, now func() time.Time) *Tracker {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		reg: reg,
		log: log,
		rec: rec,
		now: now,
		out: observable.New[types.AddressContext](),
	}
}

// SetAddress switches the connected address, resetting the context to
// empty before any balance for the new address can apply.
func (t *Tracker) SetAddress(addr common.Address) {
	t.pubMu.Lock()
	defer t.pubMu.Unlock()
	t.mu.Lock()
	t.generation++
	t.connected = true
	t.ctx = types.AddressContext{
		Address:       addr,
		TokenBalances: make(map[types.TokenKey]types.TokenBalance),
	}
	snapshot := t.snapshotLocked()
	t.mu.Unlock()
	t.out.Set(snapshot)
}

// ClearAddress disconnects the wallet.
func (t *Tracker) ClearAddress() {
	t.pubMu.Lock()
	defer t.pubMu.Unlock()
	t.mu.Lock()
	t.generation++
	t.connected = false
	t.ctx = types.AddressContext{}
	t.mu.Unlock()
	t.out.Set(types.AddressContext{})
}

// Generation returns the current reset generation. Fetch loops capture it
// with the address before fetching and pass it back to Apply.
func (t *Tracker) Generation() (uint64, common.Address, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generation, t.ctx.Address, t.connected
}

// Apply records one balance update, last-write-wins for its token key.
// Updates from a generation other than the current one are discarded.
// Zero and dust balances remove the entry rather than storing zero. The
// return reports whether the update was applied.
func (t *Tracker) Apply(generation uint64, token types.Token, balance *big.Int) bool {
	t.pubMu.Lock()
	defer t.pubMu.Unlock()
	t.mu.Lock()
	if !t.connected || generation != t.generation {
		t.mu.Unlock()
		return false
	}
	key := token.Key()
	if t.reg.IsDust(token, balance) {
		delete(t.ctx.TokenBalances, key)
	} else {
		t.ctx.TokenBalances[key] = types.TokenBalance{
			Address:  t.ctx.Address,
			TokenKey: key,
			Balance:  new(big.Int).Set(balance),
			AsOf:     t.now(),
		}
	}
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.rec.IncCounter("balance_updates", map[string]string{"token": string(key)})
	t.out.Set(snapshot)
	return true
}

// snapshotLocked copies the context so published values are never
// mutated by later updates.
func (t *Tracker) snapshotLocked() types.AddressContext {
	cp := types.AddressContext{
		Address:       t.ctx.Address,
		TokenBalances: make(map[types.TokenKey]types.TokenBalance, len(t.ctx.TokenBalances)),
	}
	for k, v := range t.ctx.TokenBalances {
		cp.TokenBalances[k] = v
	}
	return cp
}

// Context returns the current address context; ok is false while no
// wallet is connected.
func (t *Tracker) Context() (types.AddressContext, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return types.AddressContext{}, false
	}
	return t.snapshotLocked(), true
}

// Subscribe registers fn for every published context.
func (t *Tracker) Subscribe(fn func(types.AddressContext)) (cancel func()) {
	return t.out.Subscribe(fn)
}

// RunSource drives one balance source's fetch loop until ctx is done,
// with the same sequencing, catch-up, and visibility rules as rate
// sources: sequential fetches, next attempt at max(0, interval -
// elapsed), full suspension while not recently visible. While no wallet
// is connected the loop idles at the refetch interval.
func (t *Tracker) RunSource(ctx context.Context, gate *visibility.Gate, src Source) {
	token := src.Token()
	for {
		if gate != nil && !gate.ShouldFetch() {
			if err := gate.AwaitVisible(ctx); err != nil {
				return
			}
		}

		start := t.now()
		generation, addr, connected := t.Generation()
		if connected {
			balance, err := src.FetchBalance(ctx, addr)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				t.log.Warn("balance fetch failed", map[string]any{
					"token":   string(token.Key()),
					"address": addr.Hex(),
					"error":   err.Error(),
				})
				t.rec.IncCounter("balance_fetch_failures", map[string]string{"token": string(token.Key())})
			} else {
				// A fetch that completed during teardown is dropped,
				// not applied.
				if ctx.Err() != nil {
					return
				}
				t.Apply(generation, token, balance)
			}
		}

		wait := src.RefetchInterval() - t.now().Sub(start)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
