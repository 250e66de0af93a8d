// Package checkout wires the exchange-rate oracle, wallet balance
// tracker, strategy generator, and best-strategy selector into a live
// payment checkout engine: senders pay a receiver-chosen logical asset
// (e.g. USD) while settling in whichever supported on-chain token their
// wallet can afford.
package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/FreePay/3cities-sub001/balances"
	"github.com/FreePay/3cities-sub001/logger"
	"github.com/FreePay/3cities-sub001/metrics"
	"github.com/FreePay/3cities-sub001/observable"
	"github.com/FreePay/3cities-sub001/oracle"
	"github.com/FreePay/3cities-sub001/registry"
	"github.com/FreePay/3cities-sub001/selection"
	"github.com/FreePay/3cities-sub001/strategy"
	"github.com/FreePay/3cities-sub001/types"
	"github.com/FreePay/3cities-sub001/visibility"
)

// StrategiesUpdate is the engine's published state: the ranked strategy
// list and current selection, plus a loading flag so consumers can
// distinguish "no payment options" from "data still arriving" and never
// flash a false empty state.
type StrategiesUpdate struct {
	Loading    bool
	Strategies []types.Strategy
	Selected   *types.Strategy
}

// Engine is the checkout engine. Create with New, register sources, then
// Start. All exported methods are safe for concurrent use.
type Engine struct {
	log   logger.Logger
	rec   metrics.Recorder
	now   func() time.Time
	grace time.Duration

	reg      *registry.Registry
	oracle   *oracle.Aggregator
	tracker  *balances.Tracker
	selector *selection.Selector
	gate     *visibility.Gate

	mu             sync.Mutex
	started        bool
	startedAt      time.Time
	payment        *types.Payment
	proposed       *types.ProposedPayment
	prefs          types.ReceiverStrategyPreferences
	sender         common.Address
	rateSources    []oracle.Source
	balanceSources []balances.Source

	updates *observable.Value[StrategiesUpdate]
}

// New creates an engine over the given token registry.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		log:      logger.NoopLogger{},
		rec:      metrics.NoopRecorder{},
		now:      time.Now,
		grace:    5 * time.Second,
		reg:      reg,
		selector: selection.NewSelector(),
		updates:  observable.New[StrategiesUpdate](),
	}
	var oracleCfg oracle.Config
	for _, opt := range opts {
		opt(e, &oracleCfg)
	}
	e.gate = visibility.New(0, e.now)
	e.oracle = oracle.NewAggregator(oracleCfg, e.log, e.rec, e.now)
	e.tracker = balances.NewTracker(reg, e.log, e.rec, e.now)
	return e
}

// AddRateSource registers an exchange-rate source. Call before Start.
func (e *Engine) AddRateSource(src oracle.Source) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rateSources = append(e.rateSources, src)
}

// AddBalanceSource registers a balance source for one tracked token.
// Call before Start.
func (e *Engine) AddBalanceSource(src balances.Source) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.balanceSources = append(e.balanceSources, src)
}

// Start launches the source fetch loops and the periodic oracle
// recompute, then keeps regenerating strategies as rates and balances
// change until ctx is done.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.startedAt = e.now()
	rateSources := append([]oracle.Source(nil), e.rateSources...)
	balanceSources := append([]balances.Source(nil), e.balanceSources...)
	e.mu.Unlock()

	e.oracle.Start(ctx)
	for _, src := range rateSources {
		go e.oracle.RunSource(ctx, e.gate, src)
	}
	for _, src := range balanceSources {
		go e.tracker.RunSource(ctx, e.gate, src)
	}

	e.oracle.Subscribe(func(types.ExchangeRates) { e.regenerate() })
	e.tracker.Subscribe(func(types.AddressContext) { e.regenerate() })
}

// SetVisible reports host application visibility. Fetch loops suspend
// while not recently visible and resume immediately on visibility return.
func (e *Engine) SetVisible(visible bool) {
	e.gate.SetVisible(visible)
}

// SetProposedPayment installs the payment intent used for illustrative
// strategies.
func (e *Engine) SetProposedPayment(pp types.ProposedPayment, prefs types.ReceiverStrategyPreferences) {
	e.mu.Lock()
	e.proposed = &pp
	e.prefs = prefs
	e.mu.Unlock()
	e.regenerate()
}

// SetPayment installs the resolved payment real strategies are generated
// for. A pay-what-you-want intent has no Payment until the sender picks
// an amount; until then only proposed strategies exist.
func (e *Engine) SetPayment(p types.Payment, prefs types.ReceiverStrategyPreferences) {
	e.mu.Lock()
	e.payment = &p
	e.prefs = prefs
	e.mu.Unlock()
	e.regenerate()
}

// Connect binds the sender wallet address and starts applying its
// balances.
func (e *Engine) Connect(sender common.Address) {
	e.mu.Lock()
	e.sender = sender
	e.mu.Unlock()
	e.tracker.SetAddress(sender)
}

// Disconnect drops the sender wallet. In-flight balance fetches for the
// old address are discarded by the tracker's generation counter.
func (e *Engine) Disconnect() {
	e.mu.Lock()
	e.sender = common.Address{}
	e.mu.Unlock()
	e.tracker.ClearAddress()
}

// ProposedStrategies generates the current illustrative strategy list.
// It is independent of wallet state so illustrative UI renders before and
// without a connected wallet.
func (e *Engine) ProposedStrategies() []types.ProposedStrategy {
	e.mu.Lock()
	pp := e.proposed
	prefs := e.prefs
	e.mu.Unlock()
	if pp == nil {
		return nil
	}
	rates, _ := e.oracle.Rates()
	return strategy.GenerateProposedStrategies(e.reg, rates, prefs, *pp)
}

// SelectStrategy is the user's manual strategy override.
func (e *Engine) SelectStrategy(key types.TokenKey) error {
	if err := e.selector.Select(key); err != nil {
		return err
	}
	e.publish()
	return nil
}

// BeginSigning freezes the current selection. Call when the user starts
// signing; a strategy swap after this point could double-spend.
func (e *Engine) BeginSigning() {
	e.selector.LockSelection()
}

// ReportFeeUnaffordable removes every strategy on chainID for the rest of
// the session, on the heuristic that an unaffordable transaction fee for
// one strategy on a chain is unaffordable for all of them.
func (e *Engine) ReportFeeUnaffordable(chainID uint64) {
	e.selector.DisableAllStrategiesOriginatingFromChainID(chainID)
	e.rec.IncCounter("chain_disabled", nil)
	e.log.Info("chain disabled after fee affordability failure", map[string]any{"chainId": chainID})
	e.publish()
}

// Current returns the currently selected strategy, if any.
func (e *Engine) Current() (types.Strategy, bool) {
	return e.selector.Current()
}

// Subscribe registers fn for every strategies update, invoking it
// immediately with the current state when one exists.
func (e *Engine) Subscribe(fn func(StrategiesUpdate)) (cancel func()) {
	return e.updates.Subscribe(fn)
}

// regenerate rebuilds the real strategy list from the current payment,
// rates, and balances, feeds it through the selector, and publishes.
func (e *Engine) regenerate() {
	e.mu.Lock()
	p := e.payment
	prefs := e.prefs
	sender := e.sender
	e.mu.Unlock()

	var list []types.Strategy
	ac, connected := e.tracker.Context()
	rates, _ := e.oracle.Rates()
	if p != nil && connected {
		list = strategy.GenerateStrategies(e.reg, rates, prefs, *p, sender, ac)
	}
	e.selector.Update(list)
	e.publish()
}

func (e *Engine) publish() {
	update := StrategiesUpdate{
		Loading:    e.loading(),
		Strategies: e.selector.Strategies(),
	}
	if cur, ok := e.selector.Current(); ok {
		update.Selected = &cur
	}
	e.updates.Set(update)
}

// loading reports whether an empty strategy list should still be treated
// as "data arriving": within the startup grace period and no rate table
// has been published yet.
func (e *Engine) loading() bool {
	if _, ok := e.oracle.Rates(); ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.started || e.now().Sub(e.startedAt) < e.grace
}
