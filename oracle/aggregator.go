// Package oracle fuses exchange-rate observations from independent sources
// into a single trusted rate table. Per pair it keeps the latest
// observation from each source, drops stale ones, requires a quorum of
// fresh sources, takes the median, and republishes the assembled table
// only when it structurally changes.
package oracle

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/FreePay/3cities-sub001/logger"
	"github.com/FreePay/3cities-sub001/metrics"
	"github.com/FreePay/3cities-sub001/observable"
	"github.com/FreePay/3cities-sub001/types"
)

// Pair identifies one currency pair: 1 Denominator == rate Numerator.
type Pair struct {
	Denominator types.Ticker
	Numerator   types.Ticker
}

// Config controls aggregation behavior.
type Config struct {
	// MaxObservationAge is how old an observation may be before it is
	// dropped from quorum and median computation.
	MaxObservationAge time.Duration

	// DefaultQuorum is the minimum count of fresh independent sources a
	// pair needs before its rate is trusted. Pairs below quorum are
	// absent from the published table; no rate beats an unreliable rate.
	DefaultQuorum int

	// QuorumByPair overrides DefaultQuorum for specific pairs.
	QuorumByPair map[Pair]int

	// DebounceInterval coalesces bursts of near-simultaneous source
	// updates into a single downstream publication.
	DebounceInterval time.Duration

	// MaxDebounceDelay bounds worst-case publication staleness: a flush
	// is forced once the oldest pending change has waited this long.
	MaxDebounceDelay time.Duration

	// RecomputeInterval triggers periodic recomputes so stale
	// observations age out even when no new data arrives.
	RecomputeInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxObservationAge <= 0 {
		c.MaxObservationAge = 90 * time.Second
	}
	if c.DefaultQuorum <= 0 {
		c.DefaultQuorum = 2
	}
	if c.DebounceInterval <= 0 {
		c.DebounceInterval = 150 * time.Millisecond
	}
	if c.MaxDebounceDelay <= 0 {
		c.MaxDebounceDelay = 500 * time.Millisecond
	}
	if c.RecomputeInterval <= 0 {
		c.RecomputeInterval = 5 * time.Second
	}
	return c
}

// Aggregator is the single writer of the published rate table. Source
// fetch loops funnel observations through Observe; readers subscribe to
// the published table and never mutate it.
type Aggregator struct {
	cfg Config
	log logger.Logger
	rec metrics.Recorder
	now func() time.Time

	mu           sync.Mutex
	observations map[Pair]map[string]types.RateObservation
	lastTable    types.ExchangeRates
	published    bool
	pendingSince time.Time
	flushTimer   *time.Timer

	// pubMu serializes recomputes end to end so concurrent callers
	// (debounce timer, forced flush, periodic ticker) cannot publish
	// tables in inverted order.
	pubMu sync.Mutex

	out *observable.Value[types.ExchangeRates]
}

// NewAggregator creates an aggregator. Any nil dependency falls back to a
// noop implementation.
func NewAggregator(cfg Config, log logger.Logger, rec metrics.Recorder, now func() time.Time) *Aggregator {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if now == nil {
		now = time.Now
	}
	return &Aggregator{
		cfg:          cfg.withDefaults(),
		log:          log,
		rec:          rec,
		now:          now,
		observations: make(map[Pair]map[string]types.RateObservation),
		out:          observable.New[types.ExchangeRates](),
	}
}

// Observe ingests one observation. The source name is the dedup key: a
// new observation from source X overwrites the previous one from X.
// Publication is debounced; the flush deadline bounds staleness.
func (a *Aggregator) Observe(obs types.RateObservation) {
	pair := Pair{Denominator: obs.DenominatorTicker, Numerator: obs.NumeratorTicker}

	a.mu.Lock()
	bySource, ok := a.observations[pair]
	if !ok {
		bySource = make(map[string]types.RateObservation)
		a.observations[pair] = bySource
	}
	bySource[obs.Source] = obs

	now := a.now()
	if a.pendingSince.IsZero() {
		a.pendingSince = now
	}
	if now.Sub(a.pendingSince) >= a.cfg.MaxDebounceDelay {
		// Debounce window exceeded; flush immediately.
		a.stopFlushTimerLocked()
		a.mu.Unlock()
		a.Recompute()
		return
	}
	a.stopFlushTimerLocked()
	a.flushTimer = time.AfterFunc(a.cfg.DebounceInterval, a.Recompute)
	a.mu.Unlock()
}

func (a *Aggregator) stopFlushTimerLocked() {
	if a.flushTimer != nil {
		a.flushTimer.Stop()
		a.flushTimer = nil
	}
}

// Recompute rebuilds the table from current observations and publishes it
// only if it differs from the last published table, sparing downstream
// consumers redundant regeneration.
func (a *Aggregator) Recompute() {
	a.pubMu.Lock()
	defer a.pubMu.Unlock()

	a.mu.Lock()
	a.pendingSince = time.Time{}
	a.stopFlushTimerLocked()
	table := a.assembleLocked(a.now())
	changed := !a.published || !types.ExchangeRatesEqual(a.lastTable, table)
	if changed {
		a.lastTable = table
		a.published = true
	}
	a.mu.Unlock()

	if changed {
		a.rec.IncCounter("rates_published", nil)
		a.out.Set(table)
	}
}

// assembleLocked applies staleness, quorum and median to produce a fresh
// immutable table.
func (a *Aggregator) assembleLocked(now time.Time) types.ExchangeRates {
	table := make(types.ExchangeRates)
	for pair, bySource := range a.observations {
		fresh := make([]float64, 0, len(bySource))
		for _, obs := range bySource {
			if !now.Before(obs.Timestamp.Add(a.cfg.MaxObservationAge)) {
				continue // stale, drops out of quorum silently
			}
			fresh = append(fresh, obs.Rate)
		}
		if len(fresh) < a.quorum(pair) {
			continue
		}
		inner, ok := table[pair.Denominator]
		if !ok {
			inner = make(map[types.Ticker]float64)
			table[pair.Denominator] = inner
		}
		inner[pair.Numerator] = median(fresh)
	}
	return table
}

func (a *Aggregator) quorum(pair Pair) int {
	if q, ok := a.cfg.QuorumByPair[pair]; ok {
		return q
	}
	return a.cfg.DefaultQuorum
}

// median returns the middle value, averaging the two middle values for
// even counts. Median over mean for resistance against a single
// erroneous or compromised source.
func median(rates []float64) float64 {
	sort.Float64s(rates)
	n := len(rates)
	if n%2 == 1 {
		return rates[n/2]
	}
	return (rates[n/2-1] + rates[n/2]) / 2
}

// Rates returns the most recently published table.
func (a *Aggregator) Rates() (types.ExchangeRates, bool) {
	return a.out.Get()
}

// Subscribe registers fn for every published table, invoking it
// immediately with the current table when one exists.
func (a *Aggregator) Subscribe(fn func(types.ExchangeRates)) (cancel func()) {
	return a.out.Subscribe(fn)
}

// Start runs the periodic recompute loop until ctx is done, so staleness
// ages out of the published table even with no inbound observations.
func (a *Aggregator) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(a.cfg.RecomputeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				a.mu.Lock()
				a.stopFlushTimerLocked()
				a.mu.Unlock()
				return
			case <-ticker.C:
				a.Recompute()
			}
		}
	}()
}
