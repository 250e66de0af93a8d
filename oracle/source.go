package oracle

import (
	"context"
	"time"

	"github.com/FreePay/3cities-sub001/types"
	"github.com/FreePay/3cities-sub001/visibility"
)

// Source is one independent exchange-rate feed for a single pair. Any
// external price API adapter conforms to this contract.
type Source interface {
	// Pair returns the pair this source quotes: 1 denominator ==
	// rate numerator.
	Pair() Pair

	// Name uniquely identifies the source; it is the per-pair dedup key.
	Name() string

	// RefetchInterval is the nominal delay between fetch attempts.
	RefetchInterval() time.Duration

	// FetchRate returns the current rate. Errors mean "no observation
	// this cycle" and must not carry partial results.
	FetchRate(ctx context.Context) (float64, error)
}

// FuncSource adapts a fetch function into a Source.
type FuncSource struct {
	SourcePair Pair
	SourceName string
	Interval   time.Duration
	Fetch      func(ctx context.Context) (float64, error)
}

func (s FuncSource) Pair() Pair                     { return s.SourcePair }
func (s FuncSource) Name() string                   { return s.SourceName }
func (s FuncSource) RefetchInterval() time.Duration { return s.Interval }
func (s FuncSource) FetchRate(ctx context.Context) (float64, error) {
	return s.Fetch(ctx)
}

// RunSource drives one source's fetch loop until ctx is done. The loop is
// sequential: fetch N+1 never starts before fetch N's result, success or
// failure, has been processed, so observations from one source cannot
// arrive out of order. Slow fetches do not compound delay: the next
// attempt is scheduled at max(0, interval - elapsed). While the gate
// reports the application has not been visible recently the loop suspends
// outright and resumes on visibility return.
//
// Fetch failures are logged, counted, and treated as no observation; the
// prior observation keeps aging toward staleness.
func (a *Aggregator) RunSource(ctx context.Context, gate *visibility.Gate, src Source) {
	pair := src.Pair()
	for {
		if gate != nil && !gate.ShouldFetch() {
			if err := gate.AwaitVisible(ctx); err != nil {
				return
			}
		}

		start := a.now()
		rate, err := src.FetchRate(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			a.log.Warn("rate fetch failed", map[string]any{
				"source":      src.Name(),
				"denominator": pair.Denominator,
				"numerator":   pair.Numerator,
				"error":       err.Error(),
			})
			a.rec.IncCounter("rate_fetch_failures", map[string]string{"source": src.Name()})
		} else {
			// A fetch that completed during teardown is dropped, not
			// applied.
			if ctx.Err() != nil {
				return
			}
			a.rec.ObserveLatency("rate_fetch", a.now().Sub(start), map[string]string{"source": src.Name()})
			a.Observe(types.RateObservation{
				DenominatorTicker: pair.Denominator,
				NumeratorTicker:   pair.Numerator,
				Rate:              rate,
				Source:            src.Name(),
				Timestamp:         a.now(),
			})
		}

		wait := src.RefetchInterval() - a.now().Sub(start)
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
