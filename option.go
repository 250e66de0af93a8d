package checkout

import (
	"time"

	"github.com/FreePay/3cities-sub001/logger"
	"github.com/FreePay/3cities-sub001/metrics"
	"github.com/FreePay/3cities-sub001/oracle"
)

type Option func(*Engine, *oracle.Config)

func WithLogger(l logger.Logger) Option {
	return func(e *Engine, _ *oracle.Config) {
		e.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(e *Engine, _ *oracle.Config) {
		e.rec = r
	}
}

// WithClock injects the time source, used by tests to control staleness
// and debouncing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine, _ *oracle.Config) {
		e.now = now
	}
}

// WithOracleConfig overrides aggregation behavior: observation max age,
// quorum, debounce, recompute interval.
func WithOracleConfig(cfg oracle.Config) Option {
	return func(_ *Engine, dst *oracle.Config) {
		*dst = cfg
	}
}

// WithGracePeriod sets how long after Start an empty strategy list is
// still reported as loading rather than "no payment options".
func WithGracePeriod(d time.Duration) Option {
	return func(e *Engine, _ *oracle.Config) {
		if d > 0 {
			e.grace = d
		}
	}
}
