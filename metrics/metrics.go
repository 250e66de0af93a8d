// Package metrics defines the instrumentation contract for the checkout
// core: counters for rate publications, fetch failures and balance
// updates, plus fetch latency observations.
package metrics

import "time"

type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
