// Package clock provides the injected time source handlers use instead of
// reading wall-clock time directly (spec §4.4: "must not read wall-clock
// time except through an injected clock abstraction").
//
// No pack repo specifies a clock interface of its own; this is the one
// place the implementation is deliberately stdlib-only — it is a two-method
// seam over time.Now/time.NewTimer, not a concern any retrieved library
// owns.
package clock

import "time"

// Clock abstracts wall-clock access for testability.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker mirrors the subset of *time.Ticker callers need.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Real is the production Clock backed by the standard library.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct{ t *time.Ticker }

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }
