package rings

import (
	"fmt"

	"golang.org/x/time/rate"
)

// Callback receives progress updates during long operations. Fractions
// are in [0, 1] and strictly non-decreasing within one engine call. The
// callback runs synchronously on the calling goroutine and must not
// block.
type Callback func(fraction float64, message string)

// Intermediate updates are throttled so a chatty inner loop cannot flood
// a UI hook; milestones and the final 1.0 always go through.
const progressEventsPerSecond = 30

// tracker wraps a Callback with monotonicity enforcement and throttling.
// A nil tracker (or nil callback) is a no-op with zero overhead.
type tracker struct {
	cb      Callback
	limiter *rate.Limiter
	last    float64
}

func newTracker(cb Callback) *tracker {
	if cb == nil {
		return nil
	}
	return &tracker{
		cb:      cb,
		limiter: rate.NewLimiter(rate.Limit(progressEventsPerSecond), 1),
	}
}

// report emits a throttled progress update. Fractions below the last
// reported value are clamped up, never allowed to move backwards.
func (t *tracker) report(fraction float64, format string, args ...any) {
	if t == nil {
		return
	}
	if fraction < 1.0 && !t.limiter.Allow() {
		if fraction > t.last {
			t.last = fraction
		}
		return
	}
	t.emit(fraction, format, args...)
}

// milestone emits an update unconditionally, bypassing the throttle.
func (t *tracker) milestone(fraction float64, format string, args ...any) {
	if t == nil {
		return
	}
	t.emit(fraction, format, args...)
}

func (t *tracker) emit(fraction float64, format string, args ...any) {
	if fraction < t.last {
		fraction = t.last
	}
	if fraction > 1.0 {
		fraction = 1.0
	}
	t.last = fraction
	t.cb(fraction, fmt.Sprintf(format, args...))
}

// subTracker wraps sub in a fresh tracker so nested operations get their
// own throttle while reporting into this tracker's [start, end] slice.
func (t *tracker) subTracker(start, end float64, prefix string) *tracker {
	return newTracker(t.sub(start, end, prefix))
}

// sub returns a Callback that maps an inner operation's [0,1] progress
// onto the [start, end] slice of this tracker's range. The inner
// operation's completion always goes through; only its intermediate
// chatter is throttled.
func (t *tracker) sub(start, end float64, prefix string) Callback {
	if t == nil {
		return nil
	}
	return func(fraction float64, message string) {
		mapped := start + fraction*(end-start)
		if prefix != "" {
			message = prefix + ": " + message
		}
		if fraction >= 1.0 {
			t.milestone(mapped, "%s", message)
			return
		}
		t.report(mapped, "%s", message)
	}
}
