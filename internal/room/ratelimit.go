package room

import "time"

// InputClass groups inbound commands that share a rate budget.
type InputClass uint8

const (
	ClassMovement InputClass = iota
	ClassShooting
	ClassChat
	classCount
)

// Per-class budgets over a sliding window.
var classLimits = [classCount]struct {
	n      int
	window time.Duration
}{
	ClassMovement: {60, time.Second},
	ClassShooting: {20, time.Second},
	ClassChat:     {5, 5 * time.Second},
}

// slidingWindow admits at most len(hits) events in any span of window.
// hits is a ring of the most recent admission times.
type slidingWindow struct {
	window time.Duration
	hits   []time.Time
	next   int
	filled bool
}

func newSlidingWindow(n int, window time.Duration) *slidingWindow {
	if n < 1 {
		n = 1
	}
	return &slidingWindow{window: window, hits: make([]time.Time, n)}
}

// Allow records an admission at now if the budget permits it.
func (w *slidingWindow) Allow(now time.Time) bool {
	// The slot about to be overwritten holds the oldest admission.
	if w.filled && now.Sub(w.hits[w.next]) < w.window {
		return false
	}
	w.hits[w.next] = now
	w.next++
	if w.next == len(w.hits) {
		w.next = 0
		w.filled = true
	}
	return true
}

// RateLimiter tracks one player's budgets. Excess input is dropped by the
// caller, never queued. Not safe for concurrent use; the room goroutine
// owns it.
type RateLimiter struct {
	windows [classCount]*slidingWindow
}

// NewRateLimiter builds a limiter with the default per-class budgets.
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{}
	for c := range rl.windows {
		l := classLimits[c]
		rl.windows[c] = newSlidingWindow(l.n, l.window)
	}
	return rl
}

// Allow reports whether an input of class c at now fits the budget.
func (rl *RateLimiter) Allow(c InputClass, now time.Time) bool {
	if c >= classCount {
		return false
	}
	return rl.windows[c].Allow(now)
}
