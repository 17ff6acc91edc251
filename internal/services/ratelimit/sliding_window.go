package ratelimit

import (
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/suadeo/internal/interfaces"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// SlidingWindowLimiter allows a fixed number of requests per identity within
// a sliding window. State is in-process and best-effort: it is lost on
// restart, which is acceptable for gating expensive AI regenerations.
type SlidingWindowLimiter struct {
	mu       sync.Mutex
	requests int
	window   time.Duration
	clock    Clock
	logger   arbor.ILogger
	history  map[string][]time.Time
}

// NewSlidingWindowLimiter creates a limiter allowing requests per window for
// each identity.
func NewSlidingWindowLimiter(requests int, window time.Duration, clock Clock, logger arbor.ILogger) *SlidingWindowLimiter {
	if requests <= 0 {
		requests = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &SlidingWindowLimiter{
		requests: requests,
		window:   window,
		clock:    clock,
		logger:   logger,
		history:  make(map[string][]time.Time),
	}
}

// Check records an attempt for the identity and reports whether it is allowed
// within the current window. Denied attempts are not recorded, so a caller
// hammering the endpoint does not push their window further out. RetryAfter
// is the time until the oldest in-window attempt expires.
func (l *SlidingWindowLimiter) Check(identity string) interfaces.RateDecision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	cutoff := now.Add(-l.window)

	attempts := l.history[identity]
	live := attempts[:0]
	for _, at := range attempts {
		if at.After(cutoff) {
			live = append(live, at)
		}
	}

	if len(live) >= l.requests {
		l.history[identity] = live
		retryAfter := live[0].Add(l.window).Sub(now)
		l.logger.Debug().
			Str("identity", identity).
			Int("attempts", len(live)).
			Dur("retry_after", retryAfter).
			Msg("Rate limit exceeded")
		return interfaces.RateDecision{Allowed: false, RetryAfter: retryAfter}
	}

	l.history[identity] = append(live, now)
	return interfaces.RateDecision{Allowed: true}
}

// Prune discards identities whose every attempt has aged out of the window.
// Called periodically by the scheduler to bound memory.
func (l *SlidingWindowLimiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.clock.Now().Add(-l.window)
	pruned := 0
	for identity, attempts := range l.history {
		expired := true
		for _, at := range attempts {
			if at.After(cutoff) {
				expired = false
				break
			}
		}
		if expired {
			delete(l.history, identity)
			pruned++
		}
	}

	if pruned > 0 {
		l.logger.Debug().
			Int("pruned", pruned).
			Int("tracked", len(l.history)).
			Msg("Pruned expired rate limit windows")
	}
}
