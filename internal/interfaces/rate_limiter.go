package interfaces

import (
	"time"
)

// RateDecision is the outcome of a rate limit check.
type RateDecision struct {
	Allowed    bool
	RetryAfter time.Duration // Zero when allowed
}

// RateLimiter gates how often a caller identity may trigger expensive
// operations. Implementations are best-effort and per-process; state may be
// lost on restart.
type RateLimiter interface {
	// Check records an attempt for the identity and reports whether it is
	// allowed within the current window.
	Check(identity string) RateDecision

	// Prune discards tracking state for identities whose window has
	// fully elapsed.
	Prune()
}
