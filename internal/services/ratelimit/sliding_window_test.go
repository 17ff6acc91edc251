package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/suadeo/internal/common"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLimiter(requests int, window time.Duration) (*SlidingWindowLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewSlidingWindowLimiter(requests, window, clock, common.GetLogger()), clock
}

func TestSlidingWindow_AllowsUpToLimit(t *testing.T) {
	limiter, _ := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		decision := limiter.Check("user-a")
		assert.True(t, decision.Allowed, "request %d should be allowed", i+1)
	}

	decision := limiter.Check("user-a")
	assert.False(t, decision.Allowed)
	assert.Equal(t, time.Minute, decision.RetryAfter)
}

func TestSlidingWindow_WindowSlides(t *testing.T) {
	limiter, clock := newTestLimiter(2, time.Minute)

	require.True(t, limiter.Check("user-a").Allowed)
	clock.Advance(30 * time.Second)
	require.True(t, limiter.Check("user-a").Allowed)

	// Window full; first attempt expires in 30s
	decision := limiter.Check("user-a")
	require.False(t, decision.Allowed)
	assert.Equal(t, 30*time.Second, decision.RetryAfter)

	// Once the first attempt ages out a slot opens
	clock.Advance(31 * time.Second)
	assert.True(t, limiter.Check("user-a").Allowed)
}

func TestSlidingWindow_DeniedAttemptsAreNotRecorded(t *testing.T) {
	limiter, clock := newTestLimiter(1, time.Minute)

	require.True(t, limiter.Check("user-a").Allowed)

	// Hammering while denied must not extend the wait
	for i := 0; i < 5; i++ {
		clock.Advance(10 * time.Second)
		assert.False(t, limiter.Check("user-a").Allowed)
	}

	clock.Advance(11 * time.Second) // 61s past the single recorded attempt
	assert.True(t, limiter.Check("user-a").Allowed)
}

func TestSlidingWindow_IdentitiesAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(1, time.Minute)

	require.True(t, limiter.Check("user-a").Allowed)
	assert.False(t, limiter.Check("user-a").Allowed)
	assert.True(t, limiter.Check("user-b").Allowed)
}

func TestSlidingWindow_PruneDropsExpiredIdentities(t *testing.T) {
	limiter, clock := newTestLimiter(5, time.Minute)

	limiter.Check("stale")
	clock.Advance(30 * time.Second)
	limiter.Check("fresh")

	clock.Advance(45 * time.Second)
	limiter.Prune()

	limiter.mu.Lock()
	_, staleTracked := limiter.history["stale"]
	_, freshTracked := limiter.history["fresh"]
	limiter.mu.Unlock()

	assert.False(t, staleTracked)
	assert.True(t, freshTracked)
}
