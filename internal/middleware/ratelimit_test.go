package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestWindow(t *testing.T, limit int, window time.Duration) *slidingWindow {
	t.Helper()
	sw := newSlidingWindow(limit, window)
	t.Cleanup(sw.close)
	return sw
}

func TestSlidingWindowAllow(t *testing.T) {
	sw := newTestWindow(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, sw.allow("10.0.0.1"), "request %d should pass", i)
	}
	assert.False(t, sw.allow("10.0.0.1"))

	// Other clients are counted separately.
	assert.True(t, sw.allow("10.0.0.2"))
}

func TestSlidingWindowExpiry(t *testing.T) {
	sw := newTestWindow(t, 1, 20*time.Millisecond)

	assert.True(t, sw.allow("10.0.0.1"))
	assert.False(t, sw.allow("10.0.0.1"))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, sw.allow("10.0.0.1"))
}

func TestSlidingWindowEvictsIdleClients(t *testing.T) {
	sw := newTestWindow(t, 1, 10*time.Millisecond)
	sw.allow("10.0.0.1")

	assert.Eventually(t, func() bool {
		sw.mu.Lock()
		defer sw.mu.Unlock()
		return len(sw.hits) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestSlidingWindowClose(t *testing.T) {
	sw := newSlidingWindow(1, time.Minute)
	assert.True(t, sw.allow("10.0.0.1"))

	// close must return promptly and leave counting intact.
	sw.close()
	assert.False(t, sw.allow("10.0.0.1"))
	assert.True(t, sw.allow("10.0.0.2"))
}

func TestTrimBefore(t *testing.T) {
	now := time.Now()
	times := []time.Time{now.Add(-3 * time.Second), now.Add(-2 * time.Second), now}

	trimmed := trimBefore(times, now.Add(-time.Second))
	assert.Len(t, trimmed, 1)

	assert.Empty(t, trimBefore(times, now))
	assert.Len(t, trimBefore(times, now.Add(-time.Minute)), 3)
}
