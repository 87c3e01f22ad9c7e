package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campustrack/trajectory-backend-go/pkg/response"
)

// slidingWindow counts requests per client over a rolling window. Feature
// matching and path search are the expensive endpoints; the limiter keeps a
// single client from monopolizing them.
type slidingWindow struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	stop   chan struct{}
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	sw := &slidingWindow{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		stop:   make(chan struct{}),
	}
	go sw.evictLoop()
	return sw
}

// close stops the eviction goroutine.
func (sw *slidingWindow) close() {
	close(sw.stop)
}

// evictLoop drops idle clients so the hit map does not grow unbounded.
func (sw *slidingWindow) evictLoop() {
	ticker := time.NewTicker(sw.window)
	defer ticker.Stop()
	for {
		select {
		case <-sw.stop:
			return
		case <-ticker.C:
		}
		cutoff := time.Now().Add(-sw.window)
		sw.mu.Lock()
		for client, times := range sw.hits {
			if recent := trimBefore(times, cutoff); len(recent) == 0 {
				delete(sw.hits, client)
			} else {
				sw.hits[client] = recent
			}
		}
		sw.mu.Unlock()
	}
}

func (sw *slidingWindow) allow(client string) bool {
	now := time.Now()
	cutoff := now.Add(-sw.window)

	sw.mu.Lock()
	defer sw.mu.Unlock()

	recent := trimBefore(sw.hits[client], cutoff)
	if len(recent) >= sw.limit {
		sw.hits[client] = recent
		return false
	}
	sw.hits[client] = append(recent, now)
	return true
}

func trimBefore(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}

// RateLimit 按客户端 IP 限流
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	sw := newSlidingWindow(limit, window)
	return func(c *gin.Context) {
		if !sw.allow(c.ClientIP()) {
			response.Error(c, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
